// Seeds a demo merchant account with a handful of refunds in various states,
// so a fresh environment has something to look at on the dashboard.
package main

import (
	"log"
	"os"
	"time"

	"refundly/internal/config"
	"refundly/internal/models"
	"refundly/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	demoEmail := config.GetEnv("SEED_EMAIL", "demo@refundly.in")
	demoPassword := os.Getenv("SEED_PASSWORD")
	if demoPassword == "" {
		log.Fatal("SEED_PASSWORD must be set in environment")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("⚠️ Failed to close PostgreSQL connection: %v", err)
			}
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("⚠️ Failed to close Redis connection: %v", err)
			}
		}
	}()

	var existing models.User
	if err := repositories.DB.Where("email = ?", demoEmail).First(&existing).Error; err == nil {
		log.Println("Demo account already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	user := models.User{
		Email:        demoEmail,
		Password:     string(hashedPassword),
		Name:         "Demo Merchant",
		Phone:        config.GetEnv("SEED_PHONE", "+919876543210"),
		Role:         "merchant",
		TokenVersion: 1,
	}
	if err := repositories.DB.Create(&user).Error; err != nil {
		log.Fatal("Failed to create demo user:", err)
	}

	merchant := models.Merchant{
		UserID:             user.ID,
		BusinessName:       "Demo Kirana Store",
		PlanType:           "starter",
		SubscriptionStatus: models.SubStatusPendingPayment,
		SLADays:            7,
	}
	if err := repositories.DB.Create(&merchant).Error; err != nil {
		log.Fatal("Failed to create demo merchant:", err)
	}

	metrics := models.UsageMetrics{
		MerchantID:     merchant.ID,
		CycleStartedAt: time.Now(),
	}
	if err := repositories.DB.Create(&metrics).Error; err != nil {
		log.Fatal("Failed to create usage metrics:", err)
	}

	seedRefunds := []struct {
		customer string
		email    string
		amount   int64
		status   string
		utr      string
	}{
		{"Asha Patel", "asha@example.com", 49900, models.RefundStatusSettled, "UTR202609010001"},
		{"Rohit Sharma", "rohit@example.com", 129900, models.RefundStatusProcessingAtBank, ""},
		{"Meera Iyer", "meera@example.com", 25000, models.RefundStatusInitiated, ""},
		{"Karan Singh", "karan@example.com", 79900, models.RefundStatusGatheringDetails, ""},
		{"Divya Nair", "divya@example.com", 15000, models.RefundStatusFailed, ""},
	}

	for i, r := range seedRefunds {
		refund := models.Refund{
			PublicID:       uuid.NewString(),
			MerchantID:     merchant.ID,
			OrderReference: "ORD-" + uuid.NewString()[:8],
			CustomerName:   r.customer,
			CustomerEmail:  r.email,
			AmountPaise:    r.amount,
			Status:         r.status,
			UTR:            r.utr,
			Timeline: []models.RefundTimelineEntry{
				{Status: models.RefundStatusGatheringDetails, Note: "Refund created"},
			},
		}
		if r.status != models.RefundStatusGatheringDetails {
			refund.Timeline = append(refund.Timeline, models.RefundTimelineEntry{Status: r.status})
		}
		if err := repositories.DB.Create(&refund).Error; err != nil {
			log.Fatalf("Failed to create refund %d: %v", i+1, err)
		}
	}

	log.Println("✅ Demo account seeded successfully!")
	log.Printf("   email: %s", demoEmail)
}
