package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"refundly/internal/models"
	"refundly/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type stubAuthService struct {
	user *models.User
	err  error
}

func (s *stubAuthService) Register(input auth.RegisterInput) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) Login(email, phone, password string) (*models.User, string, string, error) {
	return nil, "", "", errors.New("not implemented")
}

func (s *stubAuthService) RefreshTokens(refreshToken string) (string, string, error) {
	return "", "", errors.New("not implemented")
}

func (s *stubAuthService) Logout(userID uint) error { return nil }

func (s *stubAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	return nil
}

func (s *stubAuthService) GetUserTokenVersion(userID uint) (int, error) { return 1, nil }

func (s *stubAuthService) GetUserByID(userID uint) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func newProfileApp(merchant *models.Merchant, authSvc auth.Service) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("claims", &models.UserClaims{UserID: 2, MerchantID: 1})
		return c.Next()
	})
	app.Get("/api/merchant/profile", NewMerchantHandler(&memMerchants{merchant: merchant}, authSvc).GetMerchantProfile)
	return app
}

func getProfile(t *testing.T, app *fiber.App) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/api/merchant/profile", nil))
	assert.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	var parsed map[string]interface{}
	_ = json.Unmarshal(raw, &parsed)
	return resp.StatusCode, parsed
}

func TestGetMerchantProfile(t *testing.T) {
	newMerchant := func() *models.Merchant {
		return &models.Merchant{ID: 1, UserID: 2, BusinessName: "Demo Kirana Store", PlanType: "starter"}
	}

	t.Run("includes the account contact details", func(t *testing.T) {
		user := &models.User{
			Model: gorm.Model{ID: 2},
			Email: "owner@example.in",
			Name:  "Asha",
			Phone: "+919876543210",
		}
		app := newProfileApp(newMerchant(), &stubAuthService{user: user})

		status, parsed := getProfile(t, app)
		assert.Equal(t, fiber.StatusOK, status)

		account, ok := parsed["account"].(map[string]interface{})
		assert.True(t, ok)
		assert.Equal(t, "owner@example.in", account["email"])
		assert.Equal(t, "Asha", account["name"])
		assert.Equal(t, "+919876543210", account["phone"])

		merchant, ok := parsed["merchant"].(map[string]interface{})
		assert.True(t, ok)
		assert.Equal(t, "Demo Kirana Store", merchant["business_name"])
	})

	t.Run("profile survives an account lookup failure", func(t *testing.T) {
		app := newProfileApp(newMerchant(), &stubAuthService{err: errors.New("connection reset")})

		status, parsed := getProfile(t, app)
		assert.Equal(t, fiber.StatusOK, status)
		assert.NotContains(t, parsed, "account")
		assert.Contains(t, parsed, "merchant")
	})

	t.Run("unknown merchant", func(t *testing.T) {
		app := newProfileApp(&models.Merchant{ID: 9}, &stubAuthService{})

		status, _ := getProfile(t, app)
		assert.Equal(t, fiber.StatusNotFound, status)
	})
}
