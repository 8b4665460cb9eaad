// Package auth handles merchant account registration and session tokens.
package auth

import (
	"errors"
	"log"

	"refundly/internal/models"
	"refundly/internal/repositories"
	"refundly/internal/utils"
	"refundly/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
}

type Service interface {
	Register(input RegisterInput) (*models.User, error)
	Login(email, phone, password string) (*models.User, string, string, error)
	RefreshTokens(refreshToken string) (string, string, error)
	Logout(userID uint) error
	ChangePassword(userID uint, oldPassword, newPassword string) error
	GetUserTokenVersion(userID uint) (int, error)
	GetUserByID(userID uint) (*models.User, error)
}

type service struct {
	users     repositories.UserRepository
	merchants repositories.MerchantRepository
}

func NewService(users repositories.UserRepository, merchants repositories.MerchantRepository) Service {
	return &service{
		users:     users,
		merchants: merchants,
	}
}

// Register creates the user account and its merchant profile. New merchants
// start in pending_payment until their first subscription charge reconciles.
func (s *service) Register(input RegisterInput) (*models.User, error) {
	v := validation.New()
	v.Email("email", input.Email)
	v.Phone("phone", input.Phone)
	v.Required("name", input.Name)
	v.Required("business_name", input.BusinessName)
	v.Password("password", input.Password)
	if !v.Valid() {
		return nil, v.Err()
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashed),
		Name:     input.Name,
		Role:     "merchant",
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	merchant := &models.Merchant{
		UserID:             user.ID,
		BusinessName:       input.BusinessName,
		SubscriptionStatus: models.SubStatusPendingPayment,
	}
	if err := s.merchants.Create(merchant); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *service) Login(email, phone, password string) (*models.User, string, string, error) {
	user, err := s.getUserByIdentifier(email, phone)
	if err != nil {
		log.Printf("login failed: user not found for identifier %s", email+phone)
		return nil, "", "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("login failed: incorrect password for user %d", user.ID)
		return nil, "", "", errors.New("invalid credentials")
	}

	accessToken, refreshToken, err := utils.GenerateTokens(s.claimsFor(user))
	if err != nil {
		log.Println("error generating tokens:", err)
		return nil, "", "", errors.New("error generating tokens")
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return "", "", errors.New("user not found")
	}

	if user.TokenVersion != claims.TokenVersion {
		return "", "", errors.New("token version mismatch")
	}

	return utils.GenerateTokens(s.claimsFor(user))
}

func (s *service) Logout(userID uint) error {
	return s.users.IncrementTokenVersion(userID)
}

func (s *service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return errors.New("failed to get user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return errors.New("invalid old password")
	}

	if len(newPassword) < 8 || !validation.HasSpecialChar(newPassword) {
		return errors.New("password must be at least 8 characters and contain special characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	user.Password = string(hashed)
	user.TokenVersion++ // invalidate existing tokens

	if err := s.users.Update(user); err != nil {
		return errors.New("failed to update password")
	}
	return nil
}

func (s *service) GetUserTokenVersion(userID uint) (int, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}

func (s *service) GetUserByID(userID uint) (*models.User, error) {
	return s.users.GetByID(userID)
}

func (s *service) claimsFor(user *models.User) *models.UserClaims {
	claims := &models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	}
	if merchant, err := s.merchants.GetByUserID(user.ID); err == nil {
		claims.MerchantID = merchant.ID
	}
	return claims
}

func (s *service) getUserByIdentifier(email, phone string) (*models.User, error) {
	if email != "" {
		return s.users.GetByEmail(email)
	}
	return s.users.GetByPhone(phone)
}
