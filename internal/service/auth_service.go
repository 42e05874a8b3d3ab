package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marketbay/internal/config"
	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/logger"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务
type AuthService struct {
	cfg        *config.Config
	userRepo   repository.UserRepository
	vendorRepo repository.VendorRepository
}

// RegisterInput 注册输入
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	// AsVendor 为 true 时同时开店
	AsVendor  bool
	StoreName string
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string
	Password string
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, vendorRepo repository.VendorRepository) *AuthService {
	return &AuthService{
		cfg:        cfg,
		userRepo:   userRepo,
		vendorRepo: vendorRepo,
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Register 注册用户，可选同时开店
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || len(input.Password) < 6 {
		return nil, ErrInvalidInput
	}
	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	role := constants.RoleCustomer
	if input.AsVendor {
		role = constants.RoleVendor
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Role:         role,
		Status:       constants.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	if input.AsVendor {
		commissionRate, err := models.NewMoneyFromString(s.cfg.Commerce.DefaultCommissionRate)
		if err != nil {
			return nil, fmt.Errorf("invalid default commission rate %q: %w", s.cfg.Commerce.DefaultCommissionRate, err)
		}
		vendor := &models.Vendor{
			UserID:         user.ID,
			StoreName:      strings.TrimSpace(input.StoreName),
			CommissionRate: commissionRate,
		}
		if vendor.StoreName == "" {
			vendor.StoreName = user.DisplayName
		}
		if err := s.vendorRepo.Create(vendor); err != nil {
			return nil, err
		}
		logger.Infow("vendor_store_created", "user_id", user.ID, "vendor_id", vendor.ID)
	}
	return user, nil
}

// Login 校验凭证并签发 Token
func (s *AuthService) Login(input LoginInput) (*models.User, string, time.Time, error) {
	user, err := s.userRepo.GetByEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredential
	}
	if err := s.VerifyPassword(user.PasswordHash, input.Password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredential
	}
	if user.Status != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}

	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.userRepo.UpdateLastLogin(user.ID); err != nil {
		logger.Warnw("update_last_login_failed", "user_id", user.ID, "error", err)
	}
	return user, token, expiresAt, nil
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析并校验 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
