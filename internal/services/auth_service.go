package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"back_scan/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid token")
)

const (
	minPasswordLength = 8
	maxUsernameLength = 50
)

type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{db: db, secret: []byte(secret), ttl: ttl}
}

type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func toUserResponse(user models.User) *models.UserResponse {
	return &models.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

// Register creates a new user account
func (as *AuthService) Register(req models.UserRegister) (*models.UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || len(username) > maxUsernameLength {
		return nil, fmt.Errorf("username must be 1 to %d characters", maxUsernameLength)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	var existing models.User
	if err := as.db.Unscoped().Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	if err := as.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login authenticates user and returns JWT token
func (as *AuthService) Login(req models.UserLogin) (string, *models.UserResponse, error) {
	var user models.User
	if err := as.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := as.generateJWT(user)
	if err != nil {
		return "", nil, err
	}
	return token, toUserResponse(user), nil
}

// generateJWT creates a JWT token for the user
func (as *AuthService) generateJWT(user models.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(as.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.secret)
}

// ValidateToken validates JWT token and returns user claims
func (as *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return as.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// GetUserByID retrieves user by ID
func (as *AuthService) GetUserByID(userID uint) (*models.UserResponse, error) {
	var user models.User
	if err := as.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}
