package services

import (
	"testing"
	"time"

	"back_scan/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	as := NewAuthService(newTestDB(t), "test-secret", time.Hour)

	user, err := as.Register(models.UserRegister{Username: " ada ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)

	_, err = as.Register(models.UserRegister{Username: "ada", Password: "another password"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	token, loggedIn, err := as.Login(models.UserLogin{Username: "ada", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := as.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "ada", claims.Username)

	_, _, err = as.Login(models.UserLogin{Username: "ada", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = as.Login(models.UserLogin{Username: "nobody", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	profile, err := as.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", profile.Username)
}

func TestRegisterValidatesInput(t *testing.T) {
	as := NewAuthService(newTestDB(t), "test-secret", time.Hour)

	_, err := as.Register(models.UserRegister{Username: "", Password: "long enough"})
	assert.Error(t, err)
	_, err = as.Register(models.UserRegister{Username: "ada", Password: "short"})
	assert.Error(t, err)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	db := newTestDB(t)
	as := NewAuthService(db, "test-secret", time.Hour)
	user, err := as.Register(models.UserRegister{Username: "ada", Password: "correct horse"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	_, _, err = as.Login(models.UserLogin{Username: "ada", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestValidateTokenRejectsForeignAndExpiredTokens(t *testing.T) {
	db := newTestDB(t)
	as := NewAuthService(db, "test-secret", time.Hour)

	other := NewAuthService(db, "other-secret", time.Hour)
	foreign, err := other.generateJWT(models.User{ID: 1, Username: "ada"})
	require.NoError(t, err)
	_, err = as.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = as.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = as.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
