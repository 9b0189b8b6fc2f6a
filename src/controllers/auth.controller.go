package controllers

import (
	"bitlibro/src/lib"
	"bitlibro/src/models"
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

type AuthController struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db, now: time.Now}
}

func (c *AuthController) WithClock(now func() time.Time) *AuthController {
	c.now = now
	return c
}

// Login verifies the staff credentials and issues a signed token.
func (c *AuthController) Login(ctx context.Context, body *types.LoginRequestBody) (*types.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(body.Email))
	var user models.User
	err := c.db.WithContext(ctx).
		Where(&models.User{Email: email}).
		First(&user).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err != nil || user.PasswordHash == "" || !utils.CheckPassword(user.PasswordHash, body.Password) {
		log.Printf("[Auth] Failed login for %s\n", email)
		return nil, types.NewUnauthorizedError("invalid credentials")
	}
	token, claims, err := utils.GenerateJWT(&user, c.now())
	if err != nil {
		log.Printf("[Auth] Error signing token for user [%d]: %s\n", user.ID, err.Error())
		return nil, err
	}
	return &types.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user.AuthUser(),
	}, nil
}

func (c *AuthController) Me(ctx context.Context, id uint) (*types.AuthUser, error) {
	var user models.User
	err := c.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewUnauthorizedError("user no longer exists")
	}
	if err != nil {
		return nil, err
	}
	me := user.AuthUser()
	return &me, nil
}

// Logout revokes the token id until the token would have expired anyway.
func (c *AuthController) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return types.NewUnauthorizedError("missing token id")
	}
	if err := lib.RevokeToken(ctx, jti, expiresAt.Sub(c.now())); err != nil {
		log.Printf("[redis] Error revoking token %s: %s\n", jti, err.Error())
		return err
	}
	return nil
}
