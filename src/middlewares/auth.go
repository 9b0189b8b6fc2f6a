package middlewares

import (
	"bitlibro/src/db"
	"bitlibro/src/lib"
	"bitlibro/src/models"
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type UserLoader func(ctx context.Context, id uint) (*models.User, error)

func loadUserFromDb(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := db.GetDb().
		WithContext(ctx).
		Model(&models.User{}).
		Where(&models.User{ID: id}).
		First(&user).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func AuthMiddleware(ctx *gin.Context) {
	authenticate(ctx, loadUserFromDb)
}

// NewAuthMiddleware builds the bearer middleware around a custom user lookup.
func NewAuthMiddleware(load UserLoader) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authenticate(ctx, load)
	}
}

func unauthorized(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message, "error": true})
}

func authenticate(ctx *gin.Context, load UserLoader) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	reqToken, ok := strings.CutPrefix(bearerToken, "Bearer ")
	if !ok || strings.TrimSpace(reqToken) == "" {
		unauthorized(ctx, "missing bearer token")
		return
	}
	claims, err := utils.ParseJWT(strings.TrimSpace(reqToken))
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		unauthorized(ctx, "invalid token")
		return
	}
	revoked, err := lib.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		log.Printf("Error checking token revocation: %s\n", err.Error())
		ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "authentication unavailable", "error": true})
		return
	}
	if revoked {
		unauthorized(ctx, "token has been revoked")
		return
	}
	uid, err := utils.UserID(claims)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		unauthorized(ctx, "invalid token")
		return
	}
	user, err := load(ctx, uid)
	if err != nil || user.ID != uid {
		unauthorized(ctx, "user no longer exists")
		return
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	ctx.Set("id", user.ID)
	ctx.Set("email", user.Email)
	ctx.Set("role", user.Role)
	ctx.Set("jti", claims.ID)
	ctx.Set("exp", expiresAt)
	ctx.Next()
}

// ActorFrom reads the caller placed in the context by the auth middleware.
func ActorFrom(ctx *gin.Context) types.Actor {
	role, _ := ctx.Get("role")
	r, _ := role.(types.Role)
	return types.Actor{
		ID:    ctx.GetUint("id"),
		Email: ctx.GetString("email"),
		Role:  r,
	}
}

// RequireCapability rejects callers whose role lacks c with 403.
func RequireCapability(c types.Capability) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor := ActorFrom(ctx)
		if !actor.Role.Can(c) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "you do not have permission to perform this action", "error": true})
			return
		}
		ctx.Next()
	}
}
