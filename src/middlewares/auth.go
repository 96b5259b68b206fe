package middlewares

import (
	"errors"
	"hotelmaint/src/lib"
	"hotelmaint/src/repository"
	"hotelmaint/src/session"
	"hotelmaint/src/types"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionKey = "session"

// AuthMiddleware validates the bearer token and loads the caller's session,
// from the cache when possible. Inactive users are rejected.
func AuthMiddleware(users repository.UserRepository, cache session.Cache, secret []byte) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		bearerToken := ctx.Request.Header.Get("Authorization")
		if !strings.HasPrefix(bearerToken, "Bearer ") {
			unauthorized(ctx)
			return
		}
		reqToken := strings.TrimSpace(strings.TrimPrefix(bearerToken, "Bearer "))
		if reqToken == "" {
			unauthorized(ctx)
			return
		}
		userID, err := ParseToken(reqToken, secret)
		if err != nil {
			log.Printf("token error: %s\n", err.Error())
			unauthorized(ctx)
			return
		}

		sess, ok := cache.Get(ctx, userID)
		if !ok {
			user, err := users.Get(ctx, userID)
			if err != nil {
				if !errors.Is(err, repository.ErrNotFound) {
					log.Printf("Error loading user %s: %s\n", userID, err.Error())
				}
				unauthorized(ctx)
				return
			}
			if !user.Active {
				unauthorized(ctx)
				return
			}
			sess = session.FromUser(user)
			if err := cache.Set(ctx, sess); err != nil {
				log.Printf("Error caching session %s: %s\n", userID, err.Error())
			}
		}
		ctx.Set(sessionKey, sess)
		ctx.Next()
	}
}

func unauthorized(ctx *gin.Context) {
	trans := lib.Translator(ctx.GetHeader("Accept-Language"))
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": lib.T(trans, "unauthorized"),
		"code":  "unauthorized",
	})
}

// CurrentSession returns the session set by AuthMiddleware, or nil.
func CurrentSession(ctx *gin.Context) *session.Session {
	v, ok := ctx.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

func ParseToken(raw string, secret []byte) (uuid.UUID, error) {
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	if !tkn.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	return uuid.Parse(claims.Subject)
}
