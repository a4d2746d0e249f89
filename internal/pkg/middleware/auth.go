// Package middleware provides gin middleware for the chat service.
package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/vietsaga/vietsaga/pkg/errors"
	jwtopts "github.com/vietsaga/vietsaga/pkg/options/jwt"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "auth.user_id"

// Auth verifies the bearer token and stores the caller's user id in the
// request context. Token issuance belongs to the account service.
func Auth(opts *jwtopts.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c)
			return
		}

		claims := jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(opts.Key), nil
		})
		if err != nil || !parsed.Valid {
			abortUnauthorized(c)
			return
		}
		if opts.Issuer != "" && claims.Issuer != opts.Issuer {
			abortUnauthorized(c)
			return
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || userID == 0 {
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID extracts the authenticated user id from the gin context.
func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

func abortUnauthorized(c *gin.Context) {
	e := errors.ErrUnauthorized
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    e.Code,
		"reason":  e.Reason,
		"message": e.Message,
	})
}
