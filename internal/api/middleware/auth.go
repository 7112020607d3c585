package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/match-social/pkg/response"
)

// UserIDKey gin 上下文中调用方 id 的键
const UserIDKey = "user_id"

var errInvalidAuthorization = errors.New("authorization header missing or invalid")

// JWTAuth 只校验外部签发的 HS256 token，subject 即用户 id
func JWTAuth(secret, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(secret)

	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Unauthorized(c, err.Error())
			return
		}
		claims := &jwt.RegisteredClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return key, nil }); err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}
		if strings.TrimSpace(claims.Subject) == "" {
			response.Unauthorized(c, "token has no subject")
			return
		}
		c.Set(UserIDKey, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errInvalidAuthorization
	}
	return strings.TrimSpace(parts[1]), nil
}

// CurrentUser 取调用方 id
func CurrentUser(c *gin.Context) string { return c.GetString(UserIDKey) }
