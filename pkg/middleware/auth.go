package middleware

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/wms-platform/picker-performance-service/pkg/errors"
	"github.com/wms-platform/picker-performance-service/pkg/logging"
)

// Roles understood by the dashboard API.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

const (
	ContextKeySubject = "subject"
	ContextKeyRole    = "role"
)

// Claims is the bearer token payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig configures bearer authentication. An empty Secret disables verification
// and every caller is treated as DevRole.
type AuthConfig struct {
	Secret  []byte
	Issuer  string
	DevRole string
}

// Authenticate verifies an HS256 bearer token and stores subject and role on the context.
func Authenticate(config AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(config.Secret) == 0 {
			role := config.DevRole
			if role == "" {
				role = RoleViewer
			}
			c.Set(ContextKeySubject, "anonymous")
			c.Set(ContextKeyRole, role)
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			AbortWithAppError(c, errors.ErrUnauthorized("missing bearer token"))
			return
		}

		opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
		if config.Issuer != "" {
			opts = append(opts, jwt.WithIssuer(config.Issuer))
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), claims, func(t *jwt.Token) (interface{}, error) {
			return config.Secret, nil
		}, opts...)
		if err != nil || !token.Valid {
			msg := "invalid token"
			if stderrors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			AbortWithAppError(c, errors.ErrUnauthorized(msg))
			return
		}

		if claims.Role != RoleAdmin && claims.Role != RoleViewer {
			AbortWithAppError(c, errors.ErrForbidden("unknown role"))
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Set(ContextKeyRole, claims.Role)
		c.Request = c.Request.WithContext(logging.ContextWithUserID(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextKeyRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		AbortWithAppError(c, errors.ErrForbidden("requires role: "+strings.Join(roles, " or ")))
	}
}

// GetSubject returns the authenticated subject
func GetSubject(c *gin.Context) string {
	return c.GetString(ContextKeySubject)
}

// IssueToken signs a token for subject with role, valid for ttl.
func IssueToken(secret []byte, issuer, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
