package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/example/mentor-platform/internal/platform/api"
)

type ctxKeyUserID struct{}
type ctxKeyRole struct{}

func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyUserID{}).(string)
	return v, ok
}

// WithUserID injects user_id into context. Useful for testing.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID{}, uid)
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRole{}).(string)
	return v, ok
}

// WithRole injects a role into context. Useful for testing.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKeyRole{}, role)
}

// Claims carries the platform role (mentee, mentor, admin) next to the
// registered claims. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type JWTVerifier struct {
	Secret []byte
}

func (v JWTVerifier) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return v.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Sign issues an HS256 token for subject with the given role and lifetime.
func (v JWTVerifier) Sign(subject, role string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("subject is required")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.Secret)
}

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrNotBearer    = errors.New("authorization is not a bearer token")
)

// ParseBearer validates an "Authorization: Bearer <token>" value and returns
// its claims. The subject must be set.
func (v JWTVerifier) ParseBearer(authz string) (*Claims, error) {
	authz = strings.TrimSpace(authz)
	if authz == "" {
		return nil, ErrMissingToken
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, ErrNotBearer
	}
	claims, err := v.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Authenticate puts the token's user id and lowercased role into ctx, the
// same way for HTTP and gRPC callers.
func Authenticate(ctx context.Context, claims *Claims) context.Context {
	ctx = WithUserID(ctx, claims.Subject)
	if role := strings.ToLower(strings.TrimSpace(claims.Role)); role != "" {
		ctx = WithRole(ctx, role)
	}
	return ctx
}

// RequireUser middleware validates Bearer token and injects user_id and role into context.
func RequireUser(verifier JWTVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifier.ParseBearer(r.Header.Get("Authorization"))
			switch {
			case errors.Is(err, ErrMissingToken):
				api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
				return
			case errors.Is(err, ErrNotBearer):
				api.Unauthorized(w, "UNAUTHORIZED", "bearer token required", "")
				return
			case err != nil:
				api.Unauthorized(w, "INVALID_TOKEN", "invalid or expired token", "")
				return
			}
			next.ServeHTTP(w, r.WithContext(Authenticate(r.Context(), claims)))
		})
	}
}
