package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwt "github.com/golang-jwt/jwt/v5"
)

var testVerifier = JWTVerifier{Secret: []byte("moderation-test-secret")}

func sign(t *testing.T, sub, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := testVerifier.Sign(sub, role, ttl)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

// moderationRouter mirrors how the service guards its routes: flag creation
// needs any signed-in user, resolving a flag needs an admin.
func moderationRouter() chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(RequireUser(testVerifier))
		r.Post("/v1/flags", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := UserIDFromContext(r.Context())
			role, _ := RoleFromContext(r.Context())
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(uid + "/" + role))
		})
		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Patch("/v1/flags/{id}", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		})
	})
	return r
}

func call(r http.Handler, method, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestParseBearer(t *testing.T) {
	valid := sign(t, "mentee-7", "mentee", time.Hour)

	claims, err := testVerifier.ParseBearer("  bearer " + valid + " ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "mentee-7" || claims.Role != "mentee" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := testVerifier.ParseBearer(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if _, err := testVerifier.ParseBearer("Basic dXNlcjpwYXNz"); !errors.Is(err, ErrNotBearer) {
		t.Fatalf("expected ErrNotBearer, got %v", err)
	}
	if _, err := testVerifier.ParseBearer("Bearer " + sign(t, "mentee-7", "mentee", -time.Minute)); err == nil {
		t.Fatal("expected expired token to fail")
	}
	if _, err := (JWTVerifier{Secret: []byte("other")}).ParseBearer("Bearer " + valid); err == nil {
		t.Fatal("expected foreign signature to fail")
	}
}

func TestParseBearer_RequiresSubject(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}, Role: "admin"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testVerifier.Secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := testVerifier.ParseBearer("Bearer " + tok); err == nil {
		t.Fatal("expected token without subject to fail")
	}
}

func TestParse_RejectsNonHS256(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "admin",
	}).SignedString(testVerifier.Secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := testVerifier.Parse(tok); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}

func TestAuthenticate_LowercasesRole(t *testing.T) {
	ctx := Authenticate(context.Background(), &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-1"}, Role: " Admin "})
	if uid, _ := UserIDFromContext(ctx); uid != "admin-1" {
		t.Fatalf("expected admin-1, got %q", uid)
	}
	if !IsAdmin(ctx) {
		t.Fatal("expected admin after authenticate")
	}

	ctx = Authenticate(context.Background(), &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "m1"}})
	if _, ok := RoleFromContext(ctx); ok {
		t.Fatal("expected no role for a token without one")
	}
}

func TestRequireUser_FlagRoute(t *testing.T) {
	r := moderationRouter()

	rr := call(r, http.MethodPost, "/v1/flags", "Bearer "+sign(t, "mentor-3", "Mentor", time.Hour))
	if rr.Code != http.StatusCreated || rr.Body.String() != "mentor-3/mentor" {
		t.Fatalf("expected mentor identity in context, got %d %q", rr.Code, rr.Body.String())
	}

	foreign, err := (JWTVerifier{Secret: []byte("x")}).Sign("mentor-3", "admin", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	cases := map[string]string{
		"missing":    "",
		"basic":      "Basic dXNlcjpwYXNz",
		"garbage":    "Bearer not.a.token",
		"expired":    "Bearer " + sign(t, "mentor-3", "mentor", -time.Minute),
		"wrong-key":  "Bearer " + foreign,
		"empty-auth": "Bearer ",
	}
	for name, authz := range cases {
		if rr := call(r, http.MethodPost, "/v1/flags", authz); rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rr.Code)
		}
	}
}

func TestRequireAdmin_FlagResolution(t *testing.T) {
	r := moderationRouter()

	for _, role := range []string{"mentee", "mentor", ""} {
		rr := call(r, http.MethodPatch, "/v1/flags/flag-1", "Bearer "+sign(t, "user-1", role, time.Hour))
		if rr.Code != http.StatusForbidden {
			t.Fatalf("role %q: expected 403, got %d", role, rr.Code)
		}
	}
	if rr := call(r, http.MethodPatch, "/v1/flags/flag-1", "Bearer "+sign(t, "admin-1", "ADMIN", time.Hour)); rr.Code != http.StatusOK {
		t.Fatalf("expected admin to pass, got %d", rr.Code)
	}
}

func TestRequireAdmin_TamperedRoleClaim(t *testing.T) {
	parts := strings.Split(sign(t, "mentee-7", "mentee", time.Hour), ".")
	if len(parts) != 3 {
		t.Fatal("expected 3 JWT parts")
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	escalated := strings.Replace(string(raw), `"role":"mentee"`, `"role":"admin"`, 1)
	forged := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(escalated)) + "." + parts[2]

	if rr := call(moderationRouter(), http.MethodPatch, "/v1/flags/flag-1", "Bearer "+forged); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected forged admin claim to be rejected with 401, got %d", rr.Code)
	}
}

func TestSign_RequiresSubject(t *testing.T) {
	if _, err := testVerifier.Sign(" ", "admin", time.Hour); err == nil {
		t.Fatal("expected error for blank subject")
	}
}
