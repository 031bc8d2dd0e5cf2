package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nadscarim/task-management/internal/core/domain"
)

type stubVerifier struct {
	verifyFn func(token string) (*domain.Identity, error)
}

func (s *stubVerifier) VerifyAccessToken(token string) (*domain.Identity, error) {
	return s.verifyFn(token)
}

func newCookieContext(cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func assertHTTPError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code || he.Message != msg {
		t.Fatalf("expected %d %q, got %d %v", code, msg, he.Code, he.Message)
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	c, rec := newCookieContext(&http.Cookie{Name: AccessTokenCookie, Value: "good"})
	verifier := &stubVerifier{verifyFn: func(token string) (*domain.Identity, error) {
		if token != "good" {
			t.Fatalf("unexpected token %q", token)
		}
		return &domain.Identity{ID: "u-1", Email: "a@x.com", Role: domain.RoleUser}, nil
	}}

	called := false
	handler := Authenticate(verifier)(func(c echo.Context) error {
		called = true
		id, ok := IdentityFrom(c)
		if !ok || id.ID != "u-1" || id.Role != domain.RoleUser {
			t.Fatalf("identity not set: %+v", id)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		cookie  *http.Cookie
		err     error
		code    int
		message string
	}{
		{"missing cookie", nil, nil, http.StatusUnauthorized, "Access token required"},
		{"empty cookie", &http.Cookie{Name: AccessTokenCookie, Value: ""}, nil, http.StatusUnauthorized, "Access token required"},
		{"expired", &http.Cookie{Name: AccessTokenCookie, Value: "old"}, domain.ErrTokenExpired, http.StatusUnauthorized, "Token expired"},
		{"invalid", &http.Cookie{Name: AccessTokenCookie, Value: "forged"}, domain.ErrTokenInvalid, http.StatusUnauthorized, "Invalid token"},
		{"unexpected", &http.Cookie{Name: AccessTokenCookie, Value: "x"}, errors.New("boom"), http.StatusInternalServerError, "Authentication failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newCookieContext(tt.cookie)
			verifier := &stubVerifier{verifyFn: func(string) (*domain.Identity, error) {
				return nil, tt.err
			}}

			handler := Authenticate(verifier)(func(c echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})

			assertHTTPError(t, handler(c), tt.code, tt.message)
		})
	}
}

func TestAuthenticate_IgnoresAuthorizationHeader(t *testing.T) {
	c, _ := newCookieContext(nil)
	c.Request().Header.Set("Authorization", "Bearer something")
	verifier := &stubVerifier{verifyFn: func(string) (*domain.Identity, error) {
		t.Fatalf("verifier must not be called without a cookie")
		return nil, nil
	}}

	err := Authenticate(verifier)(func(echo.Context) error { return nil })(c)
	assertHTTPError(t, err, http.StatusUnauthorized, "Access token required")
}
