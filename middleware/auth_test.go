package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tokenstore "ShopAssist/pkg/token"

	"github.com/gin-gonic/gin"
)

func newAuthEngine(tm *tokenstore.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", AuthMiddleware(tm), func(c *gin.Context) {
		uid, ok := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"uid": uid, "ok": ok})
	})
	r.GET("/ws", QueryTokenAuth(tm), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tm := tokenstore.NewManager("secret", time.Hour)
	defer tm.Close()
	r := newAuthEngine(tm)

	good, _, err := tm.Issue(5)
	if err != nil {
		t.Fatal(err)
	}
	revoked, claims, _ := tm.Issue(6)
	tm.Revoke(claims.JTI, claims.ExpiresAt)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"revoked", "Bearer " + revoked, http.StatusUnauthorized},
		{"valid", "Bearer " + good, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, w.Code, w.Body.String())
			}
			if w.Header().Get(RequestIDHeader) == "" {
				t.Errorf("expected a request id header")
			}
		})
	}
}

func TestQueryTokenAuth(t *testing.T) {
	tm := tokenstore.NewManager("secret", time.Hour)
	defer tm.Close()
	r := newAuthEngine(tm)
	tok, _, _ := tm.Issue(9)

	for path, want := range map[string]int{
		"/ws":              http.StatusUnauthorized,
		"/ws?token=nope":   http.StatusUnauthorized,
		"/ws?token=" + tok: http.StatusOK,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Errorf("%s: expected %d, got %d", path, want, w.Code)
		}
	}
}

func TestAuthDisabled(t *testing.T) {
	r := newAuthEngine(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected pass-through without a token manager, got %d", w.Code)
	}
}

func TestRequestIDKeepsIncoming(t *testing.T) {
	r := newAuthEngine(nil)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected incoming request id to be echoed, got %q", got)
	}
}
