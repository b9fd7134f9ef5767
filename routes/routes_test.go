package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ShopAssist/middleware"
	"ShopAssist/pkg/database/dbtest"
	svc "ShopAssist/pkg/services"
	"ShopAssist/pkg/store"
	tokenstore "ShopAssist/pkg/token"

	"github.com/gin-gonic/gin"
)

func newEngine(t *testing.T, tokens *tokenstore.Manager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	dbtest.SeedUser(t, db, 1, "one@example.com")
	st := store.New(db)

	limiter := middleware.NewRateLimiter(time.Minute, 2)
	t.Cleanup(limiter.Close)

	r := gin.New()
	r.Use(middleware.RequestID())
	RegisterRoutes(r, Deps{
		Chat:    svc.NewChatService(st, svc.LocalGenerator{}),
		Store:   st,
		Tokens:  tokens,
		Limiter: limiter,
	})
	return r
}

func serve(r *gin.Engine, method, path, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRegisterRoutesOpen(t *testing.T) {
	r := newEngine(t, nil)

	checks := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodPost, "/api/chat", `{"user_id":1,"message":"hello"}`, http.StatusOK},
		{http.MethodGet, "/api/conversations?user_id=1", "", http.StatusOK},
		{http.MethodGet, "/api/conversations/1", "", http.StatusOK},
		{http.MethodGet, "/api/users/1", "", http.StatusOK},
		{http.MethodPost, "/api/auth/login", `{}`, http.StatusNotFound},
	}
	for _, c := range checks {
		if got := serve(r, c.method, c.path, c.body); got != c.want {
			t.Errorf("%s %s: expected %d, got %d", c.method, c.path, c.want, got)
		}
	}
}

func TestChatIsRateLimited(t *testing.T) {
	r := newEngine(t, nil)
	body := `{"user_id":1,"message":"hello"}`
	serve(r, http.MethodPost, "/api/chat", body)
	serve(r, http.MethodPost, "/api/chat", body)
	if got := serve(r, http.MethodPost, "/api/chat", body); got != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third call, got %d", got)
	}
}

func TestRegisterRoutesWithAuth(t *testing.T) {
	tm := tokenstore.NewManager("secret", time.Hour)
	defer tm.Close()
	r := newEngine(t, tm)

	if got := serve(r, http.MethodGet, "/api/conversations?user_id=1", ""); got != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", got)
	}
	if got := serve(r, http.MethodPost, "/api/auth/login", `{"email":"one@example.com","password":"x"}`); got != http.StatusUnauthorized {
		t.Fatalf("expected login route to be mounted, got %d", got)
	}
	if got := serve(r, http.MethodGet, "/healthz", ""); got != http.StatusOK {
		t.Fatalf("expected health to stay public, got %d", got)
	}
}
