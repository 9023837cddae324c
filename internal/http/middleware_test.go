package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"blogify/internal/domain"
	"blogify/internal/token"
)

const testSecret = "middleware-test-secret"

func identityRouter(t *testing.T, users *stubUserRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ResolveIdentity(zap.NewNop(), token.NewService(testSecret), users))
	r.GET("/whoami", func(c *gin.Context) {
		if user, ok := CurrentUser(c); ok {
			c.JSON(http.StatusOK, gin.H{"id": user.ID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": ""})
	})
	return r
}

func doWithCookie(r *gin.Engine, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResolveIdentityWithoutCookieIsAnonymous(t *testing.T) {
	r := identityRouter(t, newStubUserRepo())

	w := doWithCookie(r, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"id":""}` {
		t.Fatalf("expected anonymous body, got %s", body)
	}
}

func TestResolveIdentityAttachesUserFromValidCookie(t *testing.T) {
	user := domain.User{ID: "u1", Email: "ann@example.com", Role: domain.RoleUser}
	r := identityRouter(t, newStubUserRepo(user))

	tok, err := token.NewService(testSecret).Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := doWithCookie(r, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"id":"u1"}` {
		t.Fatalf("expected resolved identity, got %s", body)
	}
}

// Un token defectuoso nunca corta el request: degrada a anónimo.
func TestResolveIdentityDegradesBadCredentials(t *testing.T) {
	user := domain.User{ID: "u1", Email: "ann@example.com", Role: domain.RoleUser}
	users := newStubUserRepo(user)
	r := identityRouter(t, users)

	valid, err := token.NewService(testSecret).Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expired := signExpiredToken(t, "u1")
	wrongKey, err := token.NewService("other-secret").Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	deletedUser, err := token.NewService(testSecret).Issue(domain.User{ID: "ghost", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := map[string]string{
		"tampered":     valid + "x",
		"garbage":      "not-a-jwt",
		"expired":      expired,
		"wrong key":    wrongKey,
		"deleted user": deletedUser,
	}
	for name, cookie := range cases {
		w := doWithCookie(r, cookie)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", name, w.Code)
		}
		if body := w.Body.String(); body != `{"id":""}` {
			t.Fatalf("%s: expected anonymous, got %s", name, body)
		}
	}
}

func signExpiredToken(t *testing.T, userID string) string {
	t.Helper()
	past := time.Now().UTC().Add(-time.Hour)
	claims := token.Claims{
		UserID: userID,
		Role:   domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "blogify",
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func guardRouter(user *domain.User, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if user != nil {
		u := *user
		r.Use(func(c *gin.Context) {
			c.Set(authUserKey, u)
			c.Next()
		})
	}
	r.Any("/guarded/:id", guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func hitGuard(r *gin.Engine, id string) int {
	req := httptest.NewRequest(http.MethodGet, "/guarded/"+id, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireAuth(t *testing.T) {
	if code := hitGuard(guardRouter(nil, RequireAuth()), "x"); code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", code)
	}
	user := domain.User{ID: "u1", Role: domain.RoleUser}
	if code := hitGuard(guardRouter(&user, RequireAuth()), "x"); code != http.StatusOK {
		t.Fatalf("authenticated: expected 200, got %d", code)
	}
}

func TestRequireRole(t *testing.T) {
	guard := RequireRole(domain.RoleAdmin)

	if code := hitGuard(guardRouter(nil, guard), "x"); code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", code)
	}
	user := domain.User{ID: "u1", Role: domain.RoleUser}
	if code := hitGuard(guardRouter(&user, guard), "x"); code != http.StatusForbidden {
		t.Fatalf("user: expected 403, got %d", code)
	}
	admin := domain.User{ID: "a1", Role: domain.RoleAdmin}
	if code := hitGuard(guardRouter(&admin, guard), "x"); code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", code)
	}
}

func TestRequireSelf(t *testing.T) {
	user := domain.User{ID: "u1", Role: domain.RoleUser}
	guard := RequireSelf("id")

	if code := hitGuard(guardRouter(&user, guard), "u1"); code != http.StatusOK {
		t.Fatalf("own id: expected 200, got %d", code)
	}
	if code := hitGuard(guardRouter(&user, guard), "u2"); code != http.StatusForbidden {
		t.Fatalf("other id: expected 403, got %d", code)
	}
	if code := hitGuard(guardRouter(nil, guard), "u1"); code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", code)
	}
}

func TestRequireBlogOwnerOrAdmin(t *testing.T) {
	blogs := newStubBlogRepo(domain.Blog{ID: "b1", CreatedBy: "owner"})
	guard := RequireBlogOwnerOrAdmin(blogs, "id")

	owner := domain.User{ID: "owner", Role: domain.RoleUser}
	stranger := domain.User{ID: "stranger", Role: domain.RoleUser}
	admin := domain.User{ID: "a1", Role: domain.RoleAdmin}

	if code := hitGuard(guardRouter(&owner, guard), "b1"); code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d", code)
	}
	if code := hitGuard(guardRouter(&admin, guard), "b1"); code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", code)
	}
	if code := hitGuard(guardRouter(&stranger, guard), "b1"); code != http.StatusForbidden {
		t.Fatalf("stranger: expected 403, got %d", code)
	}
	if code := hitGuard(guardRouter(&owner, guard), "missing"); code != http.StatusNotFound {
		t.Fatalf("missing blog: expected 404, got %d", code)
	}
	if code := hitGuard(guardRouter(nil, guard), "b1"); code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", code)
	}
}

func TestRequireCommentOwnerOrAdmin(t *testing.T) {
	comments := newStubCommentRepo(domain.Comment{ID: "c1", BlogID: "b1", CreatedBy: "author"})
	guard := RequireCommentOwnerOrAdmin(comments, "id")

	author := domain.User{ID: "author", Role: domain.RoleUser}
	stranger := domain.User{ID: "stranger", Role: domain.RoleUser}
	admin := domain.User{ID: "a1", Role: domain.RoleAdmin}

	if code := hitGuard(guardRouter(&author, guard), "c1"); code != http.StatusOK {
		t.Fatalf("author: expected 200, got %d", code)
	}
	if code := hitGuard(guardRouter(&admin, guard), "c1"); code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", code)
	}
	if code := hitGuard(guardRouter(&stranger, guard), "c1"); code != http.StatusForbidden {
		t.Fatalf("stranger: expected 403, got %d", code)
	}
	if code := hitGuard(guardRouter(&author, guard), "missing"); code != http.StatusNotFound {
		t.Fatalf("missing comment: expected 404, got %d", code)
	}
}

func TestRejectIfAuthenticated(t *testing.T) {
	if code := hitGuard(guardRouter(nil, RejectIfAuthenticated()), "x"); code != http.StatusOK {
		t.Fatalf("anonymous: expected 200, got %d", code)
	}
	user := domain.User{ID: "u1", Role: domain.RoleUser}
	if code := hitGuard(guardRouter(&user, RejectIfAuthenticated()), "x"); code != http.StatusBadRequest {
		t.Fatalf("authenticated: expected 400, got %d", code)
	}
}
