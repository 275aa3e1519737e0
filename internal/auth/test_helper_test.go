package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type mockAuthService struct {
	CreateUserFn  func(user User) (*User, error)
	GetUserFn     func(email string) (*User, error)
	GetUserByIDFn func(id int64) (*User, error)
}

func (m *mockAuthService) CreateUser(user User) (*User, error) {
	if m.CreateUserFn == nil {
		return nil, assertErr("CreateUser not implemented")
	}
	return m.CreateUserFn(user)
}

func (m *mockAuthService) GetUser(email string) (*User, error) {
	if m.GetUserFn == nil {
		return nil, assertErr("GetUser not implemented")
	}
	return m.GetUserFn(email)
}

func (m *mockAuthService) GetUserByID(id int64) (*User, error) {
	if m.GetUserByIDFn == nil {
		return nil, assertErr("GetUserByID not implemented")
	}
	return m.GetUserByIDFn(id)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func setupAuthRouter(ac *AuthController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/login", ac.Login)
	r.POST("/signup", ac.SignUp)
	r.POST("/logout", ac.Logout)
	r.GET("/me", ac.Me)
	r.POST("/refresh", ac.Refresh)

	return r
}

func postJSON(r http.Handler, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func doReq(r http.Handler, method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func requireContains(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Fatalf("expected %q to contain %q", s, sub)
	}
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(b)
}

func cookieHeader(resp *http.Response, name string) (string, bool) {
	prefix := name + "="
	for _, h := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(h, prefix) {
			return h, true
		}
	}
	return "", false
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
