package visitor_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/joestump/sitekit/internal/visitor"
)

func serve(t *testing.T, req *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var got string
	h := visitor.NewMiddleware(false, 3600).Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = visitor.FromContext(r.Context())
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return got, w
}

func TestIdentify_IssuesCookie(t *testing.T) {
	id, w := serve(t, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("visitor id %q is not a uuid: %v", id, err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != visitor.CookieName {
		t.Fatalf("cookies = %v, want one %s cookie", cookies, visitor.CookieName)
	}
	if cookies[0].Value != id {
		t.Errorf("cookie value = %q, want %q", cookies[0].Value, id)
	}
}

func TestIdentify_ReusesCookie(t *testing.T) {
	existing := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: visitor.CookieName, Value: existing})

	id, w := serve(t, req)
	if id != existing {
		t.Errorf("visitor id = %q, want %q", id, existing)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("expected no new cookie for a known visitor")
	}
}

func TestIdentify_ReplacesMalformedCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: visitor.CookieName, Value: "not-a-uuid"})

	id, w := serve(t, req)
	if id == "not-a-uuid" {
		t.Fatal("malformed id was accepted")
	}
	if len(w.Result().Cookies()) != 1 {
		t.Error("expected a fresh cookie")
	}
}
