package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyKey(t *testing.T) {
	tests := []struct {
		name       string
		candidate  string
		configured string
		want       bool
	}{
		{name: "exact match", candidate: "hunter2", configured: "hunter2", want: true},
		{name: "candidate is trimmed", candidate: "  hunter2\n", configured: "hunter2", want: true},
		{name: "configured is trimmed", candidate: "hunter2", configured: " hunter2 ", want: true},
		{name: "mismatch", candidate: "hunter3", configured: "hunter2", want: false},
		{name: "empty configured key denies everything", candidate: "", configured: "", want: false},
		{name: "whitespace-only configured key denies", candidate: "", configured: "   ", want: false},
		{name: "empty candidate against real key", candidate: "", configured: "hunter2", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyKey(tt.candidate, tt.configured); got != tt.want {
				t.Errorf("VerifyKey(%q, %q) = %v, want %v", tt.candidate, tt.configured, got, tt.want)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	const secret = "test-session-secret"

	token, err := GenerateToken(secret)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	claims, err := ParseToken(token, secret)
	if err != nil {
		t.Fatalf("ParseToken() failed: %v", err)
	}

	if !claims.DevUnlocked {
		t.Error("DevUnlocked = false, want true for a generated session token")
	}
	if claims.Issuer != TokenIssuer {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, TokenIssuer)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	if _, err := ParseToken(token, "secret-b"); err == nil {
		t.Error("ParseToken() with a different secret succeeded, want error")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.token", "secret"); err == nil {
		t.Error("ParseToken() with garbage input succeeded, want error")
	}
}

func TestExtractorMiddlewareInjectsClaims(t *testing.T) {
	const secret = "test-session-secret"

	token, err := GenerateToken(secret)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	var privileged bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		privileged = IsPrivileged(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	ExtractorMiddleware(secret)(next).ServeHTTP(httptest.NewRecorder(), req)

	if !privileged {
		t.Error("request with a valid session cookie is not privileged")
	}
}

func TestExtractorMiddlewareTreatsBadTokenAsAnonymous(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{name: "no cookie", cookie: nil},
		{name: "empty cookie", cookie: &http.Cookie{Name: CookieName, Value: ""}},
		{name: "tampered token", cookie: &http.Cookie{Name: CookieName, Value: "abc.def.ghi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called, privileged bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				privileged = IsPrivileged(r)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			ExtractorMiddleware("secret")(next).ServeHTTP(httptest.NewRecorder(), req)

			if !called {
				t.Fatal("middleware interrupted the request, want pass-through")
			}
			if privileged {
				t.Error("anonymous request reported as privileged")
			}
		})
	}
}

func TestSetCookieAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	SetCookie(rec, "token-value")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}

	c := cookies[0]
	if c.Name != CookieName || c.Value != "token-value" {
		t.Errorf("cookie = %s=%s, want %s=token-value", c.Name, c.Value, CookieName)
	}
	if !c.HttpOnly {
		t.Error("cookie is not HttpOnly")
	}
	if c.Path != "/" {
		t.Errorf("cookie path = %q, want /", c.Path)
	}
}
