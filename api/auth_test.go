package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
)

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(payload)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post %s failed: %v", url, err)
	}
	return res
}

func TestSignupAndSignin(t *testing.T) {
	srv, cleanup := setupServer(t)
	defer cleanup()

	token := signup(t, srv, "Pine Valley GC", "ops@pinevalley.test", "course")
	if token == "" {
		t.Fatalf("expected signup token")
	}

	res := postJSON(t, srv.URL+"/v1/auth/signin", map[string]string{
		"email": "ops@pinevalley.test", "password": "hunter22",
	})
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("signin expected 200 got %d", res.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode signin: %v", err)
	}
	if out.Token == "" {
		t.Fatalf("expected signin token")
	}
}

func TestSignupRejectsUnknownAccountType(t *testing.T) {
	srv, cleanup := setupServer(t)
	defer cleanup()

	res := postJSON(t, srv.URL+"/v1/auth/signup", map[string]string{
		"name": "X", "email": "x@x.test", "password": "p", "type": "caddie",
	})
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}
}

func TestSigninWrongPassword(t *testing.T) {
	srv, cleanup := setupServer(t)
	defer cleanup()
	signup(t, srv, "Pro", "pro@p.test", "professional")

	res := postJSON(t, srv.URL+"/v1/auth/signin", map[string]string{
		"email": "pro@p.test", "password": "wrong",
	})
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, cleanup := setupServer(t)
	defer cleanup()

	res, err := http.Get(srv.URL + "/v1/jobs")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", res.StatusCode)
	}
}
