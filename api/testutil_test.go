package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garnizeh/fairway/api"
	embedded "github.com/garnizeh/fairway/db"
	"github.com/garnizeh/fairway/internal/config"
	"github.com/garnizeh/fairway/internal/db"
)

// setupServer boots the full router over a named in-memory database.
func setupServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared", t.Name())
	d, err := db.New(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	if err := db.Migrate(ctx, d, embedded.Migrations); err != nil {
		d.Close()
		t.Fatalf("db.Migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		TokenDuration: time.Hour,
	}
	handler := api.SetupRoutes(cfg, "test", "now", d, nil)
	srv := httptest.NewServer(handler)
	return srv, func() { srv.Close(); d.Close() }
}

// signup registers an account and returns its bearer token.
func signup(t *testing.T, srv *httptest.Server, name, email, typ string) string {
	t.Helper()
	body := map[string]string{"name": name, "email": email, "password": "hunter22", "type": typ}
	b, _ := json.Marshal(body)
	res, err := http.Post(srv.URL+"/v1/auth/signup", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("signup request failed: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(res.Body)
		t.Fatalf("signup expected 200 got %d: %s", res.StatusCode, raw)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	if out.Token == "" {
		t.Fatalf("expected a token")
	}
	return out.Token
}

// doJSON sends an authenticated JSON request and decodes the response into out
// when out is non-nil. It returns the status code.
func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, payload, out any) int {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer res.Body.Close()
	raw, _ := io.ReadAll(res.Body)
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode %s %s response (%d): %v: %s", method, path, res.StatusCode, err, raw)
		}
	}
	return res.StatusCode
}

func jobPath(id int64) string {
	return fmt.Sprintf("/v1/jobs/%d", id)
}

func validJobPayload() map[string]any {
	return map[string]any{
		"title":         "Fairway aeration crew",
		"description":   "Aerate all eighteen fairways ahead of overseeding.",
		"job_type":      "greenskeeping",
		"latitude":      40.7,
		"longitude":     -74.0,
		"address":       "123 Fairway Dr",
		"start_date":    time.Now().UTC().Add(72 * time.Hour).UnixMilli(),
		"hourly_rate":   45,
		"urgency_level": "normal",
	}
}
