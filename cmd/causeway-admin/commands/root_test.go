package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveServer(t *testing.T) {
	tests := []struct {
		name              string
		flag, env, stored string
		want              string
	}{
		{name: "default", want: defaultServer},
		{name: "flag wins", flag: "http://a", env: "http://b", stored: "http://c", want: "http://a"},
		{name: "env beats stored", env: "http://b", stored: "http://c", want: "http://b"},
		{name: "stored as fallback", stored: "http://c", want: "http://c"},
		{name: "whitespace is empty", flag: "  ", want: defaultServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveServer(tt.flag, tt.env, tt.stored); got != tt.want {
				t.Errorf("resolveServer(%q, %q, %q) = %q, want %q", tt.flag, tt.env, tt.stored, got, tt.want)
			}
		})
	}
}

// runCommand executes the CLI the way main does, with test-controlled args.
func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd("test")
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	persistTokens()
	return err
}

func TestLoginThenListFlow(t *testing.T) {
	var sawBearer string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode login body: %v", err)
		}
		if req.Email != "admin@example.org" || req.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"id":    "u1",
				"email": "admin@example.org",
				"name":  "Admin",
				"role":  "admin",
			},
			"access_token":  "acc-1",
			"refresh_token": "ref-1",
			"token_type":    "Bearer",
			"expires_in":    900,
		})
	})
	mux.HandleFunc("GET /api/v1/donors", func(w http.ResponseWriter, r *http.Request) {
		sawBearer = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []any{}, "total": 0, "limit": 50, "offset": 0,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()

	err := runCommand(t, "--server", srv.URL, "--config-dir", dir, "login", "admin@example.org", "--password", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "credentials.json"))
	if err != nil {
		t.Fatalf("credentials not written: %v", err)
	}
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("parse credentials: %v", err)
	}
	if stored.Server != srv.URL || stored.AccessToken != "acc-1" || stored.RefreshToken != "ref-1" {
		t.Errorf("stored session = %+v", stored)
	}

	// Second invocation resumes the session from disk. The server comes
	// from the cached credentials, not a flag.
	if err := runCommand(t, "--config-dir", dir, "donors", "list"); err != nil {
		t.Fatalf("donors list: %v", err)
	}
	if sawBearer != "Bearer acc-1" {
		t.Errorf("donors list sent Authorization %q, want the cached token", sawBearer)
	}
}

func TestTokensNotSentToDifferentServer(t *testing.T) {
	var sawAuth string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/donors", func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"unauthorized","status":401,"code":"UNAUTHORIZED"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	seed := storedSession{Server: "http://other.example", AccessToken: "acc-x", RefreshToken: "ref-x"}
	data, _ := json.Marshal(seed)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "credentials.json"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	err := runCommand(t, "--server", srv.URL, "--config-dir", dir, "donors", "list")
	if err == nil {
		t.Fatal("expected an unauthorized error")
	}
	if sawAuth != "" {
		t.Errorf("tokens for %s were sent to %s", seed.Server, srv.URL)
	}
}

func TestPromptPassword(t *testing.T) {
	got, err := promptPassword(strings.NewReader("hunter2\n"))
	if err != nil {
		t.Fatalf("promptPassword() error = %v", err)
	}
	if got != "hunter2" {
		t.Errorf("promptPassword() = %q", got)
	}

	if _, err := promptPassword(strings.NewReader("\n")); err == nil {
		t.Error("empty password should error")
	}

	// CRLF terminals strip cleanly too.
	got, err = promptPassword(strings.NewReader("secret\r\n"))
	if err != nil {
		t.Fatalf("promptPassword() error = %v", err)
	}
	if got != "secret" {
		t.Errorf("promptPassword() = %q", got)
	}
}
