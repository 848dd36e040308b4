package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lamwh/microblog-backend/db"
	"github.com/lamwh/microblog-backend/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testServer struct {
	server *httptest.Server
	client *http.Client
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, _ := conn.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.Use(conn)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := chi.NewRouter()
	r.Use(middleware.WithDeviceInfo)
	NewHandlers(logger).SetupRoutes(r)

	ts := httptest.NewServer(r)
	jar, err := cookiejar.New(nil)
	if err != nil {
		ts.Close()
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	t.Cleanup(func() {
		ts.Close()
		sqlDB.Close()
	})
	return &testServer{server: ts, client: &http.Client{Jar: jar}}
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	resp, err := ts.client.Post(ts.server.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	return resp
}

func registerBody(email string) map[string]string {
	return map[string]string{
		"name":                  "Example User",
		"email":                 email,
		"password":              "foobar",
		"password_confirmation": "foobar",
	}
}

func TestRegister(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("valid signup", func(t *testing.T) {
		resp := ts.postJSON(t, "/auth/register", registerBody("new@example.com"))
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("register status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
		var out struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if out.ID == 0 || out.Email != "new@example.com" {
			t.Errorf("register response = %+v", out)
		}
	})

	t.Run("validation failure reports fields", func(t *testing.T) {
		body := registerBody("bad@example.com")
		body["name"] = ""
		body["password_confirmation"] = "mismatch"
		resp := ts.postJSON(t, "/auth/register", body)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("register status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
		}
		var out struct {
			Errors map[string]string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		for _, field := range []string{"name", "password_confirmation"} {
			if _, ok := out.Errors[field]; !ok {
				t.Errorf("errors = %v, want message for %q", out.Errors, field)
			}
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		resp := ts.postJSON(t, "/auth/register", registerBody("new@example.com"))
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("duplicate register status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
		}
	})
}

func TestSigninSignout(t *testing.T) {
	ts := setupTestServer(t)
	resp := ts.postJSON(t, "/auth/register", registerBody("session@example.com"))
	resp.Body.Close()

	creds := map[string]string{"email": "session@example.com", "password": "foobar"}

	t.Run("signin sets the access token", func(t *testing.T) {
		resp := ts.postJSON(t, "/auth/signin", creds)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("signin status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		var out struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if out.AccessToken == "" {
			t.Errorf("signin returned an empty access token")
		}
	})

	t.Run("current user", func(t *testing.T) {
		resp, err := ts.client.Get(ts.server.URL + "/auth/user")
		if err != nil {
			t.Fatalf("GET /auth/user error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("current user status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		var out struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if out.Email != "session@example.com" {
			t.Errorf("current user = %q, want session@example.com", out.Email)
		}
	})

	t.Run("signout invalidates the session", func(t *testing.T) {
		resp := ts.postJSON(t, "/auth/signout", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("signout status = %d, want %d", resp.StatusCode, http.StatusNoContent)
		}
		resp, err := ts.client.Get(ts.server.URL + "/auth/user")
		if err != nil {
			t.Fatalf("GET /auth/user error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			t.Errorf("current user still accessible after signout")
		}
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		wrongPass := ts.postJSON(t, "/auth/signin", map[string]string{"email": "session@example.com", "password": "wrongpass"})
		wrongPass.Body.Close()
		unknown := ts.postJSON(t, "/auth/signin", map[string]string{"email": "nobody@example.com", "password": "foobar"})
		unknown.Body.Close()
		if wrongPass.StatusCode != http.StatusUnauthorized {
			t.Errorf("wrong password status = %d, want %d", wrongPass.StatusCode, http.StatusUnauthorized)
		}
		if wrongPass.StatusCode != unknown.StatusCode {
			t.Errorf("wrong password (%d) and unknown email (%d) are distinguishable", wrongPass.StatusCode, unknown.StatusCode)
		}
	})
}

func TestConcurrentSignins(t *testing.T) {
	ts := setupTestServer(t)
	resp := ts.postJSON(t, "/auth/register", registerBody("racer@example.com"))
	resp.Body.Close()

	body, err := json.Marshal(map[string]string{"email": "racer@example.com", "password": "foobar"})
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	const n = 4
	statuses := make(chan int, n)
	for i := 0; i < n; i++ {
		go func() {
			resp, err := ts.client.Post(ts.server.URL+"/auth/signin", "application/json", bytes.NewReader(body))
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	for i := 0; i < n; i++ {
		if code := <-statuses; code != http.StatusOK {
			t.Errorf("concurrent signin status = %d, want %d", code, http.StatusOK)
		}
	}
}

func TestAuthenticatorRejectsMissingToken(t *testing.T) {
	ts := setupTestServer(t)
	resp, err := http.Get(ts.server.URL + "/auth/user")
	if err != nil {
		t.Fatalf("GET /auth/user error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}
