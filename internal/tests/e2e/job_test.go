//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jobnexus/apiserver/config"
	"github.com/jobnexus/apiserver/internal/server"
	_ "github.com/lib/pq"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

// TestJobLifecycle walks the full posting pipeline: an employer
// registers and is approved, posts a job that goes through moderation,
// a candidate applies, and the employer reviews the application.
func TestJobLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	stamp := time.Now().UnixNano()

	adminEmail := fmt.Sprintf("admin_%d@example.com", stamp)
	adminToken, _ := register(t, baseURL, adminEmail, "Admin", "candidate")
	if err := promoteToSuperAdmin(adminEmail); err != nil {
		t.Fatalf("promote admin: %v", err)
	}

	employerEmail := fmt.Sprintf("acme_%d@example.com", stamp)
	employerToken, employer := register(t, baseURL, employerEmail, "Acme Inc", "employer")
	if employer.Status != "pending" {
		t.Fatalf("employer status after register = %q, want pending", employer.Status)
	}

	// A pending employer cannot post yet.
	rec := doJSON(t, baseURL, http.MethodPost, "/employer/jobs", employerToken, jobPayload())
	if rec.status != http.StatusForbidden {
		t.Fatalf("pending employer post status = %d, want 403: %s", rec.status, rec.body)
	}

	setStatus(t, baseURL, adminToken, fmt.Sprintf("/admin/users/%d/status", employer.ID), "active")

	rec = doJSON(t, baseURL, http.MethodPost, "/employer/jobs", employerToken, jobPayload())
	if rec.status != http.StatusCreated {
		t.Fatalf("create job status = %d: %s", rec.status, rec.body)
	}
	var job struct {
		ID     int    `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(rec.body), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.Status != "pending" {
		t.Fatalf("new job status = %q, want pending", job.Status)
	}

	// Invisible to the public while pending.
	rec = doJSON(t, baseURL, http.MethodGet, fmt.Sprintf("/jobs/%d", job.ID), "", nil)
	if rec.status != http.StatusNotFound {
		t.Fatalf("pending job public status = %d, want 404", rec.status)
	}

	setStatus(t, baseURL, adminToken, fmt.Sprintf("/admin/jobs/%d/status", job.ID), "approved")

	rec = doJSON(t, baseURL, http.MethodGet, fmt.Sprintf("/jobs/%d", job.ID), "", nil)
	if rec.status != http.StatusOK {
		t.Fatalf("approved job public status = %d, want 200", rec.status)
	}

	candidateEmail := fmt.Sprintf("jo_%d@example.com", stamp)
	candidateToken, _ := register(t, baseURL, candidateEmail, "Jo", "candidate")

	apply := map[string]any{"job_id": job.ID, "cover_letter": "Hire me."}
	rec = doJSON(t, baseURL, http.MethodPost, "/candidate/applications", candidateToken, apply)
	if rec.status != http.StatusCreated {
		t.Fatalf("apply status = %d: %s", rec.status, rec.body)
	}
	var application struct {
		ID     int    `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(rec.body), &application); err != nil {
		t.Fatalf("decode application: %v", err)
	}
	if application.Status != "pending" {
		t.Fatalf("application status = %q, want pending", application.Status)
	}

	// Second application to the same job conflicts.
	rec = doJSON(t, baseURL, http.MethodPost, "/candidate/applications", candidateToken, apply)
	if rec.status != http.StatusConflict {
		t.Fatalf("duplicate apply status = %d, want 409", rec.status)
	}

	rec = doJSON(t, baseURL, http.MethodGet, fmt.Sprintf("/employer/jobs/%d/applications", job.ID), employerToken, nil)
	if rec.status != http.StatusOK {
		t.Fatalf("list applicants status = %d: %s", rec.status, rec.body)
	}
	var applicants []struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal([]byte(rec.body), &applicants); err != nil {
		t.Fatalf("decode applicants: %v", err)
	}
	if len(applicants) != 1 || applicants[0].ID != application.ID {
		t.Fatalf("applicants = %+v, want the one submitted application", applicants)
	}

	setStatus(t, baseURL, employerToken, fmt.Sprintf("/employer/applications/%d", application.ID), "shortlisted")

	rec = doJSON(t, baseURL, http.MethodGet, "/candidate/applications", candidateToken, nil)
	if rec.status != http.StatusOK {
		t.Fatalf("list own applications status = %d", rec.status)
	}
	if !strings.Contains(rec.body, `"shortlisted"`) {
		t.Fatalf("candidate view missing review status: %s", rec.body)
	}
}

type response struct {
	status int
	body   string
}

type userResponse struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

func register(t *testing.T, baseURL, email, name, role string) (string, userResponse) {
	t.Helper()

	payload := map[string]string{
		"email":    email,
		"name":     name,
		"role":     role,
		"password": "testpass123!",
	}
	rec := doJSON(t, baseURL, http.MethodPost, "/auth/register", "", payload)
	if rec.status != http.StatusCreated {
		t.Fatalf("register %s status = %d: %s", email, rec.status, rec.body)
	}

	var parsed struct {
		Token string       `json:"token"`
		User  userResponse `json:"user"`
	}
	if err := json.Unmarshal([]byte(rec.body), &parsed); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if parsed.Token == "" {
		t.Fatalf("missing token in register response")
	}
	return parsed.Token, parsed.User
}

func setStatus(t *testing.T, baseURL, token, path, status string) {
	t.Helper()
	rec := doJSON(t, baseURL, http.MethodPatch, path, token, map[string]string{"status": status})
	if rec.status != http.StatusOK {
		t.Fatalf("PATCH %s -> %s status = %d: %s", path, status, rec.status, rec.body)
	}
}

func jobPayload() map[string]any {
	return map[string]any{
		"title":       "Senior Gopher",
		"description": "Write Go all day.",
		"company":     "Acme Inc",
		"location":    "Remote",
		"job_type":    "full_time",
		"skills":      []string{"go", "postgres"},
	}
}

func doJSON(t *testing.T, baseURL, method, path, token string, payload any) response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	return response{status: resp.StatusCode, body: strings.TrimSpace(string(data))}
}

func promoteToSuperAdmin(email string) error {
	cfg := config.LoadConfig()
	db, err := sql.Open("postgres", buildPostgresURL(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = db.ExecContext(ctx,
		"UPDATE users SET role = 'superadmin', status = 'active', updated_at = NOW() WHERE email = $1", email)
	return err
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	db, err := sql.Open("postgres", buildPostgresURL(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	migrationsPath := filepath.Join(root, "internal", "db", "migrations")
	migrationsURL := "file://" + migrationsPath

	migrator, err := migrate.New(migrationsURL, dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func buildPostgresURL(cfg config.Config) string {
	sslmode := "disable"
	if cfg.Database.UseSSL {
		sslmode = "require"
	}
	host := fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		host,
		cfg.Database.DBName,
		sslmode,
	)
}

func startServer() (*server.Server, error) {
	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "jobnexus")
	_ = os.Setenv("DB_PASSWORD", "jobnexus")
	_ = os.Setenv("DB_NAME", "jobnexus")
	_ = os.Setenv("DB_USE_SSL", "false")

	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
