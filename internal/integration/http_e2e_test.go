//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"golang.org/x/crypto/bcrypt"

	httpserver "water_map/internal/adapters/http_server"
	redisad "water_map/internal/adapters/redis"
	"water_map/internal/app"
	mysqlrepo "water_map/internal/storage/mysql"
)

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = filepath.Join("..", "..", "migrations")
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// Full stack: real MySQL (dockertest), real Redis protocol (miniredis),
// the chi server, and the signed-token admin gate.
func TestHTTP_EndToEnd_ModerationFlow(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=watermap",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/watermap?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Provision the admin the way cmd/provision-admin would.
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if err := repo.UpsertAdmin(ctx, "bob", string(hash)); err != nil {
		t.Fatalf("provision admin: %v", err)
	}

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	auth := app.NewAuthService(repo, "e2e-secret", time.Hour)
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Sub:  app.NewSubmissionService(repo),
		Rev:  app.NewReviewService(repo, cache),
		Q:    app.NewQueryService(repo, cache, time.Minute),
		Auth: auth,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	post := func(path, token string, body any) (*http.Response, []byte) {
		b, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		defer resp.Body.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return resp, buf.Bytes()
	}
	get := func(path, token string) (*http.Response, []byte) {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return resp, buf.Bytes()
	}

	// 1) Anonymous submission.
	resp, body := post("/v1/restaurants", "", map[string]any{
		"name": "A", "address": "1 Main St",
		"latitude": 40.0, "longitude": -74.0,
		"water_billing_policy": "free",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: %d %s", resp.StatusCode, body)
	}

	// 2) Duplicate is refused, store keeps one row.
	resp, _ = post("/v1/restaurants", "", map[string]any{
		"name": "A", "address": "1 Main St",
		"latitude": 40.0, "longitude": -74.0,
		"water_billing_policy": "free",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate submit: %d", resp.StatusCode)
	}

	// 3) Login.
	resp, body = post("/v1/admin/login", "", map[string]string{"username": "bob", "password": "hunter2"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %d %s", resp.StatusCode, body)
	}
	var loginBody struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &loginBody); err != nil || loginBody.Token == "" {
		t.Fatalf("login body: %v %s", err, body)
	}
	token := loginBody.Token

	// 4) Pending list has the submission.
	resp, body = get("/v1/admin/restaurants/pending", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pending: %d", resp.StatusCode)
	}
	var pending []map[string]any
	if err := json.Unmarshal(body, &pending); err != nil || len(pending) != 1 {
		t.Fatalf("pending body: %v %s", err, body)
	}
	id := int64(pending[0]["id"].(float64))

	// 5) Approve; message names the token subject.
	resp, body = post(fmt.Sprintf("/v1/admin/restaurants/%d/review", id), token,
		map[string]any{"action": "approve", "notes": "confirmed on site"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("review: %d %s", resp.StatusCode, body)
	}
	var reviewBody struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &reviewBody)
	if reviewBody.Message != "Restaurant submission has been approved by bob." {
		t.Fatalf("review message: %s", reviewBody.Message)
	}

	// 6) Approved list serves the row; read twice to hit the cache path.
	for i := 0; i < 2; i++ {
		resp, body = get("/v1/restaurants/approved", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("approved read %d: %d", i, resp.StatusCode)
		}
		var approved []map[string]any
		if err := json.Unmarshal(body, &approved); err != nil || len(approved) != 1 {
			t.Fatalf("approved body: %v %s", err, body)
		}
		if approved[0]["name"] != "A" || approved[0]["water_billing_policy"] != "free" {
			t.Fatalf("approved entry: %+v", approved[0])
		}
	}

	// 7) Pending is now empty; a second review conflicts.
	resp, body = get("/v1/admin/restaurants/pending", token)
	pending = nil
	if err := json.Unmarshal(body, &pending); err != nil || len(pending) != 0 {
		t.Fatalf("pending after approve: %v %s", err, body)
	}
	resp, _ = post(fmt.Sprintf("/v1/admin/restaurants/%d/review", id), token, map[string]any{"action": "reject"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("re-review: %d", resp.StatusCode)
	}

	// 8) Full record retains the audit trail.
	resp, body = get(fmt.Sprintf("/v1/restaurants/%d", id), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get by id: %d", resp.StatusCode)
	}
	var full map[string]any
	_ = json.Unmarshal(body, &full)
	if full["submission_status"] != "approved" || full["reviewed_by"] != "bob" || full["notes"] != "confirmed on site" {
		t.Fatalf("full record: %+v", full)
	}
}
