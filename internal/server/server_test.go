package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/me/createtaxdb/internal/cmdline"
	"github.com/me/createtaxdb/internal/schema"
	"github.com/me/createtaxdb/internal/store"
	"github.com/me/createtaxdb/pkg/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	params := schema.CreateTaxDB()
	return New(params, schema.NewDocument(params, schema.DefaultTasks), testLogger(), opts...)
}

func testStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Timestamp  string            `json:"timestamp"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

func do(t *testing.T, srv *Server, method, path, body string, wantStatus int) envelope {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != wantStatus {
		t.Fatalf("%s %s: status=%d, want %d, body=%s", method, path, w.Code, wantStatus, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid JSON: %v", method, path, err)
	}
	return env
}

func TestDiscovery(t *testing.T) {
	env := do(t, testServer(t), "GET", "/api/v1/", "", http.StatusOK)
	var data discoveryResponse
	json.Unmarshal(env.Data, &data)
	if data.Name != "createtaxdb API" || len(data.Endpoints) != 5 {
		t.Errorf("discovery = %+v", data)
	}
}

func TestHealth(t *testing.T) {
	env := do(t, testServer(t), "GET", "/api/v1/health", "", http.StatusOK)
	var data healthResponse
	json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" || data.Version != Version || data.Store != "disabled" {
		t.Errorf("health = %+v", data)
	}
	if data.Pipeline != "nf-core/createtaxdb" {
		t.Errorf("pipeline = %q", data.Pipeline)
	}
}

func TestSchema_JSON(t *testing.T) {
	env := do(t, testServer(t), "GET", "/api/v1/schema", "", http.StatusOK)
	var doc schema.Document
	if err := json.Unmarshal(env.Data, &doc); err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, sec := range doc.Sections {
		n += len(sec.Params)
	}
	if n != 22 {
		t.Errorf("params = %d, want 22", n)
	}
	if len(doc.Tasks) != 2 {
		t.Errorf("tasks = %v", doc.Tasks)
	}
}

func TestSchema_YAML(t *testing.T) {
	w := httptest.NewRecorder()
	testServer(t).ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/schema?format=yaml", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "name: nf-core/createtaxdb") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestSchema_BadFormat(t *testing.T) {
	env := do(t, testServer(t), "GET", "/api/v1/schema?format=toml", "", http.StatusBadRequest)
	if env.Error == nil || env.Error.Code != model.ErrValidation {
		t.Errorf("error = %+v", env.Error)
	}
}

type fakePlanner struct{}

func (fakePlanner) Plan(volume string, values model.Values) (*cmdline.Invocation, error) {
	b := cmdline.NewBuilder(schema.CreateTaxDB(), cmdline.DefaultRunnerConfig())
	return b.Build("/nf-workdir", volume, values)
}

func TestCommand(t *testing.T) {
	srv := testServer(t, WithPlanner(fakePlanner{}))
	body := `{"volume":"pvc-1","params":{"input":"latch:///s.csv","outdir":"latch:///out","dbname":"mydb","build_kraken2":true,"email":null}}`
	env := do(t, srv, "POST", "/api/v1/command", body, http.StatusOK)

	var data commandResponse
	json.Unmarshal(env.Data, &data)
	if !strings.HasSuffix(data.Command, "--input latch:///s.csv --outdir latch:///out --dbname mydb --malt_sequencetype DNA --build_kraken2") {
		t.Errorf("command = %q", data.Command)
	}
	if !strings.Contains(strings.Join(data.Env, " "), "K8S_STORAGE_CLAIM_NAME=pvc-1") {
		t.Errorf("env = %v", data.Env)
	}
	if data.WorkDir != "/nf-workdir" {
		t.Errorf("work_dir = %q", data.WorkDir)
	}
}

func TestCommand_Errors(t *testing.T) {
	srv := testServer(t, WithPlanner(fakePlanner{}))
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{"},
		{"missing volume", `{"params":{}}`},
		{"unknown param", `{"volume":"v","params":{"nope":1}}`},
		{"missing required", `{"volume":"v","params":{"input":"a"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := do(t, srv, "POST", "/api/v1/command", tt.body, http.StatusBadRequest)
			if env.Status != "error" || env.Error == nil {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
	do(t, testServer(t), "POST", "/api/v1/command", `{"volume":"v"}`, http.StatusServiceUnavailable)
}

func TestRuns(t *testing.T) {
	st := testStore(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &model.Run{ID: fmt.Sprintf("run-%d", i), State: model.RunStateSuccess, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := st.CreateRun(context.Background(), run); err != nil {
			t.Fatal(err)
		}
	}
	srv := testServer(t, WithStore(st))

	env := do(t, srv, "GET", "/api/v1/runs?limit=2", "", http.StatusOK)
	var runs []model.Run
	json.Unmarshal(env.Data, &runs)
	if len(runs) != 2 || runs[0].ID != "run-2" {
		t.Errorf("runs = %+v", runs)
	}
	if env.Pagination == nil || env.Pagination.Total != 3 || !env.Pagination.HasMore {
		t.Errorf("pagination = %+v", env.Pagination)
	}

	env = do(t, srv, "GET", "/api/v1/runs/run-1", "", http.StatusOK)
	var run model.Run
	json.Unmarshal(env.Data, &run)
	if run.ID != "run-1" || run.State != model.RunStateSuccess {
		t.Errorf("run = %+v", run)
	}

	env = do(t, srv, "GET", "/api/v1/runs/missing", "", http.StatusNotFound)
	if env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v", env.Error)
	}

	do(t, srv, "GET", "/api/v1/runs?limit=abc", "", http.StatusBadRequest)
}

func TestRuns_EmptyList(t *testing.T) {
	env := do(t, testServer(t, WithStore(testStore(t))), "GET", "/api/v1/runs", "", http.StatusOK)
	if string(env.Data) != "[]" {
		t.Errorf("data = %s, want []", env.Data)
	}
}

func TestRuns_NoStore(t *testing.T) {
	do(t, testServer(t), "GET", "/api/v1/runs", "", http.StatusServiceUnavailable)
}

type failingStore struct{ store.Store }

func (failingStore) ListRuns(context.Context, model.ListOptions) ([]*model.Run, int, error) {
	return nil, 0, errors.New("disk on fire")
}

func TestRuns_StoreError(t *testing.T) {
	env := do(t, testServer(t, WithStore(failingStore{})), "GET", "/api/v1/runs", "", http.StatusInternalServerError)
	if env.Error == nil || !strings.Contains(env.Error.Message, "disk on fire") {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestRequestID(t *testing.T) {
	srv := testServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/health", nil))
	if got := w.Header().Get("X-Request-ID"); !strings.HasPrefix(got, "req_") {
		t.Errorf("generated X-Request-ID = %q", got)
	}

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "upstream-42")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	if env.RequestID != "upstream-42" || w.Header().Get("X-Request-ID") != "upstream-42" {
		t.Errorf("request id = %q / %q", env.RequestID, w.Header().Get("X-Request-ID"))
	}
}
