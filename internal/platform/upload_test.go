package platform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/me/createtaxdb/pkg/model"
)

// fakeDataService serves start-upload, a presigned PUT target and end-upload.
type fakeDataService struct {
	mu        sync.Mutex
	started   startUploadRequest
	ended     endUploadRequest
	body      string
	putAuth   string
	putStatus int
}

func (f *fakeDataService) handler(t *testing.T, srvURL *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.URL.Path {
		case "/ldata/start-upload":
			if got := r.Header.Get("Authorization"); got != "Latch-Execution-Token tok-up" {
				t.Errorf("start Authorization = %q", got)
			}
			json.NewDecoder(r.Body).Decode(&f.started)
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"upload_id": "up-1", "urls": []string{*srvURL + "/presigned/part-1"}},
			})
		case "/presigned/part-1":
			if r.Method != http.MethodPut {
				t.Errorf("presigned method = %s", r.Method)
			}
			f.putAuth = r.Header.Get("Authorization")
			data, _ := io.ReadAll(r.Body)
			f.body = string(data)
			if f.putStatus != 0 {
				w.WriteHeader(f.putStatus)
				return
			}
			w.Header().Set("ETag", `"etag-1"`)
		case "/ldata/end-upload":
			json.NewDecoder(r.Body).Decode(&f.ended)
		default:
			http.NotFound(w, r)
		}
	}
}

func newUploadServer(t *testing.T, f *fakeDataService) *Client {
	t.Helper()
	var url string
	srv := httptest.NewServer(f.handler(t, &url))
	t.Cleanup(srv.Close)
	url = srv.URL

	c := newTestClient(srv.URL)
	c.config.DataURL = srv.URL
	return c
}

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".nextflow.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUpload_LatchLocation(t *testing.T) {
	t.Setenv(testTokenEnv, "tok-up")
	f := &fakeDataService{}
	c := newUploadServer(t, f)

	remote := "latch:///your_log_dir/nf_nf_core_createtaxdb/exec-1/nextflow.log"
	if err := c.Upload(context.Background(), writeLog(t, "N E X T F L O W\n"), remote); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started.Path != remote || f.started.PartCount != 1 {
		t.Errorf("start request = %+v", f.started)
	}
	if f.body != "N E X T F L O W\n" {
		t.Errorf("uploaded body = %q", f.body)
	}
	if f.putAuth != "" {
		t.Errorf("presigned PUT sent Authorization %q", f.putAuth)
	}
	if f.ended.UploadID != "up-1" || len(f.ended.Parts) != 1 || f.ended.Parts[0].ETag != `"etag-1"` {
		t.Errorf("end request = %+v", f.ended)
	}
}

func TestUpload_Failures(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv(testTokenEnv, "")
		c := newUploadServer(t, &fakeDataService{})
		err := c.Upload(context.Background(), writeLog(t, "x"), "latch:///logs/a.log")
		if !errors.Is(err, model.ErrMissingCredential) {
			t.Errorf("err = %v, want ErrMissingCredential", err)
		}
	})

	t.Run("rejected part", func(t *testing.T) {
		t.Setenv(testTokenEnv, "tok-up")
		f := &fakeDataService{putStatus: http.StatusForbidden}
		c := newUploadServer(t, f)
		err := c.Upload(context.Background(), writeLog(t, "x"), "latch:///logs/a.log")
		if !errors.Is(err, ErrUploadRejected) {
			t.Errorf("err = %v, want ErrUploadRejected", err)
		}
		if f.ended.UploadID != "" {
			t.Error("end-upload sent after a failed part")
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		t.Setenv(testTokenEnv, "tok-up")
		c := newUploadServer(t, &fakeDataService{})
		if err := c.Upload(context.Background(), writeLog(t, "x"), "s3://b/k"); !errors.Is(err, ErrUploadRejected) {
			t.Errorf("err = %v, want ErrUploadRejected", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv(testTokenEnv, "tok-up")
		c := newUploadServer(t, &fakeDataService{})
		if err := c.Upload(context.Background(), filepath.Join(t.TempDir(), "nope"), "latch:///logs/a.log"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
