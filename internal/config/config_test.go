package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/me/createtaxdb/internal/stage"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provision.StorageGiB != 100 {
		t.Errorf("storage_gib = %d", cfg.Provision.StorageGiB)
	}
	if cfg.Platform.TokenEnv != "FLYTE_INTERNAL_EXECUTION_ID" {
		t.Errorf("token_env = %q", cfg.Platform.TokenEnv)
	}
	if cfg.Platform.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Platform.Timeout)
	}
	if cfg.Runner.Executable != "/root/nextflow" || !cfg.Runner.DisableCheckLatest {
		t.Errorf("runner = %+v", cfg.Runner)
	}
	if cfg.Stage.Source != "/root" || cfg.Stage.Dest != "/nf-workdir" {
		t.Errorf("stage = %+v", cfg.Stage)
	}
	if !reflect.DeepEqual(cfg.Stage.Exclude, stage.DefaultExclude) {
		t.Errorf("exclude = %v", cfg.Stage.Exclude)
	}
	if cfg.Logs.Base != "latch:///your_log_dir" || cfg.Logs.PipelineID != "nf_nf_core_createtaxdb" {
		t.Errorf("logs = %+v", cfg.Logs)
	}
	if cfg.Platform.DataURL != "https://nucleus.latch.bio" {
		t.Errorf("data_url = %q, want a latch:// upload backend by default", cfg.Platform.DataURL)
	}
}

func TestLoad_ExcludeFromEnv(t *testing.T) {
	tests := []struct {
		env  string
		want []string
	}{
		{"work,results", []string{"work", "results"}},
		{"work results  .nextflow", []string{"work", "results", ".nextflow"}},
		{" work, results ,", []string{"work", "results"}},
	}
	for _, tt := range tests {
		t.Setenv("CREATETAXDB_STAGE_EXCLUDE", tt.env)
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !reflect.DeepEqual(cfg.Stage.Exclude, tt.want) {
			t.Errorf("exclude from %q = %q, want %q", tt.env, cfg.Stage.Exclude, tt.want)
		}
	}
}

func TestValidate_LogBase(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default latch via platform", func(*Config) {}, ""},
		{"file", func(c *Config) { c.Logs.Base = "file:///var/log/createtaxdb" }, ""},
		{"s3", func(c *Config) { c.Logs.Base = "s3://team-logs" }, ""},
		{"latch via object store", func(c *Config) {
			c.Platform.DataURL = ""
			c.Logs.ObjectStore.Endpoint = "minio:9000"
			c.Logs.ObjectStore.Bucket = "latch"
		}, ""},
		{"latch without backend", func(c *Config) { c.Platform.DataURL = "" }, "platform.data_url"},
		{"unknown scheme", func(c *Config) { c.Logs.Base = "gs://bucket" }, "unsupported scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "createtaxdb.yaml")
	content := `
provision:
  storage_gib: 250
runner:
  profile: singularity
logs:
  base: s3://team-logs
  object_store:
    endpoint: minio:9000
    bucket: latch
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CREATETAXDB_RUNNER_PROFILE", "docker")
	t.Setenv("CREATETAXDB_PLATFORM_TIMEOUT", "5s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provision.StorageGiB != 250 {
		t.Errorf("storage_gib = %d, want file value", cfg.Provision.StorageGiB)
	}
	if cfg.Runner.Profile != "docker" {
		t.Errorf("profile = %q, want env override", cfg.Runner.Profile)
	}
	if cfg.Platform.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Platform.Timeout)
	}
	if cfg.Logs.Base != "s3://team-logs" || cfg.Logs.ObjectStore.Bucket != "latch" {
		t.Errorf("logs = %+v", cfg.Logs)
	}
	if cfg.Runner.Entry != "main.nf" {
		t.Errorf("entry = %q, want default kept", cfg.Runner.Entry)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("provision:\n  storage_gib: 0\n"), 0o644)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "storage_gib") {
		t.Errorf("err = %v, want storage_gib validation error", err)
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()
	if got := cfg.RunnerInvocation(); got.Executable != cfg.Runner.Executable || got.Opts != cfg.Runner.Opts {
		t.Errorf("RunnerInvocation = %+v", got)
	}
	if got := cfg.PlatformClient(); got.DispatcherURL != cfg.Platform.DispatcherURL || got.DataURL != cfg.Platform.DataURL {
		t.Errorf("PlatformClient = %+v", got)
	}
	l := cfg.Launcher()
	if l.WorkDir != "/nf-workdir" || l.Logs.LocalFile != ".nextflow.log" || l.Logs.RemoteName != "nextflow.log" {
		t.Errorf("Launcher = %+v", l)
	}
}
