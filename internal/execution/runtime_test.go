package execution

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalRuntime(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		script   string
		wantCode int
		wantOut  string
	}{
		{"success", `echo "$GREETING from $(pwd)"`, 0, "hello from " + dir},
		{"failure", "echo oops >&2; exit 7", 7, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			res, err := LocalRuntime{}.Run(context.Background(), RunSpec{
				Command: []string{"sh", "-c", tt.script},
				WorkDir: dir,
				Env:     []string{"GREETING=hello", "PATH=/usr/bin:/bin"},
				Stdout:  &stdout,
				Stderr:  &stderr,
			})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if res.ExitCode != tt.wantCode {
				t.Errorf("exit code = %d, want %d", res.ExitCode, tt.wantCode)
			}
			if tt.wantOut != "" && strings.TrimSpace(stdout.String()) != tt.wantOut {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantOut)
			}
		})
	}
}

func TestLocalRuntime_Errors(t *testing.T) {
	if _, err := (LocalRuntime{}).Run(context.Background(), RunSpec{}); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("err = %v, want ErrEmptyCommand", err)
	}
	_, err := LocalRuntime{}.Run(context.Background(), RunSpec{Command: []string{"/nonexistent/nextflow"}})
	if err == nil {
		t.Error("expected start error for missing executable")
	}
}
