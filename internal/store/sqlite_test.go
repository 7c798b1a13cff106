package store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/me/createtaxdb/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRun(id string, created time.Time) *model.Run {
	return &model.Run{
		ID:        id,
		State:     model.RunStatePending,
		CreatedAt: created.UTC().Truncate(time.Millisecond),
	}
}

func TestRunRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	run := sampleRun("run-1", time.Now())
	if err := st.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	got, err := st.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got == nil || got.State != model.RunStatePending || !got.CreatedAt.Equal(run.CreatedAt) {
		t.Fatalf("GetRun = %+v", got)
	}
	if got.ExitCode != nil || got.CompletedAt != nil || got.Argv != nil {
		t.Errorf("unset fields should stay unset: %+v", got)
	}

	code := 0
	done := run.CreatedAt.Add(time.Minute)
	run.State = model.RunStateSuccess
	run.Volume = "pvc-1"
	run.ExecutionName = "brave-otter"
	run.Argv = []string{"/root/nextflow", "run", "/nf-workdir/main.nf"}
	run.ExitCode = &code
	run.LogLocation = "latch:///your_log_dir/nf_nf_core_createtaxdb/brave-otter/nextflow.log"
	run.CompletedAt = &done
	if err := st.UpdateRun(ctx, run); err != nil {
		t.Fatalf("UpdateRun: %v", err)
	}

	got, err = st.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.State != model.RunStateSuccess || got.Volume != "pvc-1" || got.ExecutionName != "brave-otter" {
		t.Errorf("updated run = %+v", got)
	}
	if !reflect.DeepEqual(got.Argv, run.Argv) {
		t.Errorf("argv = %v", got.Argv)
	}
	if got.ExitCode == nil || *got.ExitCode != 0 {
		t.Errorf("exit code = %v", got.ExitCode)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
		t.Errorf("completed_at = %v", got.CompletedAt)
	}
	if got.LogLocation != run.LogLocation {
		t.Errorf("log_location = %q", got.LogLocation)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	st := testStore(t)
	got, err := st.GetRun(context.Background(), "missing")
	if err != nil || got != nil {
		t.Errorf("GetRun(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestUpdateRun_NotFound(t *testing.T) {
	st := testStore(t)
	if err := st.UpdateRun(context.Background(), sampleRun("ghost", time.Now())); err == nil {
		t.Error("expected error updating a missing run")
	}
}

func TestListRuns(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		run := sampleRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))
		if i%2 == 0 {
			run.State = model.RunStateFailed
		}
		if err := st.CreateRun(ctx, run); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	runs, total, err := st.ListRuns(ctx, model.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if total != 5 || len(runs) != 2 {
		t.Fatalf("total=%d len=%d", total, len(runs))
	}
	if runs[0].ID != "run-4" || runs[1].ID != "run-3" {
		t.Errorf("order = %s, %s; want newest first", runs[0].ID, runs[1].ID)
	}

	runs, total, err = st.ListRuns(ctx, model.ListOptions{Limit: 10, Offset: 4})
	if err != nil || total != 5 || len(runs) != 1 || runs[0].ID != "run-0" {
		t.Errorf("offset page = %v total=%d err=%v", runs, total, err)
	}

	runs, total, err = st.ListRuns(ctx, model.ListOptions{State: model.RunStateFailed})
	if err != nil {
		t.Fatalf("ListRuns(state): %v", err)
	}
	if total != 3 || len(runs) != 3 {
		t.Errorf("failed runs: total=%d len=%d", total, len(runs))
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	st, err := NewSQLiteStore(path, logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	for i := 0; i < 2; i++ {
		if err := st.Migrate(context.Background()); err != nil {
			t.Fatalf("migrate pass %d: %v", i, err)
		}
	}
	if err := st.CreateRun(context.Background(), sampleRun("r", time.Now())); err != nil {
		t.Fatalf("CreateRun after migrate: %v", err)
	}
}
