package scenarios

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenarios found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			if _, err := Run(context.Background(), sc); err != nil {
				t.Fatalf("scenario %s: %v", sc.Name, err)
			}
		})
	}
}

func TestRunRecordsOutcomeMetrics(t *testing.T) {
	sc, err := Load("fifo_order.yaml")
	if err != nil {
		t.Fatal(err)
	}
	res, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	n, err := testutil.GatherAndCount(res.Registry, "jobgate_sink_outcomes_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n == 0 {
		t.Fatalf("no outcome series recorded")
	}
	if len(res.Replies) != 8 {
		t.Fatalf("expected 8 replies, got %d", len(res.Replies))
	}
}

func TestRunReportsMismatch(t *testing.T) {
	sc := &Scenario{
		Name:  "wrong",
		Mode:  "immediate",
		Steps: []Step{{Send: "1;3x3;4", Expect: "Invalid request"}},
	}
	if _, err := Run(context.Background(), sc); err == nil {
		t.Fatal("expected mismatch error")
	}
	accepted := uint64(5)
	sc = &Scenario{Name: "count", Mode: "immediate", Steps: []Step{{Send: "1;3x3;4"}}, Expected: Expected{Replies: []string{"Accepted: ID 1"}, Accepted: &accepted}}
	if _, err := Run(context.Background(), sc); err == nil {
		t.Fatal("expected counter mismatch")
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte(":"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatal("expected unmarshal error")
	}
	unnamed := filepath.Join(dir, "unnamed.yaml")
	if err := os.WriteFile(unnamed, []byte("mode: fifo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(unnamed); err == nil {
		t.Fatal("expected missing name error")
	}
}
