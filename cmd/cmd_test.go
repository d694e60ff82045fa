package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/jobgate/app"
	"github.com/kilianp07/jobgate/config"
	"github.com/kilianp07/jobgate/core/audit"
)

func startServer(t *testing.T) string {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.ListenAddr = "127.0.0.1:0"
	cfg.Dispatch.TickIntervalMS = 20
	cfg.SetDefaults()
	svc, err := app.New(cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = svc.Close()
	})
	return svc.Addr().String()
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil); textMode = false; submitID = ""; exportFormat = "json" })
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSubmitPrintsAckAndOutcome(t *testing.T) {
	addr := startServer(t)
	out, err := run(t, "submit", "3x3", "4", "--id", "1001", "-s", addr, "--text")
	require.NoError(t, err)
	assert.Equal(t, "Request will be processed with ID: 1001\nAccepted: ID 1001\n", out)

	out, err = run(t, "submit", "9x9", "4", "--id", "2", "-s", addr)
	require.NoError(t, err)
	assert.Equal(t, "Invalid request\n", out)
}

func TestControlCommand(t *testing.T) {
	addr := startServer(t)
	out, err := run(t, "control", "busy", "-s", addr)
	require.NoError(t, err)
	assert.Equal(t, "Server is busy\n", out)

	_, err = run(t, "control", "reboot", "-s", addr)
	assert.Error(t, err)
}

func TestSubmitTimesOutWithoutServer(t *testing.T) {
	_, err := run(t, "submit", "3x3", "4", "-s", "127.0.0.1:9", "--timeout", "100ms")
	assert.Error(t, err)
	timeout = 10 * time.Second
}

func TestServeRejectsBadPort(t *testing.T) {
	_, err := run(t, "serve", "--port", "70000")
	assert.Error(t, err)
	listenPort = 0
}

func TestScenarioCommand(t *testing.T) {
	out, err := run(t, "scenario", "../qa/scenarios/fifo_order.yaml")
	require.NoError(t, err)
	assert.Equal(t, "PASS fifo-order\n", out)
}

func TestAuditExportCSV(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JOBGATE_AUDIT__BACKEND", "jsonl")
	t.Setenv("JOBGATE_AUDIT__PATH", filepath.Join(dir, "audit.jsonl"))
	store, err := audit.NewJSONLStore(filepath.Join(dir, "audit.jsonl"))
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), audit.Record{Timestamp: time.Now(), RequestID: "1001", Configuration: "3x3", Priority: 4, Accepted: true}))

	out, err := run(t, "audit", "export", "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "timestamp,request_id")
	assert.Contains(t, out, ",1001,3x3,4,")

	t.Setenv("JOBGATE_AUDIT__BACKEND", "memory")
	_, err = run(t, "audit", "export")
	assert.Error(t, err)
}
