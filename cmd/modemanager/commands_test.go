package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/server"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const policyFile = "../../internal/domain/policy/testdata/defaultmode.xml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPolicyCheck(t *testing.T) {
	out, err := execute(t, "policy", "check", policyFile)
	require.NoError(t, err)

	assert.Contains(t, out, "MODE")
	assert.Contains(t, out, "videobg")
	assert.Contains(t, out, "7 records OK")
}

func TestPolicyCheckQuiet(t *testing.T) {
	out, err := execute(t, "policy", "check", "-q", policyFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "SHA256 Fingerprint: "))
	assert.Equal(t, "7 records OK", lines[1])
}

func TestPolicyCheckReportsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policies:\n  - {name: radio, app: 2, audio: 2}\n  - {name: radio, app: 2, audio: 5}\n"), 0o600))

	out, err := execute(t, "policy", "check", "-q", path)
	require.NoError(t, err)
	assert.Contains(t, out, "warning: duplicate record radio@2")
}

func TestPolicyCheckFails(t *testing.T) {
	_, err := execute(t, "policy", "check", filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestServeOptionsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	opts := &serveOptions{
		configFile: "/etc/mode.yaml",
		debug:      true,
		httpPort:   "9000",
		grpcAddr:   "0.0.0.0:9001",
		noGRPC:     true,
	}
	opts.apply(cfg)

	assert.Equal(t, "/etc/mode.yaml", cfg.Policy.File)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:9001", cfg.GRPC.Address)
	assert.False(t, cfg.GRPC.Enabled)
}

func TestServeOptionsKeepUnsetValues(t *testing.T) {
	cfg := config.Default()
	(&serveOptions{}).apply(cfg)
	assert.Equal(t, config.Default(), cfg)
}

func TestParseApp(t *testing.T) {
	app, err := parseApp("-1")
	require.NoError(t, err)
	assert.Equal(t, int32(-1), app)

	_, err = parseApp("radio")
	assert.Error(t, err)
}

func TestPrintNotification(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var out bytes.Buffer

	printNotification(&out, &types.Notification{Signal: types.SignalReleaseResource, Resources: types.ResourceAudio, App: 2, Timestamp: ts})
	printNotification(&out, &types.Notification{Signal: types.SignalChangedMode, Mode: "radio", App: 2, Timestamp: ts})
	printNotification(&out, &types.Notification{Signal: types.SignalSuspendMode, Timestamp: ts})

	assert.Equal(t, strings.Join([]string{
		"2024-01-02T03:04:05Z release_resource resources=audio app=2",
		"2024-01-02T03:04:05Z changed_mode mode=radio app=2",
		"2024-01-02T03:04:05Z suspend_mode",
	}, "\n")+"\n", out.String())
}

func TestCtlAgainstDaemon(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Port = "0"
	cfg.GRPC.Address = "127.0.0.1:0"
	cfg.Policy.File = policyFile

	srv, err := server.NewServer(cfg, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	addr := srv.GRPCAddr()

	out, err := execute(t, "ctl", "--addr", addr, "change-mode", "radio", "2", "--wait")
	require.NoError(t, err)
	assert.Equal(t, "admitted\n", out)

	out, err = execute(t, "ctl", "--addr", addr, "change-mode", "nothing", "2")
	require.NoError(t, err)
	assert.Equal(t, "rejected\n", out)

	out, err = execute(t, "ctl", "--addr", addr, "state")
	require.NoError(t, err)
	assert.Contains(t, out, `"mode": "radio"`)

	out, err = execute(t, "ctl", "--addr", addr, "end-mode", "video", "3")
	require.NoError(t, err)
	assert.Equal(t, "not held\n", out)

	_, err = execute(t, "ctl", "--addr", addr, "release-done", "speaker", "2")
	assert.Error(t, err)

	_, err = execute(t, "ctl", "--addr", addr, "suspend")
	require.NoError(t, err)
}
