package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(true, false, 9000, "127.0.0.1", "/tmp/conf", "1.2.3")

	assert.True(t, cfg.Stdio)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "/tmp/conf", cfg.ConfigPath)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Nil(t, cfg.Settings)
}

func TestNewApplication_Layering(t *testing.T) {
	dir := writeConfig(t, `
server:
  host: 10.0.0.1
  port: 9100
simctl:
  xcrunPath: /opt/xcrun
logLevel: warn
`)

	tests := []struct {
		name     string
		flagPort int
		flagHost string
		environ  map[string]string
		wantPort int
		wantHost string
	}{
		{
			name:     "file values",
			environ:  map[string]string{},
			wantPort: 9100,
			wantHost: "10.0.0.1",
		},
		{
			name:     "environment beats file",
			environ:  map[string]string{"PORT": "9200", "SIMCTL_MCP_HOST": "10.0.0.2"},
			wantPort: 9200,
			wantHost: "10.0.0.2",
		},
		{
			name:     "flags beat environment",
			flagPort: 9300,
			flagHost: "10.0.0.3",
			environ:  map[string]string{"PORT": "9200", "SIMCTL_MCP_HOST": "10.0.0.2"},
			wantPort: 9300,
			wantHost: "10.0.0.3",
		},
		{
			name:     "invalid PORT falls back to file",
			environ:  map[string]string{"PORT": "abc"},
			wantPort: 9100,
			wantHost: "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(false, false, tt.flagPort, tt.flagHost, dir, "test")
			cfg.Environ = tt.environ

			application, err := NewApplication(cfg)
			require.NoError(t, err)

			settings := application.Settings()
			assert.Equal(t, tt.wantPort, settings.Server.Port)
			assert.Equal(t, tt.wantHost, settings.Server.Host)
			assert.Equal(t, "/opt/xcrun", settings.Simctl.XcrunPath)
			assert.Equal(t, "warn", settings.LogLevel)
		})
	}
}

func TestNewApplication_MissingConfigDir(t *testing.T) {
	cfg := NewConfig(false, false, 0, "", filepath.Join(t.TempDir(), "missing"), "test")
	cfg.Environ = map[string]string{}

	_, err := NewApplication(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration from path")
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	dir := writeConfig(t, "server: [not, a, map")
	cfg := NewConfig(false, false, 0, "", dir, "test")
	cfg.Environ = map[string]string{}

	_, err := NewApplication(cfg)
	assert.Error(t, err)
}

func TestInitializeServices(t *testing.T) {
	dir := writeConfig(t, "")
	cfg := NewConfig(true, true, 0, "", dir, "test")
	cfg.Environ = map[string]string{}

	application, err := NewApplication(cfg)
	require.NoError(t, err)

	require.NotNil(t, application.services.Simctl)
	require.NotNil(t, application.services.Server)
	assert.Equal(t, 27, application.services.Server.Dispatcher().Catalog().Len())
}

func TestRun_StdioMode(t *testing.T) {
	dir := writeConfig(t, "")
	cfg := NewConfig(true, false, 0, "", dir, "1.0.0")
	cfg.Environ = map[string]string{}
	cfg.In = strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")
	var out bytes.Buffer
	cfg.Out = &out

	application, err := NewApplication(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, application.Run(ctx))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	byID := map[float64]map[string]any{}
	for _, line := range lines {
		var msg map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &msg))
		byID[msg["id"].(float64)] = msg
	}

	initResult := byID[1]["result"].(map[string]any)
	serverInfo := initResult["serverInfo"].(map[string]any)
	assert.Equal(t, "simctl-mcp-server", serverInfo["name"])
	assert.Equal(t, "1.0.0", serverInfo["version"])

	listResult := byID[2]["result"].(map[string]any)
	assert.Len(t, listResult["tools"], 27)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRun_HTTPMode(t *testing.T) {
	port := freePort(t)
	dir := writeConfig(t, "")
	cfg := NewConfig(false, false, port, "127.0.0.1", dir, "test")
	cfg.Environ = map[string]string{}

	application, err := NewApplication(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/sse", port)
	var resp *http.Response
	require.Eventually(t, func() bool {
		r, err := http.Get(url)
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("HTTP mode did not stop after cancellation")
	}
	resp.Body.Close()
}

func TestRun_HTTPModePortInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	dir := writeConfig(t, "")
	cfg := NewConfig(false, false, l.Addr().(*net.TCPAddr).Port, "127.0.0.1", dir, "test")
	cfg.Environ = map[string]string{}

	application, err := NewApplication(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = application.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server failed")
}
