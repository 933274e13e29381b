package simctl

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	args  []string
	stdin string
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []recordedCall
	result Result
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, stdin io.Reader, args ...string) (Result, error) {
	call := recordedCall{args: args}
	if stdin != nil {
		b, _ := io.ReadAll(stdin)
		call.stdin = string(b)
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	return f.result, f.err
}

func (f *fakeRunner) lastArgs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1].args
}

func TestExecClient_CommandLines(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(c *ExecClient) error
		want []string
	}{
		{"delete", func(c *ExecClient) error { return c.DeleteDevice(ctx, "U1") }, []string{"delete", "U1"}},
		{"boot", func(c *ExecClient) error { return c.BootDevice(ctx, "U1") }, []string{"boot", "U1"}},
		{"shutdown", func(c *ExecClient) error { return c.ShutdownDevice(ctx, "U1") }, []string{"shutdown", "U1"}},
		{"openurl", func(c *ExecClient) error { return c.OpenURL(ctx, "U1", "https://example.com") }, []string{"openurl", "U1", "https://example.com"}},
		{"addmedia", func(c *ExecClient) error { return c.AddMedia(ctx, "U1", "/tmp/a.png") }, []string{"addmedia", "U1", "/tmp/a.png"}},
		{"install", func(c *ExecClient) error { return c.InstallApp(ctx, "U1", "/tmp/App.app") }, []string{"install", "U1", "/tmp/App.app"}},
		{"uninstall", func(c *ExecClient) error { return c.UninstallApp(ctx, "U1", "com.x") }, []string{"uninstall", "U1", "com.x"}},
		{"launch", func(c *ExecClient) error { return c.LaunchApp(ctx, "U1", "com.x") }, []string{"launch", "U1", "com.x"}},
		{"terminate", func(c *ExecClient) error { return c.TerminateApp(ctx, "U1", "com.x") }, []string{"terminate", "U1", "com.x"}},
		{"set appearance", func(c *ExecClient) error { return c.SetAppearance(ctx, "U1", "dark") }, []string{"ui", "U1", "appearance", "dark"}},
		{"grant", func(c *ExecClient) error { return c.GrantPermission(ctx, "U1", "com.x", "photos") }, []string{"privacy", "U1", "grant", "photos", "com.x"}},
		{"revoke", func(c *ExecClient) error { return c.RevokePermission(ctx, "U1", "com.x", "photos") }, []string{"privacy", "U1", "revoke", "photos", "com.x"}},
		{"reset", func(c *ExecClient) error { return c.ResetPermission(ctx, "U1", "com.x", "all") }, []string{"privacy", "U1", "reset", "all", "com.x"}},
		{"root cert", func(c *ExecClient) error { return c.AddRootCertificate(ctx, "U1", "/tmp/ca.pem") }, []string{"keychain", "U1", "add-root-cert", "/tmp/ca.pem"}},
		{"cert", func(c *ExecClient) error { return c.AddCertificate(ctx, "U1", "/tmp/c.pem") }, []string{"keychain", "U1", "add-cert", "/tmp/c.pem"}},
		{"reset keychain", func(c *ExecClient) error { return c.ResetKeychain(ctx, "U1") }, []string{"keychain", "U1", "reset"}},
		{"screenshot", func(c *ExecClient) error { _, err := c.Screenshot(ctx, "U1", "/tmp/s.png"); return err }, []string{"io", "U1", "screenshot", "/tmp/s.png"}},
		{"listapps", func(c *ExecClient) error { _, err := c.ListApps(ctx, "U1"); return err }, []string{"listapps", "U1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			require.NoError(t, tt.call(NewExecClient(runner)))
			assert.Equal(t, tt.want, runner.lastArgs())
		})
	}
}

func TestExecClient_OutputIsTrimmed(t *testing.T) {
	runner := &fakeRunner{result: Result{Stdout: "  dark\n"}}
	c := NewExecClient(runner)

	got, err := c.GetAppearance(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, "dark", got)
	assert.Equal(t, []string{"ui", "U1", "appearance"}, runner.lastArgs())

	runner.result = Result{Stdout: "/Users/me\n"}
	got, err = c.GetEnv(context.Background(), "U1", "HOME")
	require.NoError(t, err)
	assert.Equal(t, "/Users/me", got)
	assert.Equal(t, []string{"getenv", "U1", "HOME"}, runner.lastArgs())
}

func TestExecClient_CreateDevice(t *testing.T) {
	runner := &fakeRunner{result: Result{Stdout: "ABCD-1234\n"}}
	c := NewExecClient(runner)

	udid, err := c.CreateDevice(context.Background(), "My Phone", "com.apple.CoreSimulator.SimRuntime.iOS-17-0", "iPhone 15")
	require.NoError(t, err)
	assert.Equal(t, "ABCD-1234", udid)
	assert.Equal(t, []string{"create", "My Phone", "iPhone 15", "com.apple.CoreSimulator.SimRuntime.iOS-17-0"}, runner.lastArgs())

	runner.result = Result{}
	_, err = c.CreateDevice(context.Background(), "x", "y", "z")
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestExecClient_ListDevices(t *testing.T) {
	runner := &fakeRunner{result: Result{Stdout: `{"devices":{"com.apple.CoreSimulator.SimRuntime.iOS-17-0":[{"udid":"U1","name":"iPhone 15","state":"Booted","isAvailable":true}]}}`}}
	c := NewExecClient(runner)

	devices, err := c.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"list", "devices", "-j"}, runner.lastArgs())
	require.Len(t, devices["com.apple.CoreSimulator.SimRuntime.iOS-17-0"], 1)
	d := devices["com.apple.CoreSimulator.SimRuntime.iOS-17-0"][0]
	assert.Equal(t, "U1", d.UDID)
	assert.Equal(t, "Booted", d.State)
	assert.True(t, d.IsAvailable)
}

func TestExecClient_ListDeviceTypesAndRuntimes(t *testing.T) {
	runner := &fakeRunner{result: Result{Stdout: `{"devicetypes":[{"name":"iPhone 15","identifier":"com.apple.CoreSimulator.SimDeviceType.iPhone-15","productFamily":"iPhone"}]}`}}
	c := NewExecClient(runner)

	types, err := c.ListDeviceTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "iPhone", types[0].ProductFamily)

	runner.result = Result{Stdout: `{"runtimes":[{"name":"iOS 17.0","identifier":"com.apple.CoreSimulator.SimRuntime.iOS-17-0","version":"17.0","isAvailable":true}]}`}
	runtimes, err := c.ListRuntimes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"list", "runtimes", "-j"}, runner.lastArgs())
	require.Len(t, runtimes, 1)
	assert.Equal(t, "17.0", runtimes[0].Version)
}

func TestExecClient_ListRejectsGarbage(t *testing.T) {
	c := NewExecClient(&fakeRunner{result: Result{Stdout: "not json"}})
	_, err := c.ListDevices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "devices")
}

func TestExecClient_PushNotification(t *testing.T) {
	runner := &fakeRunner{}
	c := NewExecClient(runner)

	payload := json.RawMessage(`{"aps":{"alert":"hi"}}`)
	require.NoError(t, c.PushNotification(context.Background(), "U1", "com.x", payload))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"push", "U1", "com.x", "-"}, runner.calls[0].args)
	assert.Equal(t, string(payload), runner.calls[0].stdin)

	err := c.PushNotification(context.Background(), "U1", "com.x", json.RawMessage(`{broken`))
	require.Error(t, err)
	assert.Len(t, runner.calls, 1, "invalid payload must not reach simctl")
}

func TestExecClient_PropagatesRunnerError(t *testing.T) {
	boom := errors.New("boom")
	c := NewExecClient(&fakeRunner{err: boom})
	assert.ErrorIs(t, c.BootDevice(context.Background(), "U1"), boom)
	_, err := c.GetAppContainer(context.Background(), "U1", "com.x")
	assert.ErrorIs(t, err, boom)
}

func TestResult_Text(t *testing.T) {
	assert.Equal(t, "out", Result{Stdout: "out", Stderr: "err"}.Text())
	assert.Equal(t, "err", Result{Stderr: "err"}.Text())
	assert.Equal(t, "", Result{}.Text())
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "xcrun")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExecRunner_Success(t *testing.T) {
	script := writeScript(t, `echo "$@"; cat`)
	r := NewExecRunner(script)

	res, err := r.Run(context.Background(), nil, "list", "devices")
	require.NoError(t, err)
	assert.Equal(t, "simctl list devices\n", res.Stdout)
}

func TestExecRunner_ForwardsStdin(t *testing.T) {
	script := writeScript(t, `cat`)
	r := NewExecRunner(script)

	res, err := r.Run(context.Background(), strings.NewReader(`{"aps":{}}`), "push")
	require.NoError(t, err)
	assert.Equal(t, `{"aps":{}}`, res.Stdout)
}

func TestExecRunner_Failure(t *testing.T) {
	script := writeScript(t, `echo "Invalid device: $3" >&2; exit 1`)
	r := NewExecRunner(script)

	res, err := r.Run(context.Background(), nil, "boot", "XYZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, err.Error(), "simctl boot: Invalid device: XYZ")
	assert.Contains(t, res.Stderr, "Invalid device")
}

func TestNewExecRunner_DefaultsToXcrun(t *testing.T) {
	assert.Equal(t, DefaultXcrunPath, NewExecRunner("").xcrunPath)
}
