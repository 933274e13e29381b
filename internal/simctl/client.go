package simctl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Device is one simulator as reported by `simctl list devices -j`.
type Device struct {
	UDID                 string `json:"udid"`
	Name                 string `json:"name"`
	State                string `json:"state"`
	IsAvailable          bool   `json:"isAvailable"`
	DeviceTypeIdentifier string `json:"deviceTypeIdentifier,omitempty"`
	DataPath             string `json:"dataPath,omitempty"`
	LogPath              string `json:"logPath,omitempty"`
}

// DeviceType is a hardware model the simulator can emulate.
type DeviceType struct {
	Name          string `json:"name"`
	Identifier    string `json:"identifier"`
	ProductFamily string `json:"productFamily,omitempty"`
	BundlePath    string `json:"bundlePath,omitempty"`
}

// Runtime is an installed simulator OS runtime.
type Runtime struct {
	Name         string `json:"name"`
	Identifier   string `json:"identifier"`
	Version      string `json:"version"`
	BuildVersion string `json:"buildversion,omitempty"`
	Platform     string `json:"platform,omitempty"`
	IsAvailable  bool   `json:"isAvailable"`
}

// Client is the device-control surface used by the tool handlers.
type Client interface {
	CreateDevice(ctx context.Context, name, runtime, deviceType string) (string, error)
	DeleteDevice(ctx context.Context, udid string) error
	BootDevice(ctx context.Context, udid string) error
	ShutdownDevice(ctx context.Context, udid string) error
	GetEnv(ctx context.Context, udid, key string) (string, error)
	OpenURL(ctx context.Context, udid, url string) error
	AddMedia(ctx context.Context, udid, path string) error

	InstallApp(ctx context.Context, udid, path string) error
	UninstallApp(ctx context.Context, udid, bundleID string) error
	GetAppContainer(ctx context.Context, udid, bundleID string) (string, error)
	LaunchApp(ctx context.Context, udid, bundleID string) error
	TerminateApp(ctx context.Context, udid, bundleID string) error
	AppInfo(ctx context.Context, udid, bundleID string) (string, error)
	ListApps(ctx context.Context, udid string) (Result, error)

	ListDevices(ctx context.Context) (map[string][]Device, error)
	ListDeviceTypes(ctx context.Context) ([]DeviceType, error)
	ListRuntimes(ctx context.Context) ([]Runtime, error)

	GetAppearance(ctx context.Context, udid string) (string, error)
	SetAppearance(ctx context.Context, udid, appearance string) error

	PushNotification(ctx context.Context, udid, bundleID string, payload json.RawMessage) error
	GrantPermission(ctx context.Context, udid, bundleID, permission string) error
	RevokePermission(ctx context.Context, udid, bundleID, permission string) error
	ResetPermission(ctx context.Context, udid, bundleID, permission string) error

	AddRootCertificate(ctx context.Context, udid, path string) error
	AddCertificate(ctx context.Context, udid, path string) error
	ResetKeychain(ctx context.Context, udid string) error

	Screenshot(ctx context.Context, udid, path string) (Result, error)
}

// ExecClient implements Client by shelling out through a Runner.
type ExecClient struct {
	runner Runner
}

var _ Client = (*ExecClient)(nil)

// NewExecClient creates a client over runner.
func NewExecClient(runner Runner) *ExecClient {
	return &ExecClient{runner: runner}
}

func (c *ExecClient) run(ctx context.Context, args ...string) (Result, error) {
	return c.runner.Run(ctx, nil, args...)
}

func (c *ExecClient) exec(ctx context.Context, args ...string) error {
	_, err := c.run(ctx, args...)
	return err
}

func (c *ExecClient) output(ctx context.Context, args ...string) (string, error) {
	res, err := c.run(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// CreateDevice creates a simulator and returns its UDID.
func (c *ExecClient) CreateDevice(ctx context.Context, name, runtime, deviceType string) (string, error) {
	udid, err := c.output(ctx, "create", name, deviceType, runtime)
	if err != nil {
		return "", err
	}
	if udid == "" {
		return "", fmt.Errorf("%w: simctl create: no device identifier returned", ErrCommandFailed)
	}
	return udid, nil
}

// DeleteDevice removes a simulator and its data.
func (c *ExecClient) DeleteDevice(ctx context.Context, udid string) error {
	return c.exec(ctx, "delete", udid)
}

// BootDevice starts a simulator.
func (c *ExecClient) BootDevice(ctx context.Context, udid string) error {
	return c.exec(ctx, "boot", udid)
}

// ShutdownDevice stops a running simulator.
func (c *ExecClient) ShutdownDevice(ctx context.Context, udid string) error {
	return c.exec(ctx, "shutdown", udid)
}

// GetEnv returns an environment variable of a booted simulator.
func (c *ExecClient) GetEnv(ctx context.Context, udid, key string) (string, error) {
	return c.output(ctx, "getenv", udid, key)
}

// OpenURL opens url on the simulator.
func (c *ExecClient) OpenURL(ctx context.Context, udid, url string) error {
	return c.exec(ctx, "openurl", udid, url)
}

// AddMedia imports a photo or video into the simulator library.
func (c *ExecClient) AddMedia(ctx context.Context, udid, path string) error {
	return c.exec(ctx, "addmedia", udid, path)
}

// InstallApp installs the .app bundle at path.
func (c *ExecClient) InstallApp(ctx context.Context, udid, path string) error {
	return c.exec(ctx, "install", udid, path)
}

// UninstallApp removes an installed app.
func (c *ExecClient) UninstallApp(ctx context.Context, udid, bundleID string) error {
	return c.exec(ctx, "uninstall", udid, bundleID)
}

// GetAppContainer returns the path of the app container.
func (c *ExecClient) GetAppContainer(ctx context.Context, udid, bundleID string) (string, error) {
	return c.output(ctx, "get_app_container", udid, bundleID)
}

// LaunchApp starts an installed app.
func (c *ExecClient) LaunchApp(ctx context.Context, udid, bundleID string) error {
	return c.exec(ctx, "launch", udid, bundleID)
}

// TerminateApp stops a running app.
func (c *ExecClient) TerminateApp(ctx context.Context, udid, bundleID string) error {
	return c.exec(ctx, "terminate", udid, bundleID)
}

// AppInfo returns simctl's description of an installed app. The output is
// an old-style property list and is passed through unparsed.
func (c *ExecClient) AppInfo(ctx context.Context, udid, bundleID string) (string, error) {
	return c.output(ctx, "appinfo", udid, bundleID)
}

// ListApps returns simctl's raw listing of installed apps.
func (c *ExecClient) ListApps(ctx context.Context, udid string) (Result, error) {
	return c.run(ctx, "listapps", udid)
}

// ListDevices returns all devices grouped by runtime identifier.
func (c *ExecClient) ListDevices(ctx context.Context) (map[string][]Device, error) {
	var out struct {
		Devices map[string][]Device `json:"devices"`
	}
	if err := c.listJSON(ctx, "devices", &out); err != nil {
		return nil, err
	}
	if out.Devices == nil {
		out.Devices = map[string][]Device{}
	}
	return out.Devices, nil
}

// ListDeviceTypes returns the device types simctl can create.
func (c *ExecClient) ListDeviceTypes(ctx context.Context) ([]DeviceType, error) {
	var out struct {
		DeviceTypes []DeviceType `json:"devicetypes"`
	}
	if err := c.listJSON(ctx, "devicetypes", &out); err != nil {
		return nil, err
	}
	return out.DeviceTypes, nil
}

// ListRuntimes returns the installed simulator runtimes.
func (c *ExecClient) ListRuntimes(ctx context.Context) ([]Runtime, error) {
	var out struct {
		Runtimes []Runtime `json:"runtimes"`
	}
	if err := c.listJSON(ctx, "runtimes", &out); err != nil {
		return nil, err
	}
	return out.Runtimes, nil
}

func (c *ExecClient) listJSON(ctx context.Context, kind string, v any) error {
	res, err := c.run(ctx, "list", kind, "-j")
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(res.Stdout), v); err != nil {
		return fmt.Errorf("failed to parse simctl %s listing: %w", kind, err)
	}
	return nil
}

// GetAppearance returns "light" or "dark".
func (c *ExecClient) GetAppearance(ctx context.Context, udid string) (string, error) {
	return c.output(ctx, "ui", udid, "appearance")
}

// SetAppearance switches the simulator to light or dark mode.
func (c *ExecClient) SetAppearance(ctx context.Context, udid, appearance string) error {
	return c.exec(ctx, "ui", udid, "appearance", appearance)
}

// PushNotification delivers payload to bundleID. The payload is streamed on
// stdin ("-" argument) so no temporary file is needed.
func (c *ExecClient) PushNotification(ctx context.Context, udid, bundleID string, payload json.RawMessage) error {
	if !json.Valid(payload) {
		return fmt.Errorf("payload is not valid JSON")
	}
	_, err := c.runner.Run(ctx, strings.NewReader(string(payload)), "push", udid, bundleID, "-")
	return err
}

// GrantPermission grants a privacy permission to bundleID.
func (c *ExecClient) GrantPermission(ctx context.Context, udid, bundleID, permission string) error {
	return c.exec(ctx, "privacy", udid, "grant", permission, bundleID)
}

// RevokePermission revokes a privacy permission from bundleID.
func (c *ExecClient) RevokePermission(ctx context.Context, udid, bundleID, permission string) error {
	return c.exec(ctx, "privacy", udid, "revoke", permission, bundleID)
}

// ResetPermission resets a privacy permission for bundleID.
func (c *ExecClient) ResetPermission(ctx context.Context, udid, bundleID, permission string) error {
	return c.exec(ctx, "privacy", udid, "reset", permission, bundleID)
}

// AddRootCertificate trusts the certificate at path as a root CA.
func (c *ExecClient) AddRootCertificate(ctx context.Context, udid, path string) error {
	return c.exec(ctx, "keychain", udid, "add-root-cert", path)
}

// AddCertificate adds the certificate at path to the keychain.
func (c *ExecClient) AddCertificate(ctx context.Context, udid, path string) error {
	return c.exec(ctx, "keychain", udid, "add-cert", path)
}

// ResetKeychain clears the simulator keychain.
func (c *ExecClient) ResetKeychain(ctx context.Context, udid string) error {
	return c.exec(ctx, "keychain", udid, "reset")
}

// Screenshot writes a screenshot of the simulator screen to path.
func (c *ExecClient) Screenshot(ctx context.Context, udid, path string) (Result, error) {
	return c.run(ctx, "io", udid, "screenshot", path)
}
