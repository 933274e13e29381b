// Package devicetools declares the simulator operations exposed over MCP.
// Each descriptor binds a name, a parameter table and a handler that calls
// into a simctl.Client.
package devicetools

import (
	"context"
	"encoding/json"
	"fmt"

	"simctl-mcp/internal/simctl"
	"simctl-mcp/internal/tools"

	"github.com/mark3labs/mcp-go/mcp"
)

func udidParam() tools.Param {
	return tools.Param{Name: "udid", Type: tools.ParamString, Required: true, Description: "Device unique identifier"}
}

func bundleIDParam() tools.Param {
	return tools.Param{Name: "bundleId", Type: tools.ParamString, Required: true, Description: "App Bundle ID"}
}

func stringParam(name, description string) tools.Param {
	return tools.Param{Name: name, Type: tools.ParamString, Required: true, Description: description}
}

// done wraps an effect-only call so it answers with a fixed confirmation.
func done(message string, fn func(ctx context.Context, args tools.Args) error) tools.Handler {
	return func(ctx context.Context, args tools.Args) ([]mcp.Content, error) {
		if err := fn(ctx, args); err != nil {
			return nil, err
		}
		return tools.Text(message), nil
	}
}

// text answers with the string a call returns.
func text(fn func(ctx context.Context, args tools.Args) (string, error)) tools.Handler {
	return func(ctx context.Context, args tools.Args) ([]mcp.Content, error) {
		s, err := fn(ctx, args)
		if err != nil {
			return nil, err
		}
		return tools.Text(s), nil
	}
}

// asJSON answers with the JSON encoding of whatever a call returns.
func asJSON[T any](fn func(ctx context.Context, args tools.Args) (T, error)) tools.Handler {
	return func(ctx context.Context, args tools.Args) ([]mcp.Content, error) {
		v, err := fn(ctx, args)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode result: %w", err)
		}
		return tools.Text(string(b)), nil
	}
}

// output answers with stdout, falling back to stderr.
func output(fn func(ctx context.Context, args tools.Args) (simctl.Result, error)) tools.Handler {
	return func(ctx context.Context, args tools.Args) ([]mcp.Content, error) {
		res, err := fn(ctx, args)
		if err != nil {
			return nil, err
		}
		return tools.Text(res.Text()), nil
	}
}

// Descriptors returns the full simulator operation table bound to client.
func Descriptors(client simctl.Client) []tools.Descriptor {
	var all []tools.Descriptor
	all = append(all, lifecycle(client)...)
	all = append(all, apps(client)...)
	all = append(all, listings(client)...)
	all = append(all, settings(client)...)
	all = append(all, keychain(client)...)
	return all
}

// Register adds every simulator operation to catalog.
func Register(catalog *tools.Catalog, client simctl.Client) error {
	for _, d := range Descriptors(client) {
		if err := catalog.Register(d); err != nil {
			return err
		}
	}
	return nil
}

func lifecycle(client simctl.Client) []tools.Descriptor {
	return []tools.Descriptor{
		{
			Name:          "create_device",
			Description:   "Create a new simulator device",
			FailurePhrase: "create device",
			Params: []tools.Param{
				stringParam("name", "Device name"),
				stringParam("runtime", "Runtime version"),
				stringParam("deviceType", "Device type"),
			},
			Handler: asJSON(func(ctx context.Context, a tools.Args) (string, error) {
				return client.CreateDevice(ctx, a.String("name"), a.String("runtime"), a.String("deviceType"))
			}),
		},
		{
			Name:          "delete_device",
			Description:   "Delete the specified simulator device",
			FailurePhrase: "delete device",
			Params:        []tools.Param{udidParam()},
			Handler: done("Device deleted successfully", func(ctx context.Context, a tools.Args) error {
				return client.DeleteDevice(ctx, a.String("udid"))
			}),
		},
		{
			Name:          "boot_device",
			Description:   "Boot simulator device",
			FailurePhrase: "boot device",
			Params:        []tools.Param{udidParam()},
			Handler: done("Device booted successfully", func(ctx context.Context, a tools.Args) error {
				return client.BootDevice(ctx, a.String("udid"))
			}),
		},
		{
			Name:          "shutdown_device",
			Description:   "Shutdown simulator device",
			FailurePhrase: "shutdown device",
			Params:        []tools.Param{udidParam()},
			Handler: done("Device shutdown successfully", func(ctx context.Context, a tools.Args) error {
				return client.ShutdownDevice(ctx, a.String("udid"))
			}),
		},
		{
			Name:          "get_env",
			Description:   "Get device environment variable",
			FailurePhrase: "get environment variable",
			Params:        []tools.Param{udidParam(), stringParam("key", "Environment variable key")},
			Handler: text(func(ctx context.Context, a tools.Args) (string, error) {
				return client.GetEnv(ctx, a.String("udid"), a.String("key"))
			}),
		},
		{
			Name:          "open_url",
			Description:   "Open URL in device",
			FailurePhrase: "open URL",
			Params:        []tools.Param{udidParam(), stringParam("url", "URL to open")},
			Handler: done("URL opened successfully", func(ctx context.Context, a tools.Args) error {
				return client.OpenURL(ctx, a.String("udid"), a.String("url"))
			}),
		},
		{
			Name:          "add_media",
			Description:   "Add media files to device",
			FailurePhrase: "add media files",
			Params:        []tools.Param{udidParam(), stringParam("path", "Media file path")},
			Handler: done("Media files added successfully", func(ctx context.Context, a tools.Args) error {
				return client.AddMedia(ctx, a.String("udid"), a.String("path"))
			}),
		},
		{
			Name:          "get_screenshot",
			Description:   "Get device screenshot",
			FailurePhrase: "get screenshot",
			Params:        []tools.Param{udidParam(), stringParam("path", "Screenshot save path")},
			Handler: output(func(ctx context.Context, a tools.Args) (simctl.Result, error) {
				return client.Screenshot(ctx, a.String("udid"), a.String("path"))
			}),
		},
	}
}

func apps(client simctl.Client) []tools.Descriptor {
	return []tools.Descriptor{
		{
			Name:          "install_app",
			Description:   "Install app on device",
			FailurePhrase: "install app",
			Params:        []tools.Param{udidParam(), stringParam("path", "App file path")},
			Handler: done("App installed successfully", func(ctx context.Context, a tools.Args) error {
				return client.InstallApp(ctx, a.String("udid"), a.String("path"))
			}),
		},
		{
			Name:          "uninstall_app",
			Description:   "Uninstall app from device",
			FailurePhrase: "uninstall app",
			Params:        []tools.Param{udidParam(), bundleIDParam()},
			Handler: done("App uninstalled successfully", func(ctx context.Context, a tools.Args) error {
				return client.UninstallApp(ctx, a.String("udid"), a.String("bundleId"))
			}),
		},
		{
			Name:          "get_app_container",
			Description:   "Get installed app container path",
			FailurePhrase: "get app container path",
			Params:        []tools.Param{udidParam(), bundleIDParam()},
			Handler: text(func(ctx context.Context, a tools.Args) (string, error) {
				return client.GetAppContainer(ctx, a.String("udid"), a.String("bundleId"))
			}),
		},
		{
			Name:          "launch_app",
			Description:   "Launch app on device",
			FailurePhrase: "launch app",
			Params:        []tools.Param{udidParam(), bundleIDParam()},
			Handler: done("App launched successfully", func(ctx context.Context, a tools.Args) error {
				return client.LaunchApp(ctx, a.String("udid"), a.String("bundleId"))
			}),
		},
		{
			Name:          "terminate_app",
			Description:   "Terminate running app on device",
			FailurePhrase: "terminate app",
			Params:        []tools.Param{udidParam(), bundleIDParam()},
			Handler: done("App terminated successfully", func(ctx context.Context, a tools.Args) error {
				return client.TerminateApp(ctx, a.String("udid"), a.String("bundleId"))
			}),
		},
		{
			Name:          "get_app_info",
			Description:   "Get installed app information",
			FailurePhrase: "get app info",
			Params:        []tools.Param{udidParam(), bundleIDParam()},
			Handler: asJSON(func(ctx context.Context, a tools.Args) (string, error) {
				return client.AppInfo(ctx, a.String("udid"), a.String("bundleId"))
			}),
		},
		{
			Name:          "list_apps",
			Description:   "List installed apps on device",
			FailurePhrase: "list apps",
			Params:        []tools.Param{udidParam()},
			Handler: output(func(ctx context.Context, a tools.Args) (simctl.Result, error) {
				return client.ListApps(ctx, a.String("udid"))
			}),
		},
	}
}

func listings(client simctl.Client) []tools.Descriptor {
	return []tools.Descriptor{
		{
			Name:          "list_devices",
			Description:   "List available simulator devices",
			FailurePhrase: "get device list",
			Handler: asJSON(func(ctx context.Context, _ tools.Args) (map[string][]simctl.Device, error) {
				return client.ListDevices(ctx)
			}),
		},
		{
			Name:          "list_device_types",
			Description:   "List available device types",
			FailurePhrase: "get device types",
			Handler: asJSON(func(ctx context.Context, _ tools.Args) ([]simctl.DeviceType, error) {
				return client.ListDeviceTypes(ctx)
			}),
		},
		{
			Name:          "list_runtimes",
			Description:   "List available runtimes",
			FailurePhrase: "get runtimes",
			Handler: asJSON(func(ctx context.Context, _ tools.Args) ([]simctl.Runtime, error) {
				return client.ListRuntimes(ctx)
			}),
		},
	}
}

func settings(client simctl.Client) []tools.Descriptor {
	permissionParams := []tools.Param{udidParam(), bundleIDParam(), stringParam("permission", "Permission type")}

	return []tools.Descriptor{
		{
			Name:          "get_appearance",
			Description:   "Get device appearance settings",
			FailurePhrase: "get appearance",
			Params:        []tools.Param{udidParam()},
			Handler: text(func(ctx context.Context, a tools.Args) (string, error) {
				return client.GetAppearance(ctx, a.String("udid"))
			}),
		},
		{
			Name:          "set_appearance",
			Description:   "Set device appearance",
			FailurePhrase: "set appearance",
			Params:        []tools.Param{udidParam(), stringParam("appearance", "Appearance setting (light/dark)")},
			Handler: done("Appearance set successfully", func(ctx context.Context, a tools.Args) error {
				return client.SetAppearance(ctx, a.String("udid"), a.String("appearance"))
			}),
		},
		{
			Name:          "push_notification",
			Description:   "Send simulated push notification to device",
			FailurePhrase: "send push notification",
			Params: []tools.Param{
				udidParam(),
				bundleIDParam(),
				stringParam("payload", "Push notification JSON payload"),
			},
			Handler: done("Push notification sent successfully", func(ctx context.Context, a tools.Args) error {
				payload := json.RawMessage(a.String("payload"))
				if !json.Valid(payload) {
					return fmt.Errorf("payload is not valid JSON")
				}
				return client.PushNotification(ctx, a.String("udid"), a.String("bundleId"), payload)
			}),
		},
		{
			Name:          "grant_permission",
			Description:   "Grant permission to app",
			FailurePhrase: "grant permission",
			Params:        permissionParams,
			Handler: done("Permission granted successfully", func(ctx context.Context, a tools.Args) error {
				return client.GrantPermission(ctx, a.String("udid"), a.String("bundleId"), a.String("permission"))
			}),
		},
		{
			Name:          "revoke_permission",
			Description:   "Revoke app permission",
			FailurePhrase: "revoke permission",
			Params:        permissionParams,
			Handler: done("Permission revoked successfully", func(ctx context.Context, a tools.Args) error {
				return client.RevokePermission(ctx, a.String("udid"), a.String("bundleId"), a.String("permission"))
			}),
		},
		{
			Name:          "reset_permission",
			Description:   "Reset all app permissions",
			FailurePhrase: "reset permissions",
			Params:        permissionParams,
			Handler: done("Permissions reset successfully", func(ctx context.Context, a tools.Args) error {
				return client.ResetPermission(ctx, a.String("udid"), a.String("bundleId"), a.String("permission"))
			}),
		},
	}
}

func keychain(client simctl.Client) []tools.Descriptor {
	return []tools.Descriptor{
		{
			Name:          "add_root_certificate",
			Description:   "Add root certificate to device keychain",
			FailurePhrase: "add root certificate",
			Params:        []tools.Param{udidParam(), stringParam("path", "Certificate file path")},
			Handler: done("Root certificate added successfully", func(ctx context.Context, a tools.Args) error {
				return client.AddRootCertificate(ctx, a.String("udid"), a.String("path"))
			}),
		},
		{
			Name:          "add_certificate",
			Description:   "Add certificate to device keychain",
			FailurePhrase: "add certificate",
			Params:        []tools.Param{udidParam(), stringParam("path", "Certificate file path")},
			Handler: done("Certificate added successfully", func(ctx context.Context, a tools.Args) error {
				return client.AddCertificate(ctx, a.String("udid"), a.String("path"))
			}),
		},
		{
			Name:          "reset_keychain",
			Description:   "Reset device keychain",
			FailurePhrase: "reset keychain",
			Params:        []tools.Param{udidParam()},
			Handler: done("Keychain reset successfully", func(ctx context.Context, a tools.Args) error {
				return client.ResetKeychain(ctx, a.String("udid"))
			}),
		},
	}
}
