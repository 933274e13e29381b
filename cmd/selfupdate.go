package cmd

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// releaseRepo is the GitHub owner/name releases are published to. Release
// builds set it with -ldflags "-X simctl-mcp/cmd.releaseRepo=owner/name".
var releaseRepo = ""

// selfUpdateRepo overrides releaseRepo for a single run.
var selfUpdateRepo string

var (
	errDevVersion    = errors.New("cannot self-update a development version")
	errNoReleaseRepo = errors.New("no release repository configured, pass --repo owner/name")
)

func newSelfUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update simctl-mcp to the latest release",
		Long: `Checks for the latest release of simctl-mcp on GitHub and replaces the
running binary when a newer version is available.

Release builds know their repository. Other builds need --repo owner/name.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
	cmd.Flags().StringVar(&selfUpdateRepo, "repo", "", "GitHub repository (owner/name) to update from")
	return cmd
}

// resolveReleaseRepo picks the --repo value over the built-in one and checks
// it has the owner/name form.
func resolveReleaseRepo(flagRepo, builtIn string) (string, error) {
	repo := strings.TrimSpace(flagRepo)
	if repo == "" {
		repo = strings.TrimSpace(builtIn)
	}
	if repo == "" {
		return "", errNoReleaseRepo
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("invalid release repository %q, expected owner/name", repo)
	}
	return repo, nil
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	currentVersion := rootCmd.Version
	if currentVersion == "" || currentVersion == "dev" {
		return errDevVersion
	}

	repo, err := resolveReleaseRepo(selfUpdateRepo, releaseRepo)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s/%s could not be found from github repository %s", runtime.GOOS, runtime.GOARCH, repo)
	}

	if latest.LessOrEqual(currentVersion) {
		fmt.Printf("Current version (%s) is the latest\n", currentVersion)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	fmt.Printf("Successfully updated to version %s\n", latest.Version())
	return nil
}
