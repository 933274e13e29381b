package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfUpdateCmd_Definition(t *testing.T) {
	cmd := newSelfUpdateCmd()

	assert.Equal(t, "self-update", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.RunE)
	require.NotNil(t, cmd.Flags().Lookup("repo"))
	assert.Equal(t, "", cmd.Flags().Lookup("repo").DefValue)
}

func TestSelfUpdateCmd_Help(t *testing.T) {
	cmd := newSelfUpdateCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "--repo")
	assert.Contains(t, buf.String(), "Release builds know their repository")
}

func TestRunSelfUpdate_RefusesDevelopmentVersions(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	for _, version := range []string{"", "dev"} {
		rootCmd.Version = version
		assert.ErrorIs(t, runSelfUpdate(nil, nil), errDevVersion, "version %q", version)
	}
}

func TestRunSelfUpdate_NeedsRepository(t *testing.T) {
	originalVersion, originalRepo, originalFlag := rootCmd.Version, releaseRepo, selfUpdateRepo
	defer func() {
		rootCmd.Version, releaseRepo, selfUpdateRepo = originalVersion, originalRepo, originalFlag
	}()

	rootCmd.Version = "1.0.0"
	releaseRepo = ""
	selfUpdateRepo = ""

	assert.ErrorIs(t, runSelfUpdate(nil, nil), errNoReleaseRepo)
}

func TestResolveReleaseRepo(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		builtIn string
		want    string
		wantErr error
	}{
		{name: "built-in", builtIn: "acme/simctl-mcp", want: "acme/simctl-mcp"},
		{name: "flag wins", flag: "fork/simctl-mcp", builtIn: "acme/simctl-mcp", want: "fork/simctl-mcp"},
		{name: "trims spaces", flag: " acme/tool ", want: "acme/tool"},
		{name: "nothing configured", wantErr: errNoReleaseRepo},
		{name: "missing owner", flag: "/tool"},
		{name: "missing name", flag: "acme/"},
		{name: "no slash", flag: "acme"},
		{name: "too many parts", flag: "acme/tool/extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveReleaseRepo(tt.flag, tt.builtIn)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.want == "":
				assert.ErrorContains(t, err, "expected owner/name")
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
