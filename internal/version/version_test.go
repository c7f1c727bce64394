package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBuild(t *testing.T, version, commit, built string, settings map[string]string) {
	t.Helper()
	oldVersion, oldCommit, oldTime, oldRead := Version, GitCommit, BuildTime, readSettings
	Version, GitCommit, BuildTime = version, commit, built
	readSettings = func() map[string]string { return settings }
	t.Cleanup(func() {
		Version, GitCommit, BuildTime, readSettings = oldVersion, oldCommit, oldTime, oldRead
	})
}

func TestGetBuildInfo(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		commit    string
		built     string
		settings  map[string]string
		want      string
		wantShort string
		release   bool
	}{
		{
			name:      "stamped release",
			version:   "v1.2.0",
			commit:    "0123456789abcdef",
			built:     "2026-10-01T12:00:00Z",
			want:      "v1.2.0",
			wantShort: "v1.2.0 (0123456)",
			release:   true,
		},
		{
			name:      "module version",
			version:   "dev",
			commit:    "unknown",
			settings:  map[string]string{"main.version": "v0.4.1"},
			want:      "v0.4.1",
			wantShort: "v0.4.1",
			release:   true,
		},
		{
			name:      "vcs revision",
			version:   "dev",
			commit:    "unknown",
			settings:  map[string]string{"vcs.revision": "abcdef0123", "vcs.modified": "true"},
			want:      "dev-abcdef0",
			wantShort: "dev-abcdef0",
		},
		{
			name:      "nothing known",
			version:   "dev",
			commit:    "unknown",
			want:      "dev",
			wantShort: "dev",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := tt.settings
			if settings == nil {
				settings = map[string]string{}
			}
			withBuild(t, tt.version, tt.commit, tt.built, settings)

			info := GetBuildInfo()
			assert.Equal(t, tt.want, info.Version)
			assert.Equal(t, tt.wantShort, info.Short())
			assert.Equal(t, tt.release, info.IsRelease())
			assert.Equal(t, settings["vcs.modified"] == "true", info.Dirty)
		})
	}
}

func TestDetailed(t *testing.T) {
	withBuild(t, "v1.0.0", "fedcba9876543210", "2026-10-01T12:00:00Z", map[string]string{})

	detail := GetBuildInfo().Detailed()
	assert.Contains(t, detail, "Version: v1.0.0")
	assert.Contains(t, detail, "Commit: fedcba9876543210")
	assert.Contains(t, detail, "Built: 2026-10-01T12:00:00Z")
	assert.NotContains(t, detail, "Modified")
}

func TestParseBuildTime(t *testing.T) {
	want := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, want, parseBuildTime("2026-03-04T05:06:07Z"))
	assert.Equal(t, want, parseBuildTime("unknown", "2026-03-04 05:06:07"))
	assert.True(t, parseBuildTime("unknown", "").IsZero())
	assert.True(t, parseBuildTime("yesterday").IsZero())
}
