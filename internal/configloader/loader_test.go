package configloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pyextent/pkg/config"
)

// projectDir returns a temp directory marked as a VCS root so the upward
// search never leaves it.
func projectDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(projectDir(t)))
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), result.Config)
	assert.Empty(t, result.LoadedFrom)
}

func TestLoad_ProjectConfigFromSubdirectory(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	writeFile(t, filepath.Join(dir, ".pyextent.yml"), `
format: json
markdown:
  enabled: false
resolve:
  kinds: [If]
`)
	sub := filepath.Join(dir, "pkg", "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	result, err := Load(context.Background(), isolated(sub))
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, config.FormatJSON, cfg.Format)
	assert.False(t, cfg.Markdown.Enabled, "a file can switch a default off")
	assert.Equal(t, []string{"If"}, cfg.Resolve.Kinds)
	assert.Equal(t, config.DefaultTraceLineLen, cfg.Trace.MaxLineLen, "absent keys keep defaults")
	assert.Equal(t, []string{filepath.Join(dir, ".pyextent.yml")}, result.LoadedFrom)
}

func TestLoad_ExplicitOverridesProject(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	writeFile(t, filepath.Join(dir, ".pyextent.yml"), "format: json\njobs: 2\n")
	explicit := filepath.Join(dir, "custom.yml")
	writeFile(t, explicit, "jobs: 8\n")

	opts := isolated(dir)
	opts.ExplicitPath = explicit

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, config.FormatJSON, result.Config.Format)
	assert.Equal(t, 8, result.Config.Jobs)
	assert.Len(t, result.LoadedFrom, 2)
}

func TestLoad_CLIPrecedence(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	writeFile(t, filepath.Join(dir, ".pyextent.yml"), "format: json\ntrace:\n  dedup: true\n")

	opts := isolated(dir)
	opts.CLIConfig = &config.Config{Format: config.FormatText, Line: 3, Col: -1}
	opts.Override = func(c *config.Config) { c.Trace.Dedup = false }

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, config.FormatText, result.Config.Format)
	assert.Equal(t, 3, result.Config.Line)
	assert.Equal(t, -1, result.Config.Col)
	assert.False(t, result.Config.Trace.Dedup)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "flavor: gfm\n", "field flavor not found"},
		{"bad yaml", "format: [\n", "parse YAML"},
		{"invalid format", "format: sarif\n", "invalid format"},
		{"unknown kind", "resolve:\n  kinds: [Banana]\n", "unknown node kind"},
		{"bad glob", "ignore: ['[']\n", "invalid glob pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := projectDir(t)
			writeFile(t, filepath.Join(dir, ".pyextent.yml"), tt.content)

			_, err := Load(context.Background(), isolated(dir))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	writeFile(t, filepath.Join(dir, ".pyextent.yml"), "")

	result, err := Load(context.Background(), isolated(dir))
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), result.Config)
}

func TestLoad_Warnings(t *testing.T) {
	t.Parallel()

	dir := projectDir(t)
	writeFile(t, filepath.Join(dir, ".pyextent.yml"),
		"markdown:\n  enabled: false\n  detect_untagged: true\n")

	result, err := Load(context.Background(), isolated(dir))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "markdown.detect_untagged")
}

func TestLoad_UserConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, "pyextent", "config.yaml"), "jobs: 3\n")

	dir := projectDir(t)
	writeFile(t, filepath.Join(dir, ".pyextent.yml"), "format: json\n")

	result, err := Load(context.Background(), LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreEnv:          true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Config.Jobs)
	assert.Equal(t, config.FormatJSON, result.Config.Format)
	assert.Equal(t, filepath.Join(xdg, "pyextent", "config.yaml"), result.Paths.User)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PYEXTENT_FORMAT", "json")
	t.Setenv("PYEXTENT_JOBS", "4")
	t.Setenv("PYEXTENT_MARKDOWN", "false")
	t.Setenv("PYEXTENT_KINDS", "If, For ,,Call")
	t.Setenv("PYEXTENT_TRACE_BULLET", "> ")
	t.Setenv("PYEXTENT_MAX_FILE_SIZE", "2048")

	cfg := config.NewConfig()
	require.NoError(t, LoadFromEnv(cfg))

	assert.Equal(t, config.FormatJSON, cfg.Format)
	assert.Equal(t, 4, cfg.Jobs)
	assert.False(t, cfg.Markdown.Enabled)
	assert.Equal(t, []string{"If", "For", "Call"}, cfg.Resolve.Kinds)
	assert.Equal(t, "> ", cfg.Trace.Bullet)
	assert.Equal(t, int64(2048), cfg.MaxFileSize)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	t.Setenv("PYEXTENT_STRICT", "maybe")

	err := LoadFromEnv(config.NewConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PYEXTENT_STRICT")
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	assert.Len(t, vars, len(envVars))
	assert.Contains(t, vars, "PYEXTENT_TRACE_DEDUP")
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	base.Ignore = []string{"venv/**"}

	assert.Same(t, base, merge(base, nil))

	got := merge(base, &config.Config{Jobs: 2, Resolve: config.ResolveConfig{Strict: true}})
	assert.Equal(t, 2, got.Jobs)
	assert.True(t, got.Resolve.Strict)
	assert.Equal(t, []string{"venv/**"}, got.Ignore)
	assert.Equal(t, 0, base.Jobs, "base is not modified")
}

func TestValidationErrorString(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Field: "jobs", Message: "jobs must be >= 0", FilePath: "a.yml"}
	assert.Equal(t, "a.yml: jobs: jobs must be >= 0", err.Error())
}
