package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/acknowledge/pkg/errors"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// isolate points every user directory at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	return dir
}

func TestCacheDir(t *testing.T) {
	dir := isolate(t)

	got, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache", "acknowledge"), got)

	t.Setenv("XDG_CACHE_HOME", "")
	got, err = cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".cache", "acknowledge"), got, "without XDG")
}

func TestConfigDir(t *testing.T) {
	dir := isolate(t)
	got, err := configDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config", "acknowledge"), got)
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Cargo.toml")
	require.NoError(t, os.WriteFile(manifest, []byte("[package]\nname = \"x\"\n"), 0o644))

	tests := []struct {
		name     string
		path     string
		override string
		want     string
	}{
		{"directory", dir, "", filepath.Join(dir, "ACKNOWLEDGEMENTS.md")},
		{"manifest file", manifest, "", filepath.Join(dir, "ACKNOWLEDGEMENTS.md")},
		{"missing manifest file", filepath.Join(dir, "sub", "Cargo.toml"), "", filepath.Join(dir, "sub", "ACKNOWLEDGEMENTS.md")},
		{"override", dir, "THANKS.md", "THANKS.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outputPath(tt.path, tt.override))
		})
	}
}

func TestOpenCache(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	for _, backend := range []string{"", cacheFile, cacheBolt, cacheNone} {
		c, err := openCache(ctx, cacheSettings{Backend: backend, Dir: dir})
		require.NoError(t, err, "openCache(%q)", backend)
		assert.NoError(t, c.Set(ctx, "k", []byte("v")), backend)
		c.Close()
	}

	_, err := openCache(ctx, cacheSettings{Backend: cacheRedis})
	assert.Error(t, err, "redis without URL should fail")
	_, err = openCache(ctx, cacheSettings{Backend: "memcached"})
	assert.Error(t, err, "unknown backend should fail")
}

func TestCachePathCommand(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache", "acknowledge"), strings.TrimSpace(out))

	out, err = execute(t, "cache", "path", "--cache", "bolt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cache", "acknowledge", boltFile), strings.TrimSpace(out))
}

func TestCacheClearCommand(t *testing.T) {
	dir := isolate(t)
	ctx := context.Background()

	c, err := openCache(ctx, cacheSettings{Dir: filepath.Join(dir, "cache", "acknowledge")})
	require.NoError(t, err)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte(k)))
	}
	c.Close()

	_, err = execute(t, "cache", "clear")
	require.NoError(t, err)

	c, err = openCache(ctx, cacheSettings{Dir: filepath.Join(dir, "cache", "acknowledge")})
	require.NoError(t, err)
	defer c.Close()
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok, "cache clear should remove entries")
}

func TestEnvOverridesFlagDefault(t *testing.T) {
	isolate(t)
	t.Setenv("ACKNOWLEDGE_CACHE", "bolt")

	out, err := execute(t, "cache", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), boltFile), "ACKNOWLEDGE_CACHE=bolt should select bolt, got %q", out)
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "config", "acknowledge")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("cache: bolt\n"), 0o644))

	out, err := execute(t, "cache", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), boltFile), "config file cache: bolt should select bolt, got %q", out)

	// A flag beats the config file.
	out, err = execute(t, "cache", "path", "--cache", "file")
	require.NoError(t, err)
	assert.False(t, strings.HasSuffix(strings.TrimSpace(out), boltFile), "--cache file should win over config, got %q", out)

	_, err = execute(t, "cache", "path", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "explicit missing config file should fail")
}

func TestTokensFromEnvironment(t *testing.T) {
	t.Setenv("ACKNOWLEDGE_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "gh-conventional")
	t.Setenv("ACKNOWLEDGE_GITLAB_TOKEN", "gl-prefixed")

	c := New(io.Discard, log.InfoLevel)
	assert.Equal(t, "gh-conventional", c.config.GetString("github-token"))
	assert.Equal(t, "gl-prefixed", c.config.GetString("gitlab-token"))
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	tests := []struct {
		args []string
		code errors.Code
	}{
		{[]string{dir, "--format", "csv"}, errors.ErrCodeInvalidFormat},
		{[]string{dir, "--breadth", "everything"}, errors.ErrCodeInvalidBreadth},
		{[]string{dir, "--threshold=-1"}, errors.ErrCodeInvalidInput},
		{[]string{dir, "--source", "ftp://example.com/x"}, errors.ErrCodeInvalidInput},
		{[]string{dir, "--template", filepath.Join(dir, "missing.tmpl")}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], "_"), func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Equal(t, tt.code, errors.GetCode(err), "%v", err)
		})
	}
}

func TestGenerateMissingManifest(t *testing.T) {
	isolate(t)
	_, err := execute(t, t.TempDir(), "--cache", "none")
	assert.Equal(t, errors.ErrCodeInvalidManifest, errors.GetCode(err), "%v", err)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{logger: newLogger(&buf, log.DebugLevel)}

	h.OnStageStart(context.Background(), "0123456789abcdef", "fetching")
	h.OnRepoFetched(context.Background(), "github", "serde-rs/serde", 12, true)

	out := buf.String()
	for _, want := range []string{"stage started", "01234567", "serde-rs/serde", "cached=true"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "0123456789abcdef", "run id should be shortened")
}
