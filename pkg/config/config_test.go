package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chenBenjamin97/football-analyzer/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
directory:
  root: /srv/fa
  models: /srv/fa/models
  cache: ""
video:
  prod_format: webm
detector:
  script: /opt/yolo/detect.py
  tracker_script: /opt/yolo/track.py
http:
  port: 9090
frontend:
  static-files-path: /srv/www/
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadReadsFileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "/srv/fa", cfg.Directory.Root)
	assert.Equal(t, "", cfg.Directory.Cache)
	assert.Equal(t, "webm", cfg.Video.ProdFormat)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "/srv/www/", cfg.Frontend.StaticFilesPath)
	assert.Equal(t, "python3", cfg.Detector.Python)
	assert.Equal(t, "best.pt", cfg.Detector.Model)
	assert.InDelta(t, 24.0, cfg.Video.OutputFPS, 1e-9)
	assert.InDelta(t, utils.DetectionConfidence, cfg.Detector.Confidence, 1e-9)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("FA_HTTP_PORT", "7000")
	t.Setenv("FA_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateListsMissingKeys(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "video.prod_format")
	assert.Contains(t, err.Error(), "detector.tracker_script")
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{
		Directory: DirectoryConfig{
			Root:   filepath.Join(root, "data"),
			Source: filepath.Join(root, "data", "source"),
			Cache:  filepath.Join(root, "stubs"),
		},
		Database: DatabaseConfig{Path: filepath.Join(root, "db", "reports.db")},
	}

	require.NoError(t, cfg.EnsureDirs())
	for _, dir := range []string{cfg.Directory.Source, cfg.Directory.Cache, filepath.Join(root, "db")} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestModelPath(t *testing.T) {
	cfg := &Config{Directory: DirectoryConfig{Models: "models"}}

	assert.Equal(t, filepath.Join("models", "best.pt"), cfg.ModelPath("best.pt"))
	assert.Equal(t, "/weights/best.pt", cfg.ModelPath("/weights/best.pt"))
}
