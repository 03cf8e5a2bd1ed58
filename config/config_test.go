package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, warnings, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 0.7, cfg.QualityWeight)
	assert.Equal(t, 60.0, cfg.RRFK)
	assert.False(t, cfg.FastOnly)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	content := "quality_weight: 0.9\nfast_only: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hybridsearch.yaml"), []byte(content), 0644))

	cfg, _, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.QualityWeight)
	assert.True(t, cfg.FastOnly)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hybridsearch.yaml"), []byte("quality_weight: 0.9\n"), 0644))
	t.Setenv("HYBRIDSEARCH_QUALITY_WEIGHT", "0.2")
	cfg, warnings, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 0.2, cfg.QualityWeight)
}

func TestLoadOutOfRangeFallsBackWithWarning(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HYBRIDSEARCH_QUALITY_WEIGHT", "5.0")
	cfg, warnings, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.QualityWeight)
	require.Len(t, warnings, 1)
	assert.Equal(t, "quality_weight", warnings[0].Key)
}
