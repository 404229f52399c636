package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	ParentFolder string `json:"parent_folder"`
	ChunkSize    int    `json:"chunk_size"`
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(dir, "config.json5"),
		[]byte(`{ parent_folder: "root-folder", chunk_size: 2 }`),
		0644,
	)
	require.NoError(t, err)
	err = os.WriteFile(
		filepath.Join(dir, "config.local.json5"),
		[]byte(`{ chunk_size: 4 }`),
		0644,
	)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "root-folder", cfg.ParentFolder)
	require.Equal(t, 4, cfg.ChunkSize)
}

func TestReadConfigMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadEnvJSON(t *testing.T) {
	t.Setenv("TEST_CREDENTIALS", `{"parent_folder":"abc","chunk_size":3}`)

	cfg, err := ReadEnvJSON[testConfig]("TEST_CREDENTIALS")
	require.NoError(t, err)
	require.Equal(t, "abc", cfg.ParentFolder)
	require.Equal(t, 3, cfg.ChunkSize)

	t.Setenv("TEST_CREDENTIALS", "")
	_, err = ReadEnvJSON[testConfig]("TEST_CREDENTIALS")
	require.Error(t, err)
}
