package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Email   string   `json:"email"`
	Port    int      `json:"port"`
	Folders []string `json:"folders"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("a", "config.local.json5"), LocalPath(filepath.Join("a", "config.json5")))
	require.Equal(t, "config.local", LocalPath("config"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](name)
	require.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, name, `{
		// comments are allowed
		email: "someone@example.com",
		port: 8000,
	}`)
	cfg, err := ReadConfig[testConfig](name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "someone@example.com", cfg.Email)
	require.Equal(t, 8000, cfg.Port)

	writeFile(t, LocalPath(name), `{port: 9000}`)
	cfg, err = ReadConfig[testConfig](name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "someone@example.com", cfg.Email)
	require.Equal(t, 9000, cfg.Port)
}

func TestReadConfigOver(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	writeFile(t, name, `{email: "other@example.com"}`)

	cfg, err := ReadConfigOver(testConfig{
		Port:    8000,
		Folders: []string{"index.html"},
	}, name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "other@example.com", cfg.Email)
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, []string{"index.html"}, cfg.Folders)
}

func TestReadConfigOverEmptyValues(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	writeFile(t, name, `{folders: [], email: ""}`)
	writeFile(t, LocalPath(name), `{port: 9000}`)

	cfg, err := ReadConfigOver(testConfig{
		Email:   "default@example.com",
		Port:    8000,
		Folders: []string{"index.html"},
	}, name)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "", cfg.Email)
	require.Equal(t, 9000, cfg.Port)
	require.NotNil(t, cfg.Folders)
	require.Empty(t, cfg.Folders)
}

func TestReadConfigOverMissing(t *testing.T) {
	base := testConfig{Port: 8000}
	cfg, err := ReadConfigOver(base, filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, base, cfg)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	writeFile(t, name, `{email: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}
