package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Sample struct {
	BaseURL string        `mapstructure:"baseURL"`
	Lead    time.Duration `mapstructure:"lead"`
	Secure  bool          `mapstructure:"secure"`
	Name    string        `mapstructure:"name"`
	Skipped string        `mapstructure:"-"`
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("baseURL: http://issuer/api\nlead: 90s\n"), 0600))
	t.Setenv("AUTHSESSION_SECURE", "true")

	target := &Sample{Name: "default", Skipped: "kept"}
	require.NoError(t, Load(path, target))
	assert.EqualValues(t, "http://issuer/api", target.BaseURL)
	assert.EqualValues(t, 90*time.Second, target.Lead)
	assert.True(t, target.Secure)
	assert.EqualValues(t, "default", target.Name)
	assert.EqualValues(t, "kept", target.Skipped)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("AUTHSESSION_LEAD", "1m")
	target := &Sample{}
	require.NoError(t, Load("", target))
	assert.EqualValues(t, time.Minute, target.Lead)
}

func TestLoad_MissingFile(t *testing.T) {
	assert.Error(t, Load(filepath.Join(t.TempDir(), "absent.yaml"), &Sample{}))
}

func TestKeys(t *testing.T) {
	assert.EqualValues(t, []string{"baseURL", "lead", "secure", "name"}, keys(&Sample{}))
}

type embedding struct {
	Sample `mapstructure:",squash"`
	Extra  string
}

func TestLoad_Squash(t *testing.T) {
	t.Setenv("AUTHSESSION_BASEURL", "http://env/api")
	t.Setenv("AUTHSESSION_EXTRA", "x")
	target := &embedding{}
	require.NoError(t, Load("", target))
	assert.EqualValues(t, "http://env/api", target.BaseURL)
	assert.EqualValues(t, "x", target.Extra)
}
