package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBaseURL, EnvCollection, EnvLogLevel, EnvRefreshInterval, EnvRefreshLead, EnvRefreshPolicy} {
		t.Setenv(k, "")
	}
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	clearEnv(t)
	c, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, 2*time.Minute, c.RefreshInterval())
	assert.Equal(t, 5*time.Minute, c.RefreshLead())
	assert.Equal(t, 10*time.Second, c.RequestTimeout())
}

func TestLoadFile_FileThenEnv(t *testing.T) {
	clearEnv(t)
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{
		"base_url": "https://pb.example.com/",
		"collection": "admins",
		"refresh": {"interval": "30s", "policy": "always"}
	}`), 0o600))

	c, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "https://pb.example.com", c.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, "admins", c.Collection)
	assert.Equal(t, 30*time.Second, c.RefreshInterval())
	assert.Equal(t, DefaultRefreshLead, c.RefreshLead(), "unset fields keep defaults")
	assert.Equal(t, "always", c.Refresh.Policy)

	t.Setenv(EnvBaseURL, "http://localhost:9000")
	t.Setenv(EnvRefreshLead, "1m")
	c, err = LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", c.BaseURL)
	assert.Equal(t, time.Minute, c.RefreshLead())
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad json", body: `{`},
		{name: "bad interval", body: `{"refresh": {"interval": "soon"}}`},
		{name: "zero interval", body: `{"refresh": {"interval": "0s"}}`},
		{name: "bad lead", body: `{"refresh": {"lead": "-"}}`},
		{name: "unknown policy", body: `{}`, env: map[string]string{EnvRefreshPolicy: "never"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			p := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(p, []byte(tt.body), 0o600))
			_, err := LoadFile(p)
			assert.Error(t, err)
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := Default()
	c.BaseURL = "https://pb.example.com"
	c.Refresh.Policy = "always"
	require.NoError(t, Save(c))

	p, err := Path()
	require.NoError(t, err)
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestSet(t *testing.T) {
	tests := []struct {
		key, value string
		check      func(t *testing.T, c Config)
		wantErr    bool
	}{
		{key: "url", value: "https://pb.example.com/", check: func(t *testing.T, c Config) {
			assert.Equal(t, "https://pb.example.com", c.BaseURL)
		}},
		{key: "refresh.policy", value: "always", check: func(t *testing.T, c Config) {
			assert.Equal(t, "always", c.Refresh.Policy)
		}},
		{key: "refresh.interval", value: "45s", check: func(t *testing.T, c Config) {
			assert.Equal(t, 45*time.Second, c.RefreshInterval())
		}},
		{key: "refresh.policy", value: "never", wantErr: true},
		{key: "refresh.interval", value: "0s", wantErr: true},
		{key: "colour", value: "blue", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			c := Default()
			err := c.Set(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, Default(), c, "failed Set leaves config unchanged")
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestLoadStored_IgnoresEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := Default()
	require.NoError(t, c.Set("collection", "admins"))
	require.NoError(t, Save(c))

	t.Setenv(EnvCollection, "staff")
	stored, err := LoadStored()
	require.NoError(t, err)
	assert.Equal(t, "admins", stored.Collection)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "staff", loaded.Collection)
}
