package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[access]
whitelist = ["josu@yenze.io"]
`)

	require.NoError(t, Load(path))

	assert.Equal(t, "info", viper.GetString("app.log_level"))
	assert.Equal(t, "memory", viper.GetString("store.type"))
	assert.Equal(t, 15*time.Minute, viper.GetDuration("auth.magic_link_ttl"))
	assert.Equal(t, 30*24*time.Hour, viper.GetDuration("auth.session_ttl"))
	assert.Equal(t, time.Hour, viper.GetDuration("auth.rate_limit.window"))
	assert.Equal(t, 3, viper.GetInt("auth.rate_limit.max"))
	assert.Equal(t, []string{"josu@yenze.io"}, viper.GetStringSlice("access.whitelist"))
	assert.False(t, Production())

	bundles, err := Bundles()
	require.NoError(t, err)

	names := []string{}
	for _, b := range bundles {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"curso_interactivo", "empezar", "ralph_loop", "recursos"}, names)
}

func TestLoadBundlesFromFile(t *testing.T) {
	path := writeConfig(t, `
[app]
env = "production"

[access]
products = ["ralph_loop"]

[access.bundles.ralph_loop]
gates = ["session", "purchase"]
product = "ralph_loop"
`)

	require.NoError(t, Load(path))
	assert.True(t, Production())

	bundles, err := Bundles()
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Equal(t, "ralph_loop", bundles[0].Name)
	assert.Equal(t, []string{"session", "purchase"}, bundles[0].Gates)
	assert.Equal(t, "ralph_loop", bundles[0].Product)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := map[string]string{
		"log level": `
[app]
log_level = "loud"
`,
		"store type": `
[store]
type = "etcd"
`,
		"postgres without dsn": `
[db]
type = "postgres"
`,
		"mail without host": `
[mail]
enabled = true
sender_address = "hola@example.com"
`,
		"zero ttl": `
[auth]
magic_link_ttl = "0s"
`,
		"turnstile without secret": `
[turnstile]
enabled = true
`,
		"export without bucket": `
[export]
enabled = true
`,
		"bad schedule": `
[export]
enabled = true
bucket = "b"
schedule = "whenever"
`,
		"unknown product": `
[access.bundles.merch]
gates = ["purchase"]
product = "camiseta"
`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, Load(writeConfig(t, body)))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorContains(t, err, "missing")
}
