package model

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30, cfg.AI.TimeoutSec)
	assert.Equal(t, 15, cfg.Notify.TimeoutSec)
	assert.False(t, cfg.Notify.Mail.Enabled)
	assert.Equal(t, "993", cfg.Notify.Mail.Port)
	assert.Equal(t, DefaultContacts(), cfg.Contacts)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
database:
  path: /tmp/meds.db
log:
  level: debug
notify:
  timeout_sec: 5
  mail:
    enabled: true
    host: imap.example.com
    gateway_domain: sms.example.com
contacts:
  - name: Daughter
    phone: "0899999999"
    kind: caregiver
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/meds.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Notify.TimeoutSec)
	assert.True(t, cfg.Notify.Mail.Enabled)
	assert.Equal(t, "imap.example.com", cfg.Notify.Mail.Host)
	assert.Equal(t, "Outbox", cfg.Notify.Mail.Mailbox)
	require.Len(t, cfg.Contacts, 1)
	assert.Equal(t, Contact{Name: "Daughter", Phone: "0899999999", Kind: ContactCaregiver}, cfg.Contacts[0])
}

func TestLoadConfigExplicitEmptyContacts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("contacts: []\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Contacts)
}

func TestLoadConfigRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestInitConfigWritesOnlyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medreminder", "config.yaml")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.Notify.Mail.Host = "imap.example.com"

	require.NoError(t, InitConfig(path, cfg))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "imap.example.com", loaded.Notify.Mail.Host)
	assert.Equal(t, cfg.Contacts, loaded.Contacts)

	cfg.Notify.Mail.Host = "other.example.com"
	assert.ErrorIs(t, InitConfig(path, cfg), ErrConfigExists)
	loaded, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "imap.example.com", loaded.Notify.Mail.Host)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.Log.Level = "warn"

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", loaded.Log.Level)
	assert.Equal(t, cfg.Database.Path, loaded.Database.Path)
}

func TestDumpConfigUsesFileLayout(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	cfg.Notify.Mail.GatewayDomain = "sms.example.com"

	var buf bytes.Buffer
	require.NoError(t, DumpConfig(&buf, cfg))
	assert.Contains(t, buf.String(), "gateway_domain: sms.example.com")
	assert.Contains(t, buf.String(), "timeout_sec: 15")

	var back AppConfig
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, *cfg, back)
}
