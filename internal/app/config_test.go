package app

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
database:
  host: localhost
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Core.Telegram.RunMode != "longpoll" {
		t.Errorf("run_mode = %q, want longpoll", cfg.Core.Telegram.RunMode)
	}
	if cfg.Bot.DefaultSupportUsername != "skupfast" {
		t.Errorf("default support = %q, want skupfast", cfg.Bot.DefaultSupportUsername)
	}
	if cfg.CoreConfig() != &cfg.Core {
		t.Error("CoreConfig does not expose the embedded core config")
	}
}

func TestLoadConfigStripsSupportAt(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
bot:
  default_support_username: "@helpdesk"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.DefaultSupportUsername != "helpdesk" {
		t.Errorf("default support = %q, want helpdesk", cfg.Bot.DefaultSupportUsername)
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	path := writeConfig(t, `
telegram:
  run_mode: longpoll
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("config without a token was accepted")
	}
}
