package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apierrors "github.com/diogo/helper/internal/errors"
)

func TestConfigCommand(t *testing.T) {
	te := newTestEnv(t)

	if err := te.run("config", "--model", "gpt-4o"); err != nil {
		t.Fatalf("config failed: %v", err)
	}

	out := te.stdout.String()
	if !strings.Contains(out, "****1234") {
		t.Errorf("API key should be masked:\n%s", out)
	}
	if strings.Contains(out, "sk-test-key") {
		t.Errorf("API key leaked:\n%s", out)
	}
	if !strings.Contains(out, "gpt-4o") {
		t.Errorf("flag model not shown:\n%s", out)
	}
	if !strings.Contains(out, te.historyPath()) {
		t.Errorf("history path not shown:\n%s", out)
	}
	if !strings.Contains(out, filepath.Join(te.dir, "config.json")) {
		t.Errorf("config path not shown:\n%s", out)
	}
	if te.mock.Calls != 0 {
		t.Error("config should not contact the model")
	}
}

func TestConfigCommand_FileValues(t *testing.T) {
	te := newTestEnv(t)
	delete(te.env, "OPENAI_API_KEY")
	content := "default_model = \"from-file\"\nsystem_prompt = \"File prompt\"\n"
	if err := os.WriteFile(filepath.Join(te.dir, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := te.run("config"); err != nil {
		t.Fatalf("config failed: %v", err)
	}

	out := te.stdout.String()
	for _, want := range []string{"from-file", "File prompt", "(not set)", "config.toml"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCommand_InvalidFile(t *testing.T) {
	te := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(te.dir, "config.toml"), []byte("default_model = = 1"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := te.run("config")
	if apierrors.KindOf(err) != apierrors.KindConfig {
		t.Errorf("KindOf = %v, want config", apierrors.KindOf(err))
	}
}

func TestConfigInit(t *testing.T) {
	te := newTestEnv(t)

	if err := te.run("config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	path := filepath.Join(te.dir, "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// A second init refuses to overwrite
	err := te.run("config", "init")
	if apierrors.KindOf(err) != apierrors.KindConfig {
		t.Errorf("KindOf = %v, want config", apierrors.KindOf(err))
	}
}
