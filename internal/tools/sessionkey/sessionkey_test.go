package sessionkey

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("sessionkey", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Bytes != 32 || cfg.EnvFile != "" || cfg.Force {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestParseConfigBadArgs(t *testing.T) {
	fs := flag.NewFlagSet("sessionkey", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	if _, err := ParseConfig(fs, []string{"-invalid"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestRunRejectsShortKeys(t *testing.T) {
	if err := Run(Config{Bytes: 8}, &bytes.Buffer{}, bytes.NewReader(nil)); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestRunWritesHex(t *testing.T) {
	buf := &bytes.Buffer{}
	reader := bytes.NewReader(bytes.Repeat([]byte{0xab}, 16))
	if err := Run(Config{Bytes: 16}, buf, reader); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := EnvKey + "=" + strings.Repeat("ab", 16)
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestRunNilOutput(t *testing.T) {
	if err := Run(Config{Bytes: 16}, nil, nil); err == nil {
		t.Fatal("expected error for nil output")
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, fmt.Errorf("read error") }

func TestRunReaderError(t *testing.T) {
	if err := Run(Config{Bytes: 16}, &bytes.Buffer{}, errReader{}); err == nil {
		t.Fatal("expected error from failing reader")
	}
}

func TestRunEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("RADIOCONTROL_LOCALE=en-US\n"), 0o600); err != nil {
		t.Fatalf("seed env file: %v", err)
	}

	cfg := Config{Bytes: 16, EnvFile: path}
	if err := Run(cfg, &bytes.Buffer{}, bytes.NewReader(bytes.Repeat([]byte{0x01}, 16))); err != nil {
		t.Fatalf("run: %v", err)
	}
	values, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("read env file: %v", err)
	}
	if values["RADIOCONTROL_LOCALE"] != "en-US" {
		t.Fatalf("existing variable lost: %v", values)
	}
	if values[EnvKey] != strings.Repeat("01", 16) {
		t.Fatalf("key = %q", values[EnvKey])
	}

	if err := Run(cfg, &bytes.Buffer{}, bytes.NewReader(bytes.Repeat([]byte{0x02}, 16))); err == nil {
		t.Fatal("expected error replacing key without -force")
	}
	cfg.Force = true
	if err := Run(cfg, &bytes.Buffer{}, bytes.NewReader(bytes.Repeat([]byte{0x02}, 16))); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	values, err = godotenv.Read(path)
	if err != nil {
		t.Fatalf("read env file: %v", err)
	}
	if values[EnvKey] != strings.Repeat("02", 16) {
		t.Fatalf("forced key = %q", values[EnvKey])
	}
}

func TestRunCreatesEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.env")
	if err := Run(Config{Bytes: 16, EnvFile: path}, &bytes.Buffer{}, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	values, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("read env file: %v", err)
	}
	if len(values[EnvKey]) != 32 {
		t.Fatalf("key = %q, want 32 hex chars", values[EnvKey])
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat env file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("env file mode = %v, want 0600", info.Mode().Perm())
	}
}
