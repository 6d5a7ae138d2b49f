// Package sessionkey generates the HS256 key that signs radiocontrol sessions.
package sessionkey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvKey is the variable the generated key is assigned to.
const EnvKey = "RADIOCONTROL_SESSION_SECRET"

// Config holds configuration for session key generation.
type Config struct {
	Bytes int
	// EnvFile, when set, receives the key instead of stdout. Other variables
	// in the file are preserved.
	EnvFile string
	Force   bool
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: 32}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes (default: 32)")
	fs.StringVar(&cfg.EnvFile, "env-file", "", "dotenv file to store the key in (default: print to stdout)")
	fs.BoolVar(&cfg.Force, "force", false, "replace an existing key in -env-file")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates the key and writes it to out or to cfg.EnvFile.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if cfg.Bytes < 16 {
		return errors.New("bytes must be at least 16")
	}
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	key := hex.EncodeToString(buf)

	path := strings.TrimSpace(cfg.EnvFile)
	if path == "" {
		_, err := fmt.Fprintf(out, "%s=%s\n", EnvKey, key)
		return err
	}
	return writeEnvFile(path, key, cfg.Force, out)
}

func writeEnvFile(path, key string, force bool, out io.Writer) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", path, err)
		}
		values = map[string]string{}
	}
	if existing := strings.TrimSpace(values[EnvKey]); existing != "" && !force {
		return fmt.Errorf("%s already set in %s; use -force to replace it", EnvKey, path)
	}
	values[EnvKey] = key
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("restrict %s: %w", path, err)
	}
	_, err = fmt.Fprintf(out, "%s written to %s\n", EnvKey, path)
	return err
}
