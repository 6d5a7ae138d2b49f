package radiocontrol

import (
	"flag"
	"fmt"
	"io"
	"time"

	entrypoint "github.com/louisbranch/radiocontrol/internal/platform/cmd"
	"github.com/louisbranch/radiocontrol/internal/platform/i18n/catalog"
)

// Config holds radiocontrol command configuration.
type Config struct {
	DBPath        string        `env:"RADIOCONTROL_DB_PATH" envDefault:"data/radiocontrol.db"`
	SessionPath   string        `env:"RADIOCONTROL_SESSION_PATH" envDefault:"data/session.jwt"`
	SessionSecret string        `env:"RADIOCONTROL_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"RADIOCONTROL_SESSION_TTL" envDefault:"12h"`
	Password      string        `env:"RADIOCONTROL_PASSWORD"`
	Locale        string        `env:"RADIOCONTROL_LOCALE" envDefault:"es-PE"`
	HistoryLimit  int           `env:"RADIOCONTROL_HISTORY_LIMIT" envDefault:"1000"`
	Timeout       time.Duration `env:"RADIOCONTROL_TIMEOUT" envDefault:"30s"`
	JSONOutput    bool
	// Args is the subcommand and its arguments.
	Args []string
}

const usage = `Usage: radiocontrol [global flags] <command> [flags]

Commands:
  login -user U -password P    start a session
  logout                       end the session
  whoami                       show the session user and permissions
  station add|update|delete|get|list
  departments                  list departments
  review save|delete|list
  stats [-date D]              review progress for a date
  summary [-date D]            review progress per department
  export [-out FILE]           write a JSON backup ("-" for stdout)
  import -in FILE              replace all data with a JSON backup
  history [-action A] [-entity E] [-search S] [-limit N] [-out FILE | -export]

Global flags:
`

// ParseConfig parses env defaults and global flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the sqlite database (default: RADIOCONTROL_DB_PATH or data/radiocontrol.db)")
	fs.StringVar(&cfg.SessionPath, "session-path", cfg.SessionPath, "path to the session token file (default: RADIOCONTROL_SESSION_PATH or data/session.jwt)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "output locale (default: RADIOCONTROL_LOCALE or es-PE)")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout (0 disables)")
	fs.Usage = func() { printUsage(fs.Output(), fs) }
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	if len(cfg.Args) == 0 {
		return Config{}, usageErrorf("a command is required")
	}
	cfg.Locale = catalog.Default().Match(cfg.Locale)
	return cfg, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, usage)
	fs.PrintDefaults()
}
