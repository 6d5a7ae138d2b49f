// Package radiocontrol implements the radiocontrol command: station
// inventory, daily reviews, backups and the change history over the local
// store.
package radiocontrol

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
	"github.com/louisbranch/radiocontrol/internal/platform/i18n/catalog"
	"github.com/louisbranch/radiocontrol/internal/services/radio/app"
	"github.com/louisbranch/radiocontrol/internal/services/radio/auth"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage/sqlite"
	"golang.org/x/text/message"
)

// WithTimeout bounds ctx by timeout. Zero or negative means no bound.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// usageError reports a malformed command line.
type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func usageErrorf(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	var usageErr usageError
	if errors.As(err, &usageErr) {
		return apperrors.ExitInvalidInput
	}
	return apperrors.CodeOf(err).ExitCode()
}

// ErrorMessage renders err for the user in locale. Domain errors use the
// localized catalog; anything else keeps its own text.
func ErrorMessage(err error, locale string) string {
	msg := err.Error()
	if apperrors.CodeOf(err) != apperrors.CodeUnknown {
		msg = apperrors.LocalizedMessage(err, locale)
	}
	return catalog.Default().Printer(locale).Sprintf("cli.error", msg)
}

// runner carries the per-invocation dependencies of every subcommand.
type runner struct {
	cfg    Config
	svc    *app.Service
	out    io.Writer
	errOut io.Writer
	p      *message.Printer
	now    func() time.Time
}

// Run executes the radiocontrol command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if len(cfg.Args) == 0 {
		return usageErrorf("a command is required")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "open store", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintf(errOut, "Error: close store: %v\n", closeErr)
		}
	}()

	sessions, err := auth.NewSessionManager(auth.SessionConfig{
		Path:   cfg.SessionPath,
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
	})
	if err != nil {
		return err
	}
	svc, err := app.New(app.Config{
		Store:        store,
		Authorizer:   auth.NewAuthorizer(auth.DefaultConfig(cfg.Password), nil),
		Sessions:     sessions,
		HistoryLimit: cfg.HistoryLimit,
	})
	if err != nil {
		return err
	}

	r := &runner{
		cfg:    cfg,
		svc:    svc,
		out:    out,
		errOut: errOut,
		p:      catalog.Default().Printer(cfg.Locale),
		now:    time.Now,
	}
	return r.dispatch(ctx, cfg.Args[0], cfg.Args[1:])
}

func (r *runner) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return r.login(ctx, args)
	case "logout":
		return r.logout(ctx)
	}

	ctx, session, err := r.svc.Authenticate(ctx)
	if err != nil {
		return err
	}
	switch command {
	case "whoami":
		return r.whoami(ctx, session)
	case "station":
		return r.station(ctx, args)
	case "departments":
		return r.departments(ctx)
	case "review":
		return r.review(ctx, args)
	case "stats":
		return r.stats(ctx, args)
	case "summary":
		return r.summary(ctx, args)
	case "export":
		return r.export(ctx, args)
	case "import":
		return r.importData(ctx, args)
	case "history":
		return r.history(ctx, args)
	default:
		return usageErrorf("unknown command %q", command)
	}
}

// flags returns a subcommand flag set that reports errors instead of exiting.
func (r *runner) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.errOut)
	return fs
}

func (r *runner) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError{msg: err.Error()}
	}
	if fs.NArg() > 0 {
		return usageErrorf("%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return nil
}

func (r *runner) today() string {
	return r.now().Format(storage.DateLayout)
}

func (r *runner) login(ctx context.Context, args []string) error {
	fs := r.flags("login")
	username := fs.String("user", "", "username")
	password := fs.String("password", "", "password")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	session, err := r.svc.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	if r.cfg.JSONOutput {
		return r.writeJSON(newSessionView(session, r.cfg.SessionTTL, r.authzPermissions(ctx, session)))
	}
	r.println("cli.login.ok", session.Username, string(session.Role))
	return nil
}

func (r *runner) logout(ctx context.Context) error {
	if _, err := r.svc.Logout(ctx); err != nil {
		return err
	}
	r.println("cli.logout.ok")
	return nil
}

func (r *runner) whoami(ctx context.Context, session auth.Session) error {
	perms := r.authzPermissions(ctx, session)
	view := newSessionView(session, r.cfg.SessionTTL, perms)
	if r.cfg.JSONOutput {
		return r.writeJSON(view)
	}
	r.println("cli.whoami", view.Username, view.Role, view.ExpiresAt)
	r.println("cli.permissions", joinPermissions(perms))
	return nil
}

func (r *runner) authzPermissions(ctx context.Context, session auth.Session) []auth.Permission {
	set, err := r.svc.Permissions(withSession(ctx, session))
	if err != nil {
		return nil
	}
	return set.List()
}

func (r *runner) println(key string, args ...any) {
	fmt.Fprintln(r.out, r.p.Sprintf(key, args...))
}
