package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-web/internal/apiclient"
	"github.com/iliyamo/event-reservation-web/internal/config"
	"github.com/iliyamo/event-reservation-web/internal/database"
	"github.com/iliyamo/event-reservation-web/internal/logging"
	"github.com/iliyamo/event-reservation-web/internal/reservation"
	"github.com/iliyamo/event-reservation-web/internal/session"
	"github.com/iliyamo/event-reservation-web/internal/storage"
)

// env is the process surroundings.  openStore, when set, replaces the
// backend chosen by --store.
type env struct {
	stdout    io.Writer
	stderr    io.Writer
	stdin     io.Reader
	openStore func(ctx context.Context) (storage.Store, func(), error)
	config    *config.Config
}

// app is what every command runs against.
type app struct {
	env
	cfg     config.Config
	log     *zap.Logger
	session *session.Manager
	api     *apiclient.Client
	close   []func()
}

type globalFlags struct {
	api         string
	store       string
	sessionFile string
	logLevel    string
}

func run(ctx context.Context, args []string, e env) error {
	fs := pflag.NewFlagSet("eventctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(e.stderr)
	var g globalFlags
	fs.StringVar(&g.api, "api", "", "backend API root (default $API_BASE_URL or "+apiclient.DefaultBaseURL+")")
	fs.StringVar(&g.store, "store", "file", "session storage: file, redis or mysql")
	fs.StringVar(&g.sessionFile, "session-file", "", "session file for --store=file")
	fs.StringVar(&g.logLevel, "log-level", "", "log level (default $LOG_LEVEL or warn)")
	fs.Usage = func() { usage(e.stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		usage(e.stderr, fs)
		return errors.New("command required")
	}
	cmd, ok := lookup(rest[0])
	if !ok {
		return fmt.Errorf("unknown command %q, run 'eventctl --help'", rest[0])
	}

	a, err := newApp(ctx, e, g)
	if err != nil {
		return err
	}
	defer a.shutdown()
	return cmd.run(ctx, a, rest[1:])
}

func newApp(ctx context.Context, e env, g globalFlags) (*app, error) {
	var cfg config.Config
	if e.config != nil {
		cfg = *e.config
	} else {
		var err error
		if cfg, err = config.Load(); err != nil {
			return nil, err
		}
	}
	if g.api != "" {
		cfg.APIBaseURL = g.api
	}
	if g.sessionFile != "" {
		cfg.SessionFile = g.sessionFile
	}
	level := g.logLevel
	if level == "" {
		level = "warn"
	}
	logger, err := logging.New(cfg.Env, level)
	if err != nil {
		return nil, err
	}

	a := &app{env: e, cfg: cfg, log: logger}
	a.close = append(a.close, func() { _ = logger.Sync() })

	open := e.openStore
	if open == nil {
		open = func(ctx context.Context) (storage.Store, func(), error) { return openStore(ctx, g.store, cfg, logger) }
	}
	store, closeStore, err := open(ctx)
	if err != nil {
		a.shutdown()
		return nil, err
	}
	a.close = append(a.close, closeStore)

	a.session = session.NewManager(store, a, logger.Named("session"))
	a.session.Init(ctx)
	a.api = apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithTokenSource(a.session),
		apiclient.WithLogger(logger.Named("apiclient")))
	return a, nil
}

func openStore(ctx context.Context, kind string, cfg config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	switch strings.ToLower(kind) {
	case "file", "":
		path := cfg.SessionFile
		if path == "" {
			path = storage.DefaultFilePath()
		}
		logger.Debug("using session file", zap.String("path", path))
		return storage.NewFileStore(path), func() {}, nil
	case "redis":
		rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisStore(rdb, "eventctl"), func() { _ = rdb.Close() }, nil
	case "mysql":
		if err := cfg.RequireDB(); err != nil {
			return nil, nil, err
		}
		db, err := database.Open(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql: %w", err)
		}
		s := storage.NewSQLStore(db, "eventctl")
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, func() { _ = db.Close() }, nil
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q (want file, redis or mysql)", kind)
}

func (a *app) shutdown() {
	for i := len(a.close) - 1; i >= 0; i-- {
		a.close[i]()
	}
}

// Navigate reports where a browser would go next.
func (a *app) Navigate(location string) {
	fmt.Fprintf(a.stdout, "next: %s\n", location)
}

// Notify prints a notice; destructive ones go to stderr.
func (a *app) Notify(n reservation.Notice) {
	w := a.stdout
	if n.Variant == reservation.VariantDestructive {
		w = a.stderr
	}
	fmt.Fprintf(w, "%s: %s\n", n.Title, n.Description)
}

// fail reports a failed API call the way the web pages did: the message as
// a notice, plus a login redirect for auth failures.
func (a *app) fail(title string, err error) error {
	a.Notify(reservation.Notice{Title: title, Description: err.Error(), Variant: reservation.VariantDestructive})
	if apiclient.IsAuthFailure(err) {
		a.Navigate(session.LoginLocation)
	}
	return exitError{}
}
