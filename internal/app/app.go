package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/five82/companion/internal/api"
	"github.com/five82/companion/internal/config"
	"github.com/five82/companion/internal/jar"
	"github.com/five82/companion/internal/logging"
	"github.com/five82/companion/internal/prefs"
	"github.com/five82/companion/internal/query"
	"github.com/five82/companion/internal/session"
	"github.com/five82/companion/internal/ui"
	"github.com/five82/companion/pkg/browser"
)

// Options configure the companion application.
type Options struct {
	ConfigPath string
	APIURL     string // overrides api_url from the config file
	Version    string

	// Opener shows the consent URL. Defaults to the system browser.
	Opener session.Opener
}

// Env is the wired set of dependencies shared by the dashboard and the
// account subcommands.
type Env struct {
	Config  config.Config
	Prefs   prefs.Prefs
	Log     logrus.FieldLogger
	Client  *api.Client
	Cache   *query.Cache
	Session *session.Store

	closers []io.Closer
}

// Open loads configuration and builds the API client, cookie jar, cache and
// session store.
func Open(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if u := strings.TrimSpace(opts.APIURL); u != "" {
		cfg.APIURL = u
	}

	env := &Env{Config: cfg}

	logger, closer, err := logging.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		logger = logging.Null()
	} else {
		env.closers = append(env.closers, closer)
	}
	env.Log = logger

	cookies, err := jar.Open(cfg.DataDir)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("open cookie jar: %w", err)
	}
	env.closers = append(env.closers, cookies)

	version := opts.Version
	if version == "" {
		version = "dev"
	}
	client, err := api.NewClient(cfg.APIURL,
		api.WithJar(cookies),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
		api.WithUserAgent("companion/"+version),
	)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	env.Client = client

	opener := opts.Opener
	if opener == nil {
		opener = browser.Open
	}
	env.Cache = query.New(query.WithLogger(logger))
	sessionCookie := cookies.Session(client.BaseURL(), cfg.SessionCookie)
	env.Session = session.New(client, env.Cache,
		session.WithCredentials(sessionCookie),
		session.WithOpener(opener),
		session.WithLogger(logger),
	)

	env.Prefs, _ = prefs.Load(cfg.PrefsPath())

	logger.WithFields(logrus.Fields{
		"api_url":        cfg.APIURL,
		"config":         cfg.Path,
		"version":        version,
		"stored_session": sessionCookie.Present(),
	}).Debug("environment ready")
	return env, nil
}

// Close releases the log file and the cookie database.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Run boots the dashboard until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	env.Log.Info("starting dashboard")
	return ui.Run(env.uiOptions(ctx))
}

func (e *Env) uiOptions(ctx context.Context) ui.Options {
	return ui.Options{
		Context:      ctx,
		Backend:      e.Client,
		Cache:        e.Cache,
		Session:      e.Session,
		Logger:       e.Log,
		ThemeName:    e.Prefs.Theme,
		DefaultTab:   e.Prefs.DefaultTab,
		PrefsPath:    e.Config.PrefsPath(),
		CallbackPort: e.Config.CallbackPort,
	}
}
