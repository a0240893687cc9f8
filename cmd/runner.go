package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bloomly/internal/auth"
	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/notify"
	"github.com/desertthunder/bloomly/internal/repositories"
	"github.com/desertthunder/bloomly/internal/services"
	"github.com/desertthunder/bloomly/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage, catalogs and the identity provider are built on first use so commands
// like "setup config" work without a database or credentials.
type Runner struct {
	config      *shared.Config
	configPath  string
	sessionPath string
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	plants      services.PlantCatalog
	tracks      services.TrackCatalog
	db          *sql.DB
	ownsDB      bool
	authOpts    []auth.Option
	openBrowser func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	SessionPath string
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Plants      services.PlantCatalog
	Tracks      services.TrackCatalog
	// DB, when set, is used as is and never closed by the Runner.
	DB          *sql.DB
	AuthOptions []auth.Option
	OpenBrowser func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.SessionPath == "" {
		if path, err := auth.DefaultSessionPath(); err == nil {
			opts.SessionPath = path
		} else {
			opts.SessionPath = ".bloomly-session.json"
		}
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		sessionPath: opts.SessionPath,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		plants:      opts.Plants,
		tracks:      opts.Tracks,
		db:          opts.DB,
		authOpts:    opts.AuthOptions,
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, loginCommand, logoutCommand, registerCommand, whoamiCommand,
		searchCommand, saveCommand, gardenCommand, tracksCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure runs before every command: it loads .env, the config file and the environment overrides.
//
// A missing config file keeps the current configuration.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if err := shared.LoadEnv(); err != nil {
		return ctx, err
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if path := cmd.String("session"); path != "" {
		r.sessionPath = path
	}

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
		r.config = config
		r.logger.Debug("config loaded", "path", r.configPath)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}
	r.config.ApplyEnv()
	return ctx, nil
}

// Close releases the database opened by the Runner.
func (r *Runner) Close() {
	if r.db != nil && r.ownsDB {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
		r.db = nil
	}
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenConfigured(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db, r.ownsDB = db, true
	return db, nil
}

func (r *Runner) favoriteStore() (*repositories.ProfileRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewProfileRepository(repositories.NewDocumentStore(db)), nil
}

func (r *Runner) plantCatalog() (services.PlantCatalog, error) {
	if r.plants != nil {
		return r.plants, nil
	}
	svc, err := services.NewPerenualService(r.config.Credentials.Perenual, r.httpClient)
	if err != nil {
		return nil, err
	}
	r.plants = svc
	return svc, nil
}

func (r *Runner) trackCatalog() (services.TrackCatalog, error) {
	if r.tracks != nil {
		return r.tracks, nil
	}
	svc, err := services.NewJamendoService(r.config.Credentials.Jamendo, r.httpClient)
	if err != nil {
		return nil, err
	}
	r.tracks = svc
	return svc, nil
}

// provider builds the identity provider. A non-empty redirect overrides the Google callback URL.
func (r *Runner) provider(redirect string) (*auth.Provider, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}

	opts := []auth.Option{auth.WithLogger(shared.WithLogger(r.logger, "component", "auth"))}
	if r.config.GoogleEnabled() {
		google, err := services.NewGoogleService(r.config.Credentials.Google, r.httpClient)
		if err != nil {
			return nil, err
		}
		if redirect != "" {
			google = google.WithRedirectURL(redirect)
		}
		opts = append(opts, auth.WithFederated(googleProvider, auth.NewGoogleClient(google)))
	}
	opts = append(opts, r.authOpts...)

	return auth.NewProvider(repositories.NewAccountRepository(db), opts...), nil
}

func (r *Runner) tokens() (*auth.Tokens, error) {
	return auth.NewTokens(r.config.Server.SessionSecret, r.config.Server.SessionDuration())
}

// currentUser returns the signed-in user from the session file.
func (r *Runner) currentUser() (*models.User, error) {
	tokens, err := r.tokens()
	if err != nil {
		return nil, err
	}
	return auth.LoadSession(r.sessionPath, tokens)
}

// optionalUser is [Runner.currentUser] with signed-out mapped to nil.
func (r *Runner) optionalUser() (*models.User, error) {
	user, err := r.currentUser()
	if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrTokenExpired) {
		return nil, nil
	}
	return user, err
}

// notifier prints notifications as status lines.
func (r *Runner) notifier() notify.Notifier {
	return notify.NotifierFunc(func(message string, kind notify.Kind) {
		prefix := "→"
		switch kind {
		case notify.KindSuccess:
			prefix = "✓"
		case notify.KindWarning:
			prefix = "⚠"
		case notify.KindError:
			prefix = "✗"
		}
		if err := r.writePlain("%s %s\n", prefix, message); err != nil {
			r.logger.Warn("failed to write notification", "error", err)
		}
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
