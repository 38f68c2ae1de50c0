package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/repositories"
	"github.com/desertthunder/spotpin/internal/services"
	"github.com/desertthunder/spotpin/internal/shared"
	"github.com/desertthunder/spotpin/internal/ui"
	"github.com/urfave/cli/v3"
)

// PickFunc shows an interactive choice. [ui.Pick] in production, scripted in tests.
type PickFunc func(ctx context.Context, title string, items []ui.Item) (ui.Item, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies not supplied through [RunnerOpts] are built lazily from the resolved config.
type Runner struct {
	config     *shared.Config
	configPath string
	store      models.ConfigStore
	service    services.Service
	db         *sql.DB
	ownsDB     bool
	logger     *log.Logger
	ownsLogger bool
	logFile    *os.File
	output     io.Writer
	input      *bufio.Reader
	pick       PickFunc
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      models.ConfigStore
	Service    services.Service
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Pick       PickFunc
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		service:    opts.Service,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
		pick:       opts.Pick,
	}
	if r.logger == nil {
		r.logger = shared.NewLogger(nil)
		r.ownsLogger = true
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	r.input = bufio.NewReader(opts.Input)
	if r.pick == nil {
		r.pick = terminalPick
	}
	return r
}

// Before resolves the config and prepares the logger and config store for the invoked command.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" && r.configPath == "" {
		r.configPath = path
	}
	if r.config == nil {
		config, err := shared.ResolveConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	if r.ownsLogger && r.config.Log.Path != "" && r.logFile == nil {
		logger, f, err := shared.NewTeeLogger(r.config.Log.Path)
		if err != nil {
			r.logger.Warn("log file unavailable, logging to stderr only", "path", r.config.Log.Path, "error", err)
		} else {
			r.logger, r.logFile = logger, f
		}
	}

	level := r.config.Log.LogLevel()
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	if r.store == nil {
		r.store = repositories.NewFileStore(r.config.Store.Dir)
	}
	return ctx, nil
}

// After releases the database and log file opened by the runner.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.ownsDB && r.db != nil {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
		r.db, r.ownsDB = nil, false
	}
	if r.logFile != nil {
		r.logFile.Close()
		r.logFile = nil
	}
	return nil
}

// spotify returns the remote service, authenticating on first use.
func (r *Runner) spotify(ctx context.Context) (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}

	svc, err := services.NewSpotifyService(r.config.Spotify, services.SpotifyOptions{Logger: r.logger})
	if err != nil {
		return nil, err
	}
	if err := svc.Authenticate(ctx); err != nil {
		return nil, err
	}
	r.service = svc
	return svc, nil
}

// database opens and migrates the SQLite database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db, r.ownsDB = db, true
	return db, nil
}

// history returns the sync history repository, or nil when the database is unavailable.
func (r *Runner) history() *repositories.SyncRunRepository {
	db, err := r.database()
	if err != nil {
		r.logger.Warn("sync history disabled", "error", err)
		return nil
	}
	return repositories.NewSyncRunRepository(db)
}

// trackCache returns the track metadata cache, or nil when the database is unavailable.
func (r *Runner) trackCache() *repositories.TrackRepository {
	db, err := r.database()
	if err != nil {
		r.logger.Debug("track cache disabled", "error", err)
		return nil
	}
	return repositories.NewTrackRepository(db)
}

// resolvePlaylist returns the --playlist flag or the registry default.
func (r *Runner) resolvePlaylist(cmd *cli.Command) (string, error) {
	if name := cmd.String("playlist"); name != "" {
		return name, nil
	}
	name, err := r.store.Default()
	if err != nil {
		return "", fmt.Errorf("%w (create one with 'playlist-create' or pass --playlist)", err)
	}
	return name, nil
}

// position reads a 1-based position flag and returns it 0-based.
func position(cmd *cli.Command) (int, error) {
	if !cmd.IsSet("position") {
		return 0, fmt.Errorf("%w: --position", shared.ErrMissingArgument)
	}
	pos := cmd.Int("position")
	if pos < 1 {
		return 0, fmt.Errorf("%w: %d (positions start at 1)", shared.ErrInvalidPosition, pos)
	}
	return int(pos) - 1, nil
}

// trackFlag normalizes the --track flag to a track URI.
func trackFlag(cmd *cli.Command) (models.TrackRef, error) {
	raw := cmd.String("track")
	if raw == "" {
		return "", fmt.Errorf("%w: --track", shared.ErrMissingArgument)
	}
	uri, err := shared.NormalizeTrackRef(raw)
	if err != nil {
		return "", err
	}
	return models.TrackRef(uri), nil
}

// confirm asks a yes/no question on the runner's input. Anything but y/yes is no.
func (r *Runner) confirm(format string, args ...any) (bool, error) {
	r.writePlain(format+" [y/N]: ", args...)
	line, err := r.input.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
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
