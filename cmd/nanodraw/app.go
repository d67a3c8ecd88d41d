package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/nanodraw/draw"
	"github.com/kbukum/nanodraw/logger"
	"github.com/kbukum/nanodraw/observability"
	"github.com/kbukum/nanodraw/version"
)

// AppOption customizes App dependencies.
type AppOption func(*App)

// WithIO injects process output streams.
func WithIO(stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// WithLogger replaces the logger built from configuration.
func WithLogger(l *logger.Logger) AppOption {
	return func(a *App) { a.log = l }
}

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	stdout io.Writer
	stderr io.Writer
	log    *logger.Logger

	cfgFile    string
	verbose    bool
	jsonOutput bool
	cfg        *AppConfig

	gen  generateFlags
	wait bool
}

type generateFlags struct {
	prompt      string
	model       string
	aspectRatio string
	imageSize   string
	urls        []string
	webhook     string
	noProgress  bool
}

// NewApp builds the command tree.
func NewApp(opts ...AppOption) *App {
	a := &App{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "nanodraw",
		Short: "nanodraw - nano-banana image generation client",
		Long: `nanodraw generates images with the nano-banana draw service.

Configuration is read from nanodraw.yml or config.yml and the environment
(DRAW_API_KEY, DRAW_BASE_URL, ...).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	a.root.SetOut(a.stdout)
	a.root.SetErr(a.stderr)

	a.root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./nanodraw.yml, ./config.yml, ...)")
	a.root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")
	a.root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")

	a.root.AddCommand(
		a.newGenerateCommand(),
		a.newResultCommand(),
		a.newServeCommand(),
		a.newVersionCommand(),
	)
	return a
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.root.Execute()
}

// ExecuteContext runs the root command with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, used by tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

func (a *App) initConfig() error {
	cfg, err := loadAppConfig(a.cfgFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg

	if a.log == nil {
		logger.Init(cfg.Logging)
		a.log = logger.GetGlobalLogger()
	}
	logger.Register("draw", a.log.WithComponent("draw"))
	return nil
}

func (a *App) newClient() (*draw.Client, error) {
	return draw.New(a.cfg.Draw, draw.WithLogger(a.log.WithComponent("draw")))
}

// initObservability starts exporters when enabled and returns their shutdown.
func (a *App) initObservability(ctx context.Context) (observability.ShutdownFunc, error) {
	return observability.Init(ctx, a.cfg.Observability, a.cfg.Name, version.Version, a.cfg.Environment)
}

func (a *App) shutdownObservability(shutdown observability.ShutdownFunc) {
	if err := shutdown(context.Background()); err != nil {
		a.log.Warn("observability shutdown failed", logger.ErrorFields("observability.shutdown", err))
	}
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) printOutcome(out *draw.Outcome) error {
	if a.jsonOutput {
		return a.printJSON(out)
	}

	fmt.Fprintf(a.stdout, "task:     %s\n", out.ID)
	fmt.Fprintf(a.stdout, "status:   %s\n", out.Status)
	fmt.Fprintf(a.stdout, "progress: %.0f%%\n", out.Progress)

	images, err := out.Images()
	if err != nil {
		fmt.Fprintf(a.stdout, "results:  %s\n", out.Results)
		return nil
	}
	for _, img := range images {
		if img.URL != "" {
			fmt.Fprintf(a.stdout, "image:    %s\n", img.URL)
		}
	}
	return nil
}
