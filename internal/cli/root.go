// Package cli implements the formtree command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formtree/internal/config"
	"github.com/goliatone/go-formtree/internal/ctxlog"
	"github.com/goliatone/go-formtree/internal/prompt"
	"github.com/goliatone/go-formtree/pkg/compute"
	"github.com/goliatone/go-formtree/pkg/editor"
	"github.com/goliatone/go-formtree/pkg/mutate"
	"github.com/goliatone/go-formtree/pkg/store"
	"github.com/goliatone/go-formtree/pkg/tree"
)

// App holds state shared by every command.
type App struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	DB         string
	NoColor    bool

	cfg    config.Config
	logger *slog.Logger
	// driver answers interactive questions; tests replace it.
	driver prompt.Driver
}

// Option customises the root command.
type Option func(*App)

// WithPromptDriver replaces the terminal prompt driver.
func WithPromptDriver(d prompt.Driver) Option {
	return func(a *App) {
		if d != nil {
			a.driver = d
		}
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	app := &App{cfg: config.Default(), logger: ctxlog.Discard()}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	cmd := &cobra.Command{
		Use:          "formtree",
		Short:        "Inspect, edit and scaffold form schema trees",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Check a document and print its outline
  formtree validate form.json
  formtree tree form.json

  # Evaluate computed fields against values
  formtree eval form.json --values '{"qty": 2}'

  # Build a form from an OpenAPI operation and store it
  formtree scaffold --source api.yaml --operation createOrder --save
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&app.ConfigPath, "config", envOr("FORMTREE_CONFIG", ""), "Path to a YAML config file")
	flags.StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	flags.StringVar(&app.LogFormat, "log-format", "", "Log format (text|json)")
	flags.StringVar(&app.DB, "db", envOr("FORMTREE_DB", ""), "Path to the SQLite form store")
	flags.BoolVar(&app.NoColor, "no-color", os.Getenv("NO_COLOR") != "", "Disable coloured output")

	cmd.AddCommand(newValidateCmd(app))
	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newEvalCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDropCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newDuplicateCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newScaffoldCmd(app))
	cmd.AddCommand(newStoreCmd(app))
	cmd.AddCommand(newRefsCmd(app))
	return cmd
}

// setup loads the config file and applies flag overrides.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	if a.LogLevel != "" {
		cfg.Log.Level = a.LogLevel
	}
	if a.LogFormat != "" {
		cfg.Log.Format = a.LogFormat
	}
	if a.DB != "" {
		cfg.Database = a.DB
	}
	logger, err := config.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	if a.driver == nil {
		a.driver = prompt.NewSurveyDriver(cmd.OutOrStdout())
	}
	cmd.SetContext(ctxlog.WithLogger(contextOf(cmd), logger))
	logger.Debug("Configuration loaded", "config", a.ConfigPath, "database", cfg.Database)
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *App) evaluator() *compute.Evaluator {
	return compute.New(
		compute.WithStepBudget(a.cfg.Compute.StepBudget),
		compute.WithMaxDepth(a.cfg.Compute.MaxDepth),
		compute.WithLogger(a.logger),
	)
}

// session returns an editor session holding doc.
func (a *App) session(doc tree.Document) *editor.Session {
	s := editor.New(
		editor.WithEngine(mutate.New(mutate.WithLogger(a.logger))),
		editor.WithEvaluator(a.evaluator()),
		editor.WithLogger(a.logger),
	)
	s.Load(doc, doc.ID)
	return s
}

func (a *App) openStore(ctx context.Context) (*store.SQLite, error) {
	return store.Open(ctx, a.cfg.Database)
}

// readDocument loads and validates a document from path; "-" reads stdin.
func readDocument(cmd *cobra.Command, path string) (tree.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return tree.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := tree.DecodeDocument(data)
	if err != nil {
		return tree.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := tree.Validate(doc.Components); err != nil {
		return tree.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// writeDocument prints doc as JSON, or replaces path when inPlace is set.
func writeDocument(cmd *cobra.Command, path string, doc tree.Document, inPlace bool) error {
	data, err := tree.EncodeDocument(doc)
	if err != nil {
		return err
	}
	if inPlace && path != "-" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
