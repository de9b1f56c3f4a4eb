package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/heatload/cmd/app"
	"github.com/Agrid-Dev/heatload/internal/builder"
	"github.com/Agrid-Dev/heatload/internal/ports"
	"github.com/Agrid-Dev/heatload/internal/report"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// cli carries what every command shares once the persistent flags are parsed.
type cli struct {
	in  io.Reader
	out io.Writer

	configPath string
	envFile    string
	verbose    bool

	cfg    app.Config
	logger *zap.Logger
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:          "heatload",
		Short:        "Heating load calculation (based on DIN EN 12831)",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = c.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runInteractive(cmd.Context())
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVar(&c.configPath, "config", "heatload.yaml", "application config (.yaml/.yml/.json); missing file uses defaults")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before the config")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(c.reportCmd(), c.serveCmd(), c.historyCmd())
	return root
}

func (c *cli) init() error {
	loaded, err := app.LoadDotEnv(c.envFile)
	if err != nil {
		return err
	}
	cfg, err := app.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	app.ApplyEnvOverrides(&cfg)
	c.cfg = cfg

	logger, err := app.NewLogger(cfg.Log, c.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger
	c.logger.Debug("config loaded",
		zap.String("config", c.configPath),
		zap.Bool("dotenv", loaded),
		zap.String("project_id", cfg.ProjectID),
	)
	return nil
}

// runInteractive is the terminal flow: pick file or prompts, then print
// the text report.
func (c *cli) runInteractive(ctx context.Context) error {
	p := builder.NewPrompter(c.in, c.out)
	p.Printf("Heating load calculation (based on DIN EN 12831)\n")

	fromFile, err := p.YesNo("Do you want to load the room configuration from a file?")
	if err != nil {
		return err
	}
	var src ports.BuildingSource
	if fromFile {
		src = builder.PromptFileSource{Prompter: p, DefaultPath: c.cfg.Building.Path, Logger: c.logger}
	} else {
		src = builder.InteractiveSource{Prompter: p}
	}

	b, err := src.Build(ctx)
	if err != nil {
		return err
	}
	p.Printf("\n")
	return report.WriteText(c.out, report.Summarize(c.cfg.ProjectID, b))
}
