package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lazycamel/lazycamel/internal/config"
	"github.com/lazycamel/lazycamel/internal/logging"
	"github.com/lazycamel/lazycamel/internal/models"
	"github.com/lazycamel/lazycamel/internal/state"
	"github.com/lazycamel/lazycamel/internal/ui"
	"github.com/lazycamel/lazycamel/internal/ui/styles"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	mock      bool
	endpoint  string
	namespace string
	logLevel  string
}

func NewRoot() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:   "lazycamel",
		Short: "Terminal dashboard for Camel runtimes",
		Long:  "lazycamel connects to a Camel dev console gateway and shows live routes, REST services, metrics, inflight exchanges, events and variables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(opts)
		},
		SilenceUsage: true,
	}

	root.Flags().BoolVar(&opts.mock, "mock", false, "run against an in-process simulated engine")
	root.Flags().StringVarP(&opts.endpoint, "endpoint", "e", "", "configured endpoint name or ws:// URL")
	root.Flags().StringVarP(&opts.namespace, "namespace", "n", "", "JSON-RPC method namespace override")
	root.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newMockServerCmd(),
		newVersionCmd(),
	)

	return root
}

func runDashboard(opts rootOptions) error {
	cfg, _, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logger, logFile, err := logging.OpenFile(cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	uiState, err := state.Load()
	if err != nil {
		logger.Warn("ignoring saved UI state", "err", err)
		uiState = state.DefaultState()
	}

	var endpoint models.EndpointProfile
	if !opts.mock {
		target := opts.endpoint
		if target == "" && cfg.GetEndpoint(uiState.Endpoint) != nil {
			target = uiState.Endpoint
		}
		endpoint, err = cfg.Resolve(target, opts.namespace)
		if err != nil {
			return fmt.Errorf("%w (or run with --mock)", err)
		}
	}

	styles.ApplyTheme(cfg.UI.Theme)
	app := ui.NewApp(cfg, uiState, endpoint, opts.mock, logger)

	p := tea.NewProgram(app, tea.WithAltScreen())
	finalModel, err := p.Run()
	app.Close()
	if err != nil {
		return fmt.Errorf("running lazycamel: %w", err)
	}

	// Save state on exit
	if finalApp, ok := finalModel.(*ui.App); ok {
		if err := state.Save(finalApp.GetState()); err != nil {
			logger.Warn("saving UI state", "err", err)
		}
	}
	return nil
}
