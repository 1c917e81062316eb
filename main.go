package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kfarouk/breakdownr/internal/config"
	"github.com/kfarouk/breakdownr/internal/store"
	"github.com/kfarouk/breakdownr/internal/tui"
	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "breakdownr",
		Short: "breakdownr — machine breakdown downtime tracking",
		Long: "breakdownr tracks machine breakdown downtime for the filling and packing\n" +
			"lines (M1-M18). Run without arguments to open the dashboard.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(configPath)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ~/.config/breakdownr/config.yaml)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newImportCmd(&configPath))
	cmd.AddCommand(newExportCmd(&configPath))
	cmd.AddCommand(newReportCmd(&configPath))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "breakdownr %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// loadEnv resolves config and opens the record store, the shared setup of
// every subcommand.
func loadEnv(configPath string) (*config.Config, *store.Store, error) {
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve config path: %w", err)
		}
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	storePath := cfg.StorePath
	if storePath == "" {
		p, err := store.DefaultPath()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve store path: %w", err)
		}
		storePath = p
	}
	s, err := store.New(storePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, s, nil
}

func runTUI(configPath string) error {
	cfg, s, err := loadEnv(configPath)
	if err != nil {
		return err
	}

	app := tui.NewApp(s, *cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
