package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/saucedemo-e2e/config"
	"github.com/angeloszaimis/saucedemo-e2e/pkg/logger"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile string
	baseURL string

	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "saucectl",
		Short: "Probe and smoke-test the Saucedemo storefront",
		Long: `saucectl runs quick checks against the Saucedemo storefront outside the
ginkgo e2e suite.

Examples:
  # check that the storefront answers
  saucectl probe / /inventory.html

  # log in through a real browser and write the step log
  saucectl smoke --config ./config/config.yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default ./config/config.yaml or ./config.yaml)")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "override the configured application URL")

	root.AddCommand(newProbeCmd(a), newSmokeCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadFile(a.cfgFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if a.baseURL != "" {
		a.cfg.App.BaseURL = a.baseURL
	}

	a.log = logger.NewSlog(cmd.ErrOrStderr(), a.cfg.Logging.Level, a.cfg.App.Environment)
	return nil
}
