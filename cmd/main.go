package main

import (
	"os"

	"github.com/chenBenjamin97/football-analyzer/pkg/config"
	"github.com/chenBenjamin97/football-analyzer/pkg/logging"
	"github.com/chenBenjamin97/football-analyzer/pkg/metrics"
	"github.com/chenBenjamin97/football-analyzer/pkg/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//app is everything a sub command needs, built once the configuration is read
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	metrics *metrics.Metrics
	reports *report.Store
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var configPath string
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "football-analyzer",
		Short:        "Tracks players and ball on football videos and measures ball possession",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file (default: ./config.yaml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(configPath)
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a.close()
	}

	rootCmd.AddCommand(analyzeCommand(a), serveCommand(a))
	return rootCmd
}

//setup reads the configuration and opens the shared resources
func (a *app) setup(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	//create missing directories from config file
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	reports, err := report.Open(cfg.Database.Path)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.metrics = metrics.New()
	a.reports = reports
	return nil
}

func (a *app) close() {
	if a.reports == nil {
		return
	}
	if err := a.reports.Close(); err != nil {
		a.log.WithError(err).Warn("Closing report database")
	}
}
