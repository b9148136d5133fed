// Package main provides the hiring_agent command: the HTTP API server, the
// evaluation worker and one-shot evaluation and coaching commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-coach/internal/config"
	"github.com/jonathan/hiring-coach/internal/ingestion"
	"github.com/jonathan/hiring-coach/internal/logger"
)

var (
	configPath string
	verbose    bool
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "hiring_agent",
	Short: "Hiring evaluation and career coaching",
	Long: "hiring_agent evaluates candidates from a resume and an interview transcript, " +
		"and coaches job seekers with CV gap analysis, job-fit reports and practice interviews.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print human-readable summaries to stderr")
}

// loadConfig reads configuration and initializes the logger before any command runs.
func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logger.Init(cfg.Log)
	if err := ingestion.SetPDFLicense(os.Getenv("UNIDOC_LICENSE_API_KEY")); err != nil {
		logger.Warn().Err(err).Msg("PDF extraction is unlicensed")
	}
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
