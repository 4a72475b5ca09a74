package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/agenthands/geoparse/internal/app"
	"github.com/agenthands/geoparse/internal/config"
	"github.com/agenthands/geoparse/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath    string
	gazetteerPath string
	nerBackend    string
	logLevel      string
)

var rootCmd = &cobra.Command{
	Use:   "geoquery",
	Short: "Find and resolve place names in free text",
	Long: `geoquery extracts place-name mentions from English text and resolves each
one to a city, state or country in the gazetteer, tolerating misspellings,
casing, hyphenation and common abbreviations.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default $CONFIG_PATH or config/config.toml)")
	rootCmd.PersistentFlags().StringVar(&gazetteerPath, "gazetteer", "", "gazetteer file, overriding the configuration")
	rootCmd.PersistentFlags().StringVar(&nerBackend, "ner", "", "NER backend: prose, llm or off")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(queryCmd, replCmd, demoCmd, statsCmd, seedGraphCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if gazetteerPath != "" {
		cfg.Gazetteer.Source = "file"
		cfg.Gazetteer.Path = gazetteerPath
	}
	if nerBackend != "" {
		cfg.Extraction.NER = nerBackend
	}
	cfg.Log.Level = logLevel
	cfg.Log.Format = "text"
	return cfg, cfg.Validate()
}

func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, _, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return app.New(ctx, cfg, logger)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
