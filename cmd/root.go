package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redditscore/textclf/pkg/config"
	"github.com/redditscore/textclf/pkg/preprocess"
)

var (
	configPath string
	logLevel   string

	// appConfig is loaded before every command runs
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "textclf",
	Short: "textclf - n-gram text classifiers",
	Long: `textclf trains and applies text classifiers built from a word n-gram
vectorizer (raw counts or tf-idf) and a multinomial naive Bayes, Bernoulli
naive Bayes or support vector estimator.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = strings.ToLower(logLevel)
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		appConfig = cfg
		setupLogging(cfg.Logging)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// setupLogging installs the default slog handler on stderr
func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// parseParams turns repeated key=value flags into a parameter map
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", pair)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}

// preprocessDocs rewrites docs with the Lua script at path; an empty path leaves them unchanged
func preprocessDocs(path string, docs []string) ([]string, error) {
	if path == "" {
		return docs, nil
	}

	script, err := preprocess.LoadFile(path)
	if err != nil {
		return nil, err
	}
	defer script.Close()

	return script.ApplyAll(docs)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(configCmd)
}
