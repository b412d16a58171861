package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/redditscore/textclf/pkg/config"
	"github.com/redditscore/textclf/pkg/models"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Generate and manage textclf configuration files`,
}

var configGenCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Long:  `Generate a default configuration file with all options`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) > 0 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil {
			overwrite, _ := cmd.Flags().GetBool("force")
			if !overwrite {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}
		}

		if err := config.DefaultConfig().SaveConfig(path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("✅ Configuration file generated: %s\n", path)
		fmt.Printf("🚀 Use 'textclf train --config %s' to use the configuration\n", path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Validate configuration file",
	Long:  `Validate a configuration file and check that its model section builds a model`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(args[0])
		if err != nil {
			return fmt.Errorf("❌ Configuration validation failed: %w", err)
		}

		// Catches estimator parameters the chosen model does not accept
		if _, err := models.New(models.Kind(cfg.Model.Type), cfg.Model.ModelOptions(), cfg.Model.Params); err != nil {
			return fmt.Errorf("❌ Model section is invalid: %w", err)
		}

		fmt.Printf("✅ Configuration is valid: %s\n", args[0])
		printConfig(cfg)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  `Display the configuration after applying the config file and environment overrides`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			fmt.Printf("Configuration: %s\n", configPath)
		} else {
			fmt.Printf("Default Configuration:\n")
		}
		printConfig(appConfig)
		return nil
	},
}

func printConfig(cfg *config.Config) {
	fmt.Printf("\n📦 Model:\n")
	fmt.Printf("  Type: %s\n", cfg.Model.Type)
	fmt.Printf("  Ngrams: %d\n", cfg.Model.Ngrams)
	fmt.Printf("  Tfidf: %v\n", cfg.Model.Tfidf)
	fmt.Printf("  Random state: %d\n", cfg.Model.RandomState)

	keys := make([]string, 0, len(cfg.Model.Params))
	for k := range cfg.Model.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %v\n", k, cfg.Model.Params[k])
	}

	fmt.Printf("\n💾 Storage:\n")
	fmt.Printf("  Backend: %s\n", cfg.Storage.Backend)
	if cfg.Storage.Backend == "redis" {
		fmt.Printf("  Redis: %s (db %d, prefix %s)\n", cfg.Storage.Redis.URL, cfg.Storage.Redis.DatabaseNum, cfg.Storage.Redis.KeyPrefix)
		if cfg.Storage.Redis.TTL != "" {
			fmt.Printf("  TTL: %s\n", cfg.Storage.Redis.TTL)
		}
	} else {
		fmt.Printf("  Directory: %s\n", cfg.Storage.Dir)
	}

	fmt.Printf("\n📝 Logging:\n")
	fmt.Printf("  Level: %s\n", cfg.Logging.Level)
	fmt.Printf("  Format: %s\n", cfg.Logging.Format)
}

func init() {
	configCmd.AddCommand(configGenCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configGenCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
