package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redditscore/textclf/pkg/store"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage models in the configured store",
	Long:  `List and delete named models kept by the file or Redis storage backend`,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(appConfig.Storage)
		if err != nil {
			return err
		}
		defer s.Close()

		names, err := s.List(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("📚 %d model(s) in %s store\n", len(names), appConfig.Storage.Backend)
		for _, name := range names {
			fmt.Printf("  - %s\n", name)
		}
		return nil
	},
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete <name>...",
	Short: "Delete stored models",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(appConfig.Storage)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, name := range args {
			if err := s.Delete(context.Background(), name); err != nil {
				return err
			}
			fmt.Printf("🗑️  Deleted %s\n", name)
		}
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDeleteCmd)
}
