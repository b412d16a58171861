package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	infoModelPath string
	infoName      string
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show a trained model's configuration",
	Long:  `Print the wrapper options, pipeline steps, estimator parameters and classes of a saved model`,
	RunE: func(cmd *cobra.Command, args []string) error {
		clf, err := loadModel(infoModelPath, infoName)
		if err != nil {
			return err
		}

		cfg := clf.Config()
		fmt.Printf("📦 Model: %s\n", clf.Kind())
		fmt.Printf("  ngrams: %d\n", cfg.Ngrams)
		fmt.Printf("  tfidf: %v\n", cfg.Tfidf)
		fmt.Printf("  random_state: %d\n", cfg.RandomState)

		fmt.Printf("\n🔗 Pipeline:\n")
		for i, step := range clf.Pipeline().Steps() {
			fmt.Printf("  %d. %s: %T\n", i+1, step.Name, step.Stage)
		}
		if v := clf.Pipeline().Vectorizer(); v != nil {
			fmt.Printf("  vocabulary: %d terms\n", len(v.Vocabulary()))
		}

		fmt.Printf("\n⚙️  Estimator parameters:\n")
		params := clf.Pipeline().Estimator().Params()
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %v\n", name, params[name])
		}

		classes := clf.Classes()
		if len(classes) == 0 {
			fmt.Printf("\n⚠️  Model is not fitted\n")
			return nil
		}
		fmt.Printf("\n🏷️  Classes (%d): %v\n", len(classes), classes)
		return nil
	},
}

func init() {
	infoCmd.Flags().StringVarP(&infoModelPath, "model", "m", "textclf.model", "Model file")
	infoCmd.Flags().StringVar(&infoName, "name", "", "Read the named model from the configured store instead of --model")
}
