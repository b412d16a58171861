package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/redditscore/textclf/pkg/dataset"
	"github.com/redditscore/textclf/pkg/models"
	"github.com/redditscore/textclf/pkg/profiler"
	"github.com/redditscore/textclf/pkg/store"
)

var (
	trainDataDir     string
	trainCSV         string
	trainTextCol     string
	trainLabelCol    string
	trainModelType   string
	trainNgrams      int
	trainTfidf       bool
	trainRandomState int64
	trainParams      []string
	trainOut         string
	trainName        string
	trainProfile     bool
	trainPreprocess  string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a text classifier",
	Long: `Train a classifier on a labelled dataset and save it.

The dataset is either a directory whose sub-directories name the labels
(--data) or a CSV file with text and label columns (--csv). The model is
written to --out, or to the configured store under --name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var prof *profiler.Profiler
		if trainProfile {
			prof = profiler.New()
		}

		var ds *dataset.Dataset
		err := prof.Time(profiler.StageLoad, func() error {
			var err error
			ds, err = loadDataset(trainDataDir, trainCSV, trainTextCol, trainLabelCol)
			return err
		})
		if err != nil {
			return err
		}

		clf, err := buildModel(cmd)
		if err != nil {
			return err
		}

		cfg := clf.Config()
		fmt.Printf("🧠 textclf training\n")
		fmt.Printf("═══════════════════════════════════════\n")
		fmt.Printf("📦 Model: %s (ngrams=%d, tfidf=%v)\n", clf.Kind(), cfg.Ngrams, cfg.Tfidf)
		fmt.Printf("📊 Documents: %d across %d labels\n", ds.Len(), len(ds.Counts()))

		start := time.Now()
		if err := prof.Time(profiler.StageFit, func() error { return clf.Fit(ds.Docs, ds.Labels) }); err != nil {
			return fmt.Errorf("training failed: %w", err)
		}
		duration := time.Since(start)

		accuracy, err := clf.Score(ds.Docs, ds.Labels)
		if err != nil {
			return err
		}

		var dest string
		err = prof.Time(profiler.StageSave, func() error {
			var err error
			dest, err = saveModel(clf, trainOut, trainName)
			return err
		})
		if err != nil {
			return err
		}

		fmt.Printf("\n🎉 Training complete in %v\n", duration.Round(time.Millisecond))
		fmt.Printf("🎯 Training accuracy: %.3f\n", accuracy)
		fmt.Printf("💾 Model saved to: %s\n", dest)

		if prof != nil {
			fmt.Println()
			prof.Report(os.Stdout)
		}
		return nil
	},
}

// loadDataset reads labelled documents from a directory or a CSV file and runs the preprocess script
func loadDataset(dir, csvPath, textCol, labelCol string) (*dataset.Dataset, error) {
	var (
		ds  *dataset.Dataset
		err error
	)
	switch {
	case dir != "" && csvPath != "":
		return nil, fmt.Errorf("--data and --csv are mutually exclusive")
	case dir != "":
		ds, err = dataset.LoadDir(dir)
	case csvPath != "":
		ds, err = dataset.LoadCSV(csvPath, textCol, labelCol)
	default:
		return nil, fmt.Errorf("one of --data or --csv must be specified")
	}
	if err != nil {
		return nil, err
	}

	ds.Docs, err = preprocessDocs(trainPreprocess, ds.Docs)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// buildModel creates an untrained model from the config file, with explicit flags taking precedence
func buildModel(cmd *cobra.Command) (models.Classifier, error) {
	mc := appConfig.Model
	flags := cmd.Flags()

	if flags.Changed("model-type") {
		mc.Type = trainModelType
	}
	opts := mc.ModelOptions()
	if flags.Changed("ngrams") {
		opts.Ngrams = trainNgrams
	}
	if flags.Changed("tfidf") {
		opts.Tfidf = trainTfidf
	}
	if flags.Changed("random-state") {
		opts.RandomState = trainRandomState
	}

	params := make(map[string]any, len(mc.Params))
	for k, v := range mc.Params {
		params[k] = v
	}
	cliParams, err := parseParams(trainParams)
	if err != nil {
		return nil, err
	}
	for k, v := range cliParams {
		params[k] = v
	}

	return models.New(models.Kind(mc.Type), opts, params)
}

// saveModel writes to path, or to the configured store when name is set
func saveModel(clf models.Classifier, path, name string) (string, error) {
	if name == "" {
		if err := models.Save(clf, path); err != nil {
			return "", err
		}
		return path, nil
	}

	s, err := store.Open(appConfig.Storage)
	if err != nil {
		return "", err
	}
	defer s.Close()

	if err := s.Put(context.Background(), name, clf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%s store)", name, appConfig.Storage.Backend), nil
}

// addModelFlags registers the model construction flags shared by train and evaluate
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&trainDataDir, "data", "d", "", "Dataset directory (one sub-directory per label)")
	cmd.Flags().StringVar(&trainCSV, "csv", "", "Dataset CSV file")
	cmd.Flags().StringVar(&trainTextCol, "text-col", "text", "CSV column holding the document text")
	cmd.Flags().StringVar(&trainLabelCol, "label-col", "label", "CSV column holding the label")
	cmd.Flags().StringVarP(&trainModelType, "model-type", "t", "", "Model type: multinomial, bernoulli, svm")
	cmd.Flags().IntVarP(&trainNgrams, "ngrams", "n", 1, "Highest word n-gram order")
	cmd.Flags().BoolVar(&trainTfidf, "tfidf", true, "Use tf-idf weighting instead of raw counts")
	cmd.Flags().Int64Var(&trainRandomState, "random-state", models.DefaultRandomState, "Random seed")
	cmd.Flags().StringArrayVarP(&trainParams, "param", "p", nil, "Estimator parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&trainProfile, "profile", false, "Print stage timings")
	cmd.Flags().StringVar(&trainPreprocess, "preprocess", "", "Lua script defining preprocess(text), applied to every document")
}

func init() {
	addModelFlags(trainCmd)
	trainCmd.Flags().StringVarP(&trainOut, "out", "o", "textclf.model", "Model output file")
	trainCmd.Flags().StringVar(&trainName, "name", "", "Store the model under this name in the configured store instead of --out")
}
