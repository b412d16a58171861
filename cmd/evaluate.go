package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redditscore/textclf/pkg/dataset"
	"github.com/redditscore/textclf/pkg/metrics"
	"github.com/redditscore/textclf/pkg/models"
	"github.com/redditscore/textclf/pkg/profiler"
)

var (
	evalTestRatio float64
	evalSeed      int64
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a model configuration on a held-out split",
	Long: `Split the dataset into training and test documents, train a fresh model
on the first part and report accuracy, precision, recall and F1 on the second.`,
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

		train, test, err := dataset.TrainTestSplit(ds, evalTestRatio, evalSeed)
		if err != nil {
			return err
		}

		clf, err := buildModel(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("🧪 Evaluating %s (ngrams=%d, tfidf=%v)\n", clf.Kind(), clf.Config().Ngrams, clf.Config().Tfidf)
		fmt.Printf("📊 %d training / %d test documents\n\n", train.Len(), test.Len())

		if err := prof.Time(profiler.StageFit, func() error { return clf.Fit(train.Docs, train.Labels) }); err != nil {
			return fmt.Errorf("training failed: %w", err)
		}

		pred, err := predictProfiled(prof, clf, test.Docs)
		if err != nil {
			return err
		}

		report, err := metrics.Evaluate(test.Labels, pred)
		if err != nil {
			return err
		}
		report.Print(os.Stdout)

		if prof != nil {
			fmt.Println()
			prof.Report(os.Stdout)
		}
		return nil
	},
}

// predictProfiled runs the two pipeline stages separately so each gets its own timing
func predictProfiled(prof *profiler.Profiler, clf models.Classifier, docs []string) ([]string, error) {
	if prof == nil {
		return clf.Predict(docs)
	}

	timer := prof.Start(profiler.StageVectorize)
	X, err := clf.Pipeline().Transform(docs)
	timer.Stop()
	if err != nil {
		return nil, err
	}

	timer = prof.Start(profiler.StagePredict)
	defer timer.Stop()
	return clf.Pipeline().Estimator().Predict(X)
}

func init() {
	addModelFlags(evaluateCmd)
	evaluateCmd.Flags().Float64Var(&evalTestRatio, "test-ratio", 0.25, "Share of documents held out for testing")
	evaluateCmd.Flags().Int64Var(&evalSeed, "seed", models.DefaultRandomState, "Shuffle seed for the split")
}
