package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redditscore/textclf/pkg/models"
	"github.com/redditscore/textclf/pkg/profiler"
	"github.com/redditscore/textclf/pkg/store"
)

var (
	predictModelPath  string
	predictName       string
	predictFiles      []string
	predictProfile    bool
	predictPreprocess string
)

var predictCmd = &cobra.Command{
	Use:   "predict [text...]",
	Short: "Predict labels for texts or files",
	Long: `Load a trained model and print the predicted label of each text argument
and each --file. With neither, one document per line is read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var prof *profiler.Profiler
		if predictProfile {
			prof = profiler.New()
		}

		var clf models.Classifier
		err := prof.Time(profiler.StageLoad, func() error {
			var err error
			clf, err = loadModel(predictModelPath, predictName)
			return err
		})
		if err != nil {
			return err
		}

		docs, sources, err := collectDocuments(args, predictFiles)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return fmt.Errorf("no documents to classify")
		}
		if docs, err = preprocessDocs(predictPreprocess, docs); err != nil {
			return err
		}

		labels, err := predictProfiled(prof, clf, docs)
		if err != nil {
			return err
		}

		for i, label := range labels {
			fmt.Printf("%s\t%s\n", label, sources[i])
		}

		if prof != nil {
			fmt.Println()
			prof.Report(os.Stdout)
		}
		return nil
	},
}

// loadModel reads a model from path, or from the configured store when name is set
func loadModel(path, name string) (models.Classifier, error) {
	if name == "" {
		return models.Load(path)
	}

	s, err := store.Open(appConfig.Storage)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return s.Get(context.Background(), name)
}

// collectDocuments gathers documents with a short description of where each came from
func collectDocuments(texts, files []string) ([]string, []string, error) {
	var docs, sources []string

	for _, text := range texts {
		docs = append(docs, text)
		sources = append(sources, preview(text))
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, string(data))
		sources = append(sources, path)
	}

	if len(texts) == 0 && len(files) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			docs = append(docs, line)
			sources = append(sources, preview(line))
		}
		if err := scanner.Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	return docs, sources, nil
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return text
}

func init() {
	predictCmd.Flags().StringVarP(&predictModelPath, "model", "m", "textclf.model", "Model file")
	predictCmd.Flags().StringVar(&predictName, "name", "", "Load the named model from the configured store instead of --model")
	predictCmd.Flags().StringArrayVarP(&predictFiles, "file", "f", nil, "Classify the contents of this file (repeatable)")
	predictCmd.Flags().BoolVar(&predictProfile, "profile", false, "Print stage timings")
	predictCmd.Flags().StringVar(&predictPreprocess, "preprocess", "", "Lua script applied to every document (use the one the model was trained with)")
}
