// Package metrics scores predicted labels against the truth.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ClassStats holds the per-label scores
type ClassStats struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarises a labelled evaluation
type Report struct {
	Labels   []string
	Accuracy float64
	Classes  []ClassStats

	// Confusion[i][j] counts documents of Labels[i] predicted as Labels[j]
	Confusion *mat.Dense

	MacroF1 float64
}

func checkLengths(truth, pred []string) error {
	if len(truth) != len(pred) {
		return fmt.Errorf("label count mismatch: %d true, %d predicted", len(truth), len(pred))
	}
	if len(truth) == 0 {
		return fmt.Errorf("no labels to score")
	}
	return nil
}

// Accuracy returns the share of predictions equal to the truth
func Accuracy(truth, pred []string) (float64, error) {
	if err := checkLengths(truth, pred); err != nil {
		return 0, err
	}
	correct := 0
	for i := range truth {
		if truth[i] == pred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(truth)), nil
}

// Evaluate builds the confusion matrix and per-label scores
func Evaluate(truth, pred []string) (*Report, error) {
	if err := checkLengths(truth, pred); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i := range truth {
		seen[truth[i]] = true
		seen[pred[i]] = true
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	n := len(labels)
	confusion := mat.NewDense(n, n, nil)
	for i := range truth {
		r, c := index[truth[i]], index[pred[i]]
		confusion.Set(r, c, confusion.At(r, c)+1)
	}

	report := &Report{Labels: labels, Confusion: confusion}
	report.Accuracy = mat.Trace(confusion) / float64(len(truth))

	var f1Sum float64
	for i, label := range labels {
		tp := confusion.At(i, i)
		predicted := mat.Sum(confusion.ColView(i))
		actual := mat.Sum(confusion.RowView(i))

		stats := ClassStats{Label: label, Support: int(actual)}
		if predicted > 0 {
			stats.Precision = tp / predicted
		}
		if actual > 0 {
			stats.Recall = tp / actual
		}
		if stats.Precision+stats.Recall > 0 {
			stats.F1 = 2 * stats.Precision * stats.Recall / (stats.Precision + stats.Recall)
		}
		f1Sum += stats.F1
		report.Classes = append(report.Classes, stats)
	}
	report.MacroF1 = f1Sum / float64(n)

	return report, nil
}

// Print writes the report as an aligned table
func (r *Report) Print(w io.Writer) {
	width := len("label")
	for _, label := range r.Labels {
		if len(label) > width {
			width = len(label)
		}
	}

	fmt.Fprintf(w, "%-*s %10s %10s %10s %8s\n", width, "label", "precision", "recall", "f1", "support")
	fmt.Fprintln(w, strings.Repeat("─", width+42))
	for _, c := range r.Classes {
		fmt.Fprintf(w, "%-*s %10.3f %10.3f %10.3f %8d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintln(w, strings.Repeat("─", width+42))
	fmt.Fprintf(w, "%-*s %32.3f\n", width, "accuracy", r.Accuracy)
	fmt.Fprintf(w, "%-*s %32.3f\n", width, "macro f1", r.MacroF1)
}
