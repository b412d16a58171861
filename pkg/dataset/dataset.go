// Package dataset loads labelled documents and splits them for evaluation.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrEmpty is returned when a source yields no documents
var ErrEmpty = errors.New("dataset is empty")

// Dataset holds documents with their labels, index aligned
type Dataset struct {
	Docs   []string
	Labels []string
}

// Len returns the number of documents
func (ds *Dataset) Len() int { return len(ds.Docs) }

// Add appends a labelled document
func (ds *Dataset) Add(doc, label string) {
	ds.Docs = append(ds.Docs, doc)
	ds.Labels = append(ds.Labels, label)
}

// Counts returns the number of documents per label
func (ds *Dataset) Counts() map[string]int {
	counts := make(map[string]int)
	for _, label := range ds.Labels {
		counts[label]++
	}
	return counts
}

// LoadDir reads a directory whose sub-directories name the labels.
// Every regular file below a label directory is one document (see
// ReadDocument); hidden entries are skipped.
func LoadDir(dir string) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}

	ds := &Dataset{}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		label := entry.Name()

		err := filepath.WalkDir(filepath.Join(dir, label), func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			text, err := ReadDocument(path)
			if err != nil {
				return err
			}
			ds.Add(text, label)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: no documents under %s", ErrEmpty, dir)
	}
	return ds, nil
}

// LoadCSV reads a CSV file with a header row, taking the text and label
// from the named columns
func LoadCSV(path, textCol, labelCol string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file, textCol, labelCol)
}

// ReadCSV is LoadCSV over an arbitrary reader
func ReadCSV(r io.Reader, textCol, labelCol string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header row", ErrEmpty)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	textIdx, labelIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case textCol:
			textIdx = i
		case labelCol:
			labelIdx = i
		}
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("csv has no %q column", textCol)
	}
	if labelIdx < 0 {
		return nil, fmt.Errorf("csv has no %q column", labelCol)
	}

	ds := &Dataset{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		if textIdx >= len(record) || labelIdx >= len(record) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("csv record on line %d has %d fields", line, len(record))
		}
		ds.Add(record[textIdx], strings.TrimSpace(record[labelIdx]))
	}

	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: no csv records", ErrEmpty)
	}
	return ds, nil
}

// TrainTestSplit shuffles the documents with seed and holds out testRatio of
// them. Each label keeps at least one training document when it has more than one.
func TrainTestSplit(ds *Dataset, testRatio float64, seed int64) (train, test *Dataset, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio must be in (0, 1), got %v", testRatio)
	}
	if ds.Len() < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 documents to split", ErrEmpty)
	}

	byLabel := make(map[string][]int)
	for i, label := range ds.Labels {
		byLabel[label] = append(byLabel[label], i)
	}
	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(seed))
	train, test = &Dataset{}, &Dataset{}

	// Stratify so rare labels appear in both halves when possible
	for _, label := range labels {
		idx := byLabel[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(float64(len(idx))*testRatio + 0.5)
		if nTest >= len(idx) {
			nTest = len(idx) - 1
		}
		for k, i := range idx {
			if k < nTest {
				test.Add(ds.Docs[i], ds.Labels[i])
			} else {
				train.Add(ds.Docs[i], ds.Labels[i])
			}
		}
	}

	if test.Len() == 0 {
		return nil, nil, fmt.Errorf("test ratio %v leaves no documents to evaluate", testRatio)
	}
	return train, test, nil
}
