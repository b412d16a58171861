// Package vectorizer converts documents into sparse count or tf-idf feature rows.
package vectorizer

import (
	"bytes"
	"encoding"
	"encoding/gob"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/redditscore/textclf/pkg/analyzer"
	"github.com/redditscore/textclf/pkg/learning"
)

// Kind identifies the weighting scheme of a vectorizer
type Kind string

const (
	// KindCount produces raw n-gram counts
	KindCount Kind = "count"

	// KindTfidf produces L2-normalised tf-idf weights
	KindTfidf Kind = "tfidf"
)

// Vectorizer learns a vocabulary from documents and maps documents to feature rows
type Vectorizer interface {
	Fit(docs []string) error
	Transform(docs []string) ([]learning.Vector, error)
	FitTransform(docs []string) ([]learning.Vector, error)

	// Kind returns the weighting scheme
	Kind() Kind

	// Ngrams returns the highest n-gram order of the analyzer
	Ngrams() int

	// Analyze runs the analyzer on a single document
	Analyze(doc string) []string

	// Vocabulary returns a copy of the feature -> column mapping
	Vocabulary() map[string]int

	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// New returns a tf-idf vectorizer when tfidf is true, a count vectorizer otherwise
func New(tfidf bool, ngrams int) Vectorizer {
	if tfidf {
		return NewTfidfVectorizer(ngrams)
	}
	return NewCountVectorizer(ngrams)
}

// CountVectorizer counts word n-grams of orders 1 through ngrams
type CountVectorizer struct {
	ngrams     int
	analyze    analyzer.Analyzer
	vocabulary map[string]int
}

// NewCountVectorizer creates an unfitted count vectorizer
func NewCountVectorizer(ngrams int) *CountVectorizer {
	if ngrams < 1 {
		ngrams = 1
	}
	return &CountVectorizer{
		ngrams:  ngrams,
		analyze: analyzer.Build(ngrams),
	}
}

// Kind implements Vectorizer
func (cv *CountVectorizer) Kind() Kind { return KindCount }

// Ngrams implements Vectorizer
func (cv *CountVectorizer) Ngrams() int { return cv.ngrams }

// Analyze implements Vectorizer
func (cv *CountVectorizer) Analyze(doc string) []string { return cv.analyze(doc) }

// Vocabulary implements Vectorizer
func (cv *CountVectorizer) Vocabulary() map[string]int {
	out := make(map[string]int, len(cv.vocabulary))
	for term, idx := range cv.vocabulary {
		out[term] = idx
	}
	return out
}

// Fit builds a sorted vocabulary of every feature seen in docs
func (cv *CountVectorizer) Fit(docs []string) error {
	_, err := cv.FitTransform(docs)
	return err
}

// FitTransform builds the vocabulary and returns the count rows for docs
func (cv *CountVectorizer) FitTransform(docs []string) ([]learning.Vector, error) {
	seen := make(map[string]bool)
	for _, doc := range docs {
		for _, term := range cv.analyze(doc) {
			seen[term] = true
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("empty vocabulary: documents contain no features")
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	cv.vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		cv.vocabulary[term] = i
	}

	return cv.Transform(docs)
}

// Transform returns one count row per document, ignoring features outside the vocabulary
func (cv *CountVectorizer) Transform(docs []string) ([]learning.Vector, error) {
	if cv.vocabulary == nil {
		return nil, fmt.Errorf("count vectorizer: %w", learning.ErrNotFitted)
	}

	rows := make([]learning.Vector, len(docs))
	for i, doc := range docs {
		counts := make(map[int]float64)
		for _, term := range cv.analyze(doc) {
			if idx, ok := cv.vocabulary[term]; ok {
				counts[idx]++
			}
		}
		rows[i] = learning.NewVector(counts)
	}
	return rows, nil
}

type countState struct {
	Ngrams     int
	Vocabulary map[string]int
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
// The analyzer is rebuilt from the n-gram order on decode.
func (cv *CountVectorizer) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(countState{Ngrams: cv.ngrams, Vocabulary: cv.vocabulary})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob
func (cv *CountVectorizer) UnmarshalBinary(data []byte) error {
	var state countState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}
	*cv = *NewCountVectorizer(state.Ngrams)
	cv.vocabulary = state.Vocabulary
	return nil
}

// TfidfVectorizer reweights n-gram counts by smoothed inverse document frequency
type TfidfVectorizer struct {
	counts *CountVectorizer
	idf    []float64
}

// NewTfidfVectorizer creates an unfitted tf-idf vectorizer
func NewTfidfVectorizer(ngrams int) *TfidfVectorizer {
	return &TfidfVectorizer{counts: NewCountVectorizer(ngrams)}
}

// Kind implements Vectorizer
func (tv *TfidfVectorizer) Kind() Kind { return KindTfidf }

// Ngrams implements Vectorizer
func (tv *TfidfVectorizer) Ngrams() int { return tv.counts.Ngrams() }

// Analyze implements Vectorizer
func (tv *TfidfVectorizer) Analyze(doc string) []string { return tv.counts.Analyze(doc) }

// Vocabulary implements Vectorizer
func (tv *TfidfVectorizer) Vocabulary() map[string]int { return tv.counts.Vocabulary() }

// IDF returns a copy of the learned inverse document frequencies
func (tv *TfidfVectorizer) IDF() []float64 {
	out := make([]float64, len(tv.idf))
	copy(out, tv.idf)
	return out
}

// Fit learns the vocabulary and idf weights
func (tv *TfidfVectorizer) Fit(docs []string) error {
	_, err := tv.FitTransform(docs)
	return err
}

// FitTransform learns the vocabulary and idf weights and returns the weighted rows.
// idf(t) = ln((1+n)/(1+df(t))) + 1
func (tv *TfidfVectorizer) FitTransform(docs []string) ([]learning.Vector, error) {
	rows, err := tv.counts.FitTransform(docs)
	if err != nil {
		return nil, err
	}

	df := make([]float64, len(tv.counts.vocabulary))
	for _, row := range rows {
		for _, idx := range row.Indices {
			df[idx]++
		}
	}

	n := float64(len(docs))
	tv.idf = make([]float64, len(df))
	for i, d := range df {
		tv.idf[i] = math.Log((1+n)/(1+d)) + 1
	}

	return tv.weight(rows), nil
}

// Transform returns one tf-idf row per document
func (tv *TfidfVectorizer) Transform(docs []string) ([]learning.Vector, error) {
	if tv.idf == nil {
		return nil, fmt.Errorf("tfidf vectorizer: %w", learning.ErrNotFitted)
	}
	rows, err := tv.counts.Transform(docs)
	if err != nil {
		return nil, err
	}
	return tv.weight(rows), nil
}

// weight applies idf in place and L2-normalises each row
func (tv *TfidfVectorizer) weight(rows []learning.Vector) []learning.Vector {
	for _, row := range rows {
		for k, idx := range row.Indices {
			row.Values[k] *= tv.idf[idx]
		}
		if norm := floats.Norm(row.Values, 2); norm > 0 {
			floats.Scale(1/norm, row.Values)
		}
	}
	return rows
}

type tfidfState struct {
	Counts []byte
	IDF    []float64
}

// MarshalBinary implements encoding.BinaryMarshaler using gob
func (tv *TfidfVectorizer) MarshalBinary() ([]byte, error) {
	counts, err := tv.counts.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(tfidfState{Counts: counts, IDF: tv.idf}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob
func (tv *TfidfVectorizer) UnmarshalBinary(data []byte) error {
	var state tfidfState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}
	counts := &CountVectorizer{}
	if err := counts.UnmarshalBinary(state.Counts); err != nil {
		return err
	}
	tv.counts = counts
	tv.idf = state.IDF
	return nil
}

// Decode rebuilds a vectorizer of the given kind from MarshalBinary output
func Decode(kind Kind, data []byte) (Vectorizer, error) {
	var v Vectorizer
	switch kind {
	case KindCount:
		v = &CountVectorizer{}
	case KindTfidf:
		v = &TfidfVectorizer{}
	default:
		return nil, fmt.Errorf("unknown vectorizer kind %q", kind)
	}
	if err := v.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return v, nil
}

var (
	_ Vectorizer = (*CountVectorizer)(nil)
	_ Vectorizer = (*TfidfVectorizer)(nil)
)
