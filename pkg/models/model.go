// Package models bundles a vectorizer and a classifier into configurable text models.
//
// Every variant (multinomial, Bernoulli, support vector) composes Model, which
// routes configuration between the wrapper options (ngrams, tfidf,
// random_state) and the hyperparameters of the wrapped estimator, and keeps
// the vectorizer stage consistent with the wrapper options.
package models

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/redditscore/textclf/pkg/learning"
	"github.com/redditscore/textclf/pkg/pipeline"
	"github.com/redditscore/textclf/pkg/vectorizer"
)

// Kind identifies a model variant
type Kind string

const (
	KindMultinomial Kind = "multinomial"
	KindBernoulli   Kind = "bernoulli"
	KindSVM         Kind = "svm"
)

// Wrapper-level option names
const (
	ParamNgrams      = "ngrams"
	ParamTfidf       = "tfidf"
	ParamRandomState = "random_state"
)

// DefaultRandomState is the seed used when none is configured
const DefaultRandomState = learning.DefaultRandomState

// Config holds the wrapper-level options
type Config struct {
	Ngrams      int   `yaml:"ngrams" json:"ngrams"`
	Tfidf       bool  `yaml:"tfidf" json:"tfidf"`
	RandomState int64 `yaml:"random_state" json:"random_state"`
}

// DefaultConfig returns unigrams with tf-idf weighting and the default seed
func DefaultConfig() *Config {
	return &Config{
		Ngrams:      1,
		Tfidf:       true,
		RandomState: DefaultRandomState,
	}
}

// Classifier is implemented by every model variant
type Classifier interface {
	Kind() Kind
	Config() Config
	Params() map[string]any
	SetParams(params map[string]any) (*Model, error)
	Pipeline() *pipeline.Pipeline
	Fit(docs []string, y []string) error
	Predict(docs []string) ([]string, error)
	Score(docs []string, y []string) (float64, error)
	Classes() []string

	base() *Model
}

// Model is the configuration and persistence capability shared by all variants
type Model struct {
	// Ngrams is the highest word n-gram order extracted by the vectorizer
	Ngrams int

	// Tfidf selects tf-idf weighting over raw counts
	Tfidf bool

	// RandomState seeds estimators that draw random numbers
	RandomState int64

	kind     Kind
	pipeline *pipeline.Pipeline
}

// init stores the wrapper options, installs a placeholder pipeline and applies params
func (m *Model) init(kind Kind, cfg *Config, est learning.Estimator, params map[string]any) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Ngrams < 1 {
		return fmt.Errorf("%w: ngrams must be >= 1, got %d", learning.ErrInvalidParam, cfg.Ngrams)
	}

	m.kind = kind
	m.Ngrams = cfg.Ngrams
	m.Tfidf = cfg.Tfidf
	m.RandomState = cfg.RandomState
	m.pipeline = pipeline.New(nil, est)

	_, err := m.SetParams(params)
	return err
}

func (m *Model) base() *Model { return m }

// Kind returns the model variant
func (m *Model) Kind() Kind { return m.kind }

// Config returns the wrapper-level options
func (m *Model) Config() Config {
	return Config{Ngrams: m.Ngrams, Tfidf: m.Tfidf, RandomState: m.RandomState}
}

// Pipeline returns the current vectorizer -> estimator pipeline
func (m *Model) Pipeline() *pipeline.Pipeline { return m.pipeline }

// Params returns the wrapper options merged with the estimator hyperparameters
func (m *Model) Params() map[string]any {
	params := m.pipeline.Estimator().Params()
	params[ParamNgrams] = m.Ngrams
	params[ParamTfidf] = m.Tfidf
	params[ParamRandomState] = m.RandomState
	return params
}

func isWrapperParam(name string) bool {
	switch name {
	case ParamNgrams, ParamTfidf, ParamRandomState:
		return true
	}
	return false
}

// SetParams routes each option to the wrapper or to the estimator and rebuilds the pipeline.
//
// ngrams, tfidf and random_state are wrapper options; any other name must be a
// hyperparameter of the estimator, otherwise the call fails with
// learning.ErrUnknownParam. Nothing is applied unless every option is valid.
// The vectorizer stage is always replaced, so a fitted vocabulary is discarded
// even when only estimator options change.
func (m *Model) SetParams(params map[string]any) (*Model, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	cfg := m.Config()
	est, err := learning.Clone(m.pipeline.Estimator())
	if err != nil {
		return nil, fmt.Errorf("failed to copy estimator: %w", err)
	}

	for _, name := range names {
		value := params[name]

		if isWrapperParam(name) {
			if err := cfg.set(name, value); err != nil {
				return nil, err
			}
			continue
		}

		if !est.HasParam(name) {
			return nil, fmt.Errorf("%w: %q is neither a model option nor a %s parameter",
				learning.ErrUnknownParam, name, est.Name())
		}
		if err := est.SetParam(name, value); err != nil {
			return nil, err
		}
	}

	if est.HasParam(ParamRandomState) {
		if err := est.SetParam(ParamRandomState, cfg.RandomState); err != nil {
			return nil, err
		}
	}

	m.Ngrams = cfg.Ngrams
	m.Tfidf = cfg.Tfidf
	m.RandomState = cfg.RandomState
	m.pipeline = pipeline.New(vectorizer.New(m.Tfidf, m.Ngrams), est)

	slog.Debug("models: configured",
		"kind", m.kind, "ngrams", m.Ngrams, "tfidf", m.Tfidf,
		"random_state", m.RandomState, "params", len(params))

	return m, nil
}

// set validates and assigns a wrapper option
func (c *Config) set(name string, value any) error {
	switch name {
	case ParamNgrams:
		n, err := learning.IntParam(name, value)
		if err != nil {
			return err
		}
		if n < 1 {
			return fmt.Errorf("%w: ngrams must be >= 1, got %d", learning.ErrInvalidParam, n)
		}
		c.Ngrams = n
	case ParamTfidf:
		tfidf, err := learning.BoolParam(name, value)
		if err != nil {
			return err
		}
		c.Tfidf = tfidf
	case ParamRandomState:
		seed, err := learning.IntParam(name, value)
		if err != nil {
			return err
		}
		c.RandomState = int64(seed)
	}
	return nil
}

// Fit trains the vectorizer and the estimator on labelled documents
func (m *Model) Fit(docs []string, y []string) error {
	return m.pipeline.Fit(docs, y)
}

// Predict returns a label for each document
func (m *Model) Predict(docs []string) ([]string, error) {
	return m.pipeline.Predict(docs)
}

// Score returns the accuracy on labelled documents
func (m *Model) Score(docs []string, y []string) (float64, error) {
	return m.pipeline.Score(docs, y)
}

// Classes returns the labels seen during Fit
func (m *Model) Classes() []string {
	return m.pipeline.Estimator().Classes()
}
