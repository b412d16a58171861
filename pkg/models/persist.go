package models

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/redditscore/textclf/pkg/learning"
	"github.com/redditscore/textclf/pkg/pipeline"
	"github.com/redditscore/textclf/pkg/vectorizer"
)

// formatVersion is bumped whenever the envelope layout changes
const formatVersion = 1

// ErrIncompatible is returned when a payload was written by an unsupported format version
var ErrIncompatible = errors.New("incompatible model payload")

// envelope is the on-disk form of a model. Stage state is nested as the
// stages' own binary encodings.
type envelope struct {
	Version        int
	Kind           Kind
	Ngrams         int
	Tfidf          bool
	RandomState    int64
	VectorizerKind vectorizer.Kind
	Vectorizer     []byte
	Estimator      string
	EstimatorState []byte
}

// Encode writes the whole model, fitted state included, to w
func Encode(w io.Writer, c Classifier) error {
	m := c.base()
	p := m.pipeline

	env := envelope{
		Version:     formatVersion,
		Kind:        m.kind,
		Ngrams:      m.Ngrams,
		Tfidf:       m.Tfidf,
		RandomState: m.RandomState,
		Estimator:   p.Estimator().Name(),
	}

	if v := p.Vectorizer(); v != nil {
		data, err := v.MarshalBinary()
		if err != nil {
			return fmt.Errorf("failed to encode vectorizer: %w", err)
		}
		env.VectorizerKind = v.Kind()
		env.Vectorizer = data
	}

	state, err := p.Estimator().MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode estimator: %w", err)
	}
	env.EstimatorState = state

	return gob.NewEncoder(w).Encode(&env)
}

// Decode reads a model written by Encode. The result shares nothing with the writer's model.
func Decode(r io.Reader) (Classifier, error) {
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if env.Version != formatVersion {
		return nil, fmt.Errorf("%w: format version %d, expected %d", ErrIncompatible, env.Version, formatVersion)
	}

	want, err := estimatorName(env.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	if env.Estimator != want {
		return nil, fmt.Errorf("%w: %s model holds a %s estimator", ErrIncompatible, env.Kind, env.Estimator)
	}

	est, err := learning.New(env.Estimator)
	if err != nil {
		return nil, err
	}
	if err := est.UnmarshalBinary(env.EstimatorState); err != nil {
		return nil, fmt.Errorf("failed to decode estimator: %w", err)
	}

	var vec vectorizer.Vectorizer
	if env.Vectorizer != nil {
		vec, err = vectorizer.Decode(env.VectorizerKind, env.Vectorizer)
		if err != nil {
			return nil, fmt.Errorf("failed to decode vectorizer: %w", err)
		}
	}

	var c Classifier
	switch env.Kind {
	case KindMultinomial:
		c = &MultinomialModel{}
	case KindBernoulli:
		c = &BernoulliModel{}
	case KindSVM:
		c = &SVMModel{}
	}

	m := c.base()
	m.kind = env.Kind
	m.Ngrams = env.Ngrams
	m.Tfidf = env.Tfidf
	m.RandomState = env.RandomState
	m.pipeline = pipeline.New(vec, est)

	return c, nil
}

// Save writes the model to path, replacing any existing file. The previous
// file is left intact when encoding fails.
func Save(c Classifier, path string) error {
	err := writeFileAtomic(path, func(w io.Writer) error { return Encode(w, c) })
	if err != nil {
		return err
	}

	slog.Debug("models: saved", "kind", c.Kind(), "path", path)
	return nil
}

// writeFileAtomic writes through a temporary file in path's directory and
// renames it over path once write succeeds
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to create model file: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace model file: %w", err)
	}
	return nil
}

// Load reads a model previously written by Save
func Load(path string) (Classifier, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer file.Close()

	c, err := Decode(file)
	if err != nil {
		return nil, err
	}

	slog.Debug("models: loaded", "kind", c.Kind(), "path", path)
	return c, nil
}
