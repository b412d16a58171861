// Package pipeline chains a vectorizer and an estimator into one fit/predict unit.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/redditscore/textclf/pkg/learning"
	"github.com/redditscore/textclf/pkg/vectorizer"
)

// Step names
const (
	VectorizerStep = "vectorizer"
	ModelStep      = "model"
)

// ErrIncomplete is returned when a pipeline stage is missing
var ErrIncomplete = errors.New("pipeline has no vectorizer stage")

// Step is a named pipeline stage
type Step struct {
	Name  string
	Stage any
}

// Pipeline is an ordered vectorizer -> estimator pair.
// Stages are set at construction; use WithVectorizer to derive a new pipeline.
type Pipeline struct {
	vectorizer vectorizer.Vectorizer
	estimator  learning.Estimator
}

// New creates a pipeline. v may be nil as a placeholder until the owner finalizes it.
func New(v vectorizer.Vectorizer, e learning.Estimator) *Pipeline {
	return &Pipeline{vectorizer: v, estimator: e}
}

// Vectorizer returns the transform stage
func (p *Pipeline) Vectorizer() vectorizer.Vectorizer { return p.vectorizer }

// Estimator returns the estimator stage
func (p *Pipeline) Estimator() learning.Estimator { return p.estimator }

// Steps returns the stages in execution order
func (p *Pipeline) Steps() []Step {
	return []Step{
		{Name: VectorizerStep, Stage: p.vectorizer},
		{Name: ModelStep, Stage: p.estimator},
	}
}

// WithVectorizer returns a new pipeline sharing the estimator with v as transform stage
func (p *Pipeline) WithVectorizer(v vectorizer.Vectorizer) *Pipeline {
	return New(v, p.estimator)
}

// Fit learns the vectorizer vocabulary from docs and trains the estimator on the result
func (p *Pipeline) Fit(docs []string, y []string) error {
	if p.vectorizer == nil {
		return ErrIncomplete
	}

	X, err := p.vectorizer.FitTransform(docs)
	if err != nil {
		return fmt.Errorf("vectorizer: %w", err)
	}
	if err := p.estimator.Fit(X, y); err != nil {
		return fmt.Errorf("%s: %w", p.estimator.Name(), err)
	}
	return nil
}

// Predict vectorizes docs with the fitted vocabulary and returns predicted labels
func (p *Pipeline) Predict(docs []string) ([]string, error) {
	X, err := p.Transform(docs)
	if err != nil {
		return nil, err
	}
	pred, err := p.estimator.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.estimator.Name(), err)
	}
	return pred, nil
}

// Transform runs only the vectorizer stage
func (p *Pipeline) Transform(docs []string) ([]learning.Vector, error) {
	if p.vectorizer == nil {
		return nil, ErrIncomplete
	}
	X, err := p.vectorizer.Transform(docs)
	if err != nil {
		return nil, fmt.Errorf("vectorizer: %w", err)
	}
	return X, nil
}

// Score returns the accuracy of Predict(docs) against y
func (p *Pipeline) Score(docs []string, y []string) (float64, error) {
	if len(docs) != len(y) {
		return 0, fmt.Errorf("%d documents but %d labels", len(docs), len(y))
	}
	if len(docs) == 0 {
		return 0, nil
	}

	pred, err := p.Predict(docs)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := range pred {
		if pred[i] == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y)), nil
}
