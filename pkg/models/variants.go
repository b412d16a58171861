package models

import (
	"fmt"

	"github.com/redditscore/textclf/pkg/learning"
)

// MultinomialModel is multinomial naive Bayes with or without tf-idf re-weighting
type MultinomialModel struct {
	Model
}

// NewMultinomialModel creates a multinomial naive Bayes model.
// cfg may be nil for defaults; params are forwarded to SetParams
// (e.g. "alpha", "fit_prior", "class_prior").
func NewMultinomialModel(cfg *Config, params map[string]any) (*MultinomialModel, error) {
	m := &MultinomialModel{}
	if err := m.init(KindMultinomial, cfg, learning.NewMultinomialNB(), params); err != nil {
		return nil, err
	}
	return m, nil
}

// BernoulliModel is Bernoulli naive Bayes with or without tf-idf re-weighting
type BernoulliModel struct {
	Model
}

// NewBernoulliModel creates a Bernoulli naive Bayes model.
// Estimator params: "alpha", "binarize", "fit_prior", "class_prior".
func NewBernoulliModel(cfg *Config, params map[string]any) (*BernoulliModel, error) {
	m := &BernoulliModel{}
	if err := m.init(KindBernoulli, cfg, learning.NewBernoulliNB(), params); err != nil {
		return nil, err
	}
	return m, nil
}

// SVMModel is a support vector classifier with or without tf-idf re-weighting
type SVMModel struct {
	Model
}

// NewSVMModel creates a support vector model. The wrapper random_state seeds the estimator.
// Estimator params: "C", "kernel", "degree", "gamma", "coef0", "tol", "max_iter".
func NewSVMModel(cfg *Config, params map[string]any) (*SVMModel, error) {
	m := &SVMModel{}
	if err := m.init(KindSVM, cfg, learning.NewSVC(), params); err != nil {
		return nil, err
	}
	return m, nil
}

// New creates a model of the given kind
func New(kind Kind, cfg *Config, params map[string]any) (Classifier, error) {
	var (
		c   Classifier
		err error
	)
	switch kind {
	case KindMultinomial:
		c, err = NewMultinomialModel(cfg, params)
	case KindBernoulli:
		c, err = NewBernoulliModel(cfg, params)
	case KindSVM:
		c, err = NewSVMModel(cfg, params)
	default:
		return nil, fmt.Errorf("unknown model type %q (expected %s, %s or %s)",
			kind, KindMultinomial, KindBernoulli, KindSVM)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Kinds returns every supported model variant
func Kinds() []Kind {
	return []Kind{KindMultinomial, KindBernoulli, KindSVM}
}

// estimatorName returns the estimator registry name backing a variant
func estimatorName(kind Kind) (string, error) {
	switch kind {
	case KindMultinomial:
		return learning.MultinomialNBName, nil
	case KindBernoulli:
		return learning.BernoulliNBName, nil
	case KindSVM:
		return learning.SVCName, nil
	}
	return "", fmt.Errorf("unknown model type %q", kind)
}

var (
	_ Classifier = (*MultinomialModel)(nil)
	_ Classifier = (*BernoulliModel)(nil)
	_ Classifier = (*SVMModel)(nil)
)
