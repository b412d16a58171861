package learning

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
)

const (
	// MultinomialNBName is the registry name of MultinomialNB
	MultinomialNBName = "multinomial_nb"

	// BernoulliNBName is the registry name of BernoulliNB
	BernoulliNBName = "bernoulli_nb"

	// minAlpha keeps smoothed log probabilities finite when alpha is 0
	minAlpha = 1e-10
)

// naiveBayes holds what both naive Bayes variants learn
type naiveBayes struct {
	// Hyperparameters
	Alpha      float64
	FitPrior   bool
	ClassPrior []float64

	// Learned state
	Labels         []string
	ClassCount     []float64
	ClassLogPrior  []float64
	FeatureLogProb [][]float64
	NumFeatures    int
}

func (nb *naiveBayes) params() map[string]any {
	return map[string]any{
		"alpha":       nb.Alpha,
		"fit_prior":   nb.FitPrior,
		"class_prior": nb.ClassPrior,
	}
}

// setParam assigns the hyperparameters shared by both variants
func (nb *naiveBayes) setParam(name string, value any) (bool, error) {
	switch name {
	case "alpha":
		alpha, err := FloatParam(name, value)
		if err != nil {
			return true, err
		}
		if alpha < 0 {
			return true, fmt.Errorf("%w: alpha must be >= 0, got %v", ErrInvalidParam, alpha)
		}
		nb.Alpha = alpha
	case "fit_prior":
		fitPrior, err := BoolParam(name, value)
		if err != nil {
			return true, err
		}
		nb.FitPrior = fitPrior
	case "class_prior":
		prior, err := FloatSliceParam(name, value)
		if err != nil {
			return true, err
		}
		nb.ClassPrior = prior
	default:
		return false, nil
	}
	return true, nil
}

func (nb *naiveBayes) alpha() float64 {
	return math.Max(nb.Alpha, minAlpha)
}

func (nb *naiveBayes) classes() []string {
	out := make([]string, len(nb.Labels))
	copy(out, nb.Labels)
	return out
}

func (nb *naiveBayes) fitted() bool {
	return nb.FeatureLogProb != nil
}

// countFeatures sums feature values per class
func (nb *naiveBayes) countFeatures(X []Vector, y []string, transform func(float64) float64) ([][]float64, error) {
	if err := checkXY(X, y); err != nil {
		return nil, err
	}

	labels, encoded := uniqueLabels(y)
	nb.Labels = labels
	nb.NumFeatures = numFeatures(X)
	nb.ClassCount = make([]float64, len(labels))

	counts := make([][]float64, len(labels))
	for c := range counts {
		counts[c] = make([]float64, nb.NumFeatures)
	}

	for i, x := range X {
		c := encoded[i]
		nb.ClassCount[c]++
		for k, idx := range x.Indices {
			counts[c][idx] += transform(x.Values[k])
		}
	}

	prior, err := classLogPrior(nb.ClassCount, nb.ClassPrior, nb.FitPrior)
	if err != nil {
		return nil, err
	}
	nb.ClassLogPrior = prior

	return counts, nil
}

func encodeState(state any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeState(data []byte, state any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(state)
}

// MultinomialNB is a naive Bayes classifier for count or tf-idf features
type MultinomialNB struct {
	naiveBayes
}

// NewMultinomialNB creates a multinomial naive Bayes with alpha=1 and fitted priors
func NewMultinomialNB() *MultinomialNB {
	return &MultinomialNB{naiveBayes{Alpha: 1.0, FitPrior: true}}
}

// Name implements Estimator
func (nb *MultinomialNB) Name() string { return MultinomialNBName }

// Classes implements Estimator
func (nb *MultinomialNB) Classes() []string { return nb.classes() }

// Params implements Estimator
func (nb *MultinomialNB) Params() map[string]any { return nb.params() }

// HasParam implements Estimator
func (nb *MultinomialNB) HasParam(name string) bool {
	_, ok := nb.params()[name]
	return ok
}

// SetParam implements Estimator
func (nb *MultinomialNB) SetParam(name string, value any) error {
	ok, err := nb.setParam(name, value)
	if !ok {
		return fmt.Errorf("%w: %s for %s", ErrUnknownParam, name, nb.Name())
	}
	return err
}

// Fit learns smoothed per-class feature log probabilities
func (nb *MultinomialNB) Fit(X []Vector, y []string) error {
	counts, err := nb.countFeatures(X, y, func(v float64) float64 { return v })
	if err != nil {
		return err
	}

	alpha := nb.alpha()
	nb.FeatureLogProb = make([][]float64, len(counts))
	for c, row := range counts {
		var total float64
		for _, v := range row {
			total += v + alpha
		}
		logTotal := math.Log(total)

		logProb := make([]float64, len(row))
		for j, v := range row {
			logProb[j] = math.Log(v+alpha) - logTotal
		}
		nb.FeatureLogProb[c] = logProb
	}

	return nil
}

// Predict returns the class with the highest joint log likelihood
func (nb *MultinomialNB) Predict(X []Vector) ([]string, error) {
	if !nb.fitted() {
		return nil, ErrNotFitted
	}

	out := make([]string, len(X))
	jll := make([]float64, len(nb.Labels))
	for i, x := range X {
		for c := range nb.Labels {
			score := nb.ClassLogPrior[c]
			for k, idx := range x.Indices {
				if idx < nb.NumFeatures {
					score += x.Values[k] * nb.FeatureLogProb[c][idx]
				}
			}
			jll[c] = score
		}
		out[i] = nb.Labels[argmax(jll)]
	}

	return out, nil
}

// MarshalBinary implements encoding.BinaryMarshaler using gob
func (nb *MultinomialNB) MarshalBinary() ([]byte, error) {
	return encodeState(&nb.naiveBayes)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob
func (nb *MultinomialNB) UnmarshalBinary(data []byte) error {
	var state naiveBayes
	if err := decodeState(data, &state); err != nil {
		return err
	}
	nb.naiveBayes = state
	return nil
}

// BernoulliNB is a naive Bayes classifier for binary feature occurrence
type BernoulliNB struct {
	naiveBayes

	// Threshold above which a feature counts as present
	Threshold float64

	// NoBinarize means the input is used as is
	NoBinarize bool
}

// NewBernoulliNB creates a Bernoulli naive Bayes with alpha=1 and binarize=0
func NewBernoulliNB() *BernoulliNB {
	return &BernoulliNB{
		naiveBayes: naiveBayes{Alpha: 1.0, FitPrior: true},
	}
}

// Name implements Estimator
func (nb *BernoulliNB) Name() string { return BernoulliNBName }

// Classes implements Estimator
func (nb *BernoulliNB) Classes() []string { return nb.classes() }

// Params implements Estimator
func (nb *BernoulliNB) Params() map[string]any {
	params := nb.params()
	if nb.NoBinarize {
		params["binarize"] = nil
	} else {
		params["binarize"] = nb.Threshold
	}
	return params
}

// HasParam implements Estimator
func (nb *BernoulliNB) HasParam(name string) bool {
	_, ok := nb.Params()[name]
	return ok
}

// SetParam implements Estimator
func (nb *BernoulliNB) SetParam(name string, value any) error {
	if name == "binarize" {
		if value == nil || value == "none" || value == "" {
			nb.NoBinarize = true
			return nil
		}
		threshold, err := FloatParam(name, value)
		if err != nil {
			return err
		}
		nb.Threshold = threshold
		nb.NoBinarize = false
		return nil
	}

	ok, err := nb.setParam(name, value)
	if !ok {
		return fmt.Errorf("%w: %s for %s", ErrUnknownParam, name, nb.Name())
	}
	return err
}

func (nb *BernoulliNB) binarize(v float64) float64 {
	if nb.NoBinarize {
		return v
	}
	if v > nb.Threshold {
		return 1
	}
	return 0
}

// Fit learns per-class feature occurrence log probabilities
func (nb *BernoulliNB) Fit(X []Vector, y []string) error {
	counts, err := nb.countFeatures(X, y, nb.binarize)
	if err != nil {
		return err
	}

	alpha := nb.alpha()
	nb.FeatureLogProb = make([][]float64, len(counts))
	for c, row := range counts {
		denom := math.Log(nb.ClassCount[c] + 2*alpha)
		logProb := make([]float64, len(row))
		for j, v := range row {
			logProb[j] = math.Log(v+alpha) - denom
		}
		nb.FeatureLogProb[c] = logProb
	}

	return nil
}

// Predict returns the class with the highest joint log likelihood
func (nb *BernoulliNB) Predict(X []Vector) ([]string, error) {
	if !nb.fitted() {
		return nil, ErrNotFitted
	}

	// Log probability of every feature being absent, per class
	negLogProb := make([][]float64, len(nb.Labels))
	negSum := make([]float64, len(nb.Labels))
	for c, row := range nb.FeatureLogProb {
		neg := make([]float64, len(row))
		for j, lp := range row {
			neg[j] = math.Log(1 - math.Exp(lp))
			negSum[c] += neg[j]
		}
		negLogProb[c] = neg
	}

	out := make([]string, len(X))
	jll := make([]float64, len(nb.Labels))
	for i, x := range X {
		for c := range nb.Labels {
			score := nb.ClassLogPrior[c] + negSum[c]
			for k, idx := range x.Indices {
				if idx < nb.NumFeatures {
					v := nb.binarize(x.Values[k])
					score += v * (nb.FeatureLogProb[c][idx] - negLogProb[c][idx])
				}
			}
			jll[c] = score
		}
		out[i] = nb.Labels[argmax(jll)]
	}

	return out, nil
}

type bernoulliState struct {
	NB         naiveBayes
	Threshold  float64
	NoBinarize bool
}

// MarshalBinary implements encoding.BinaryMarshaler using gob
func (nb *BernoulliNB) MarshalBinary() ([]byte, error) {
	return encodeState(&bernoulliState{NB: nb.naiveBayes, Threshold: nb.Threshold, NoBinarize: nb.NoBinarize})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob
func (nb *BernoulliNB) UnmarshalBinary(data []byte) error {
	var state bernoulliState
	if err := decodeState(data, &state); err != nil {
		return err
	}
	nb.naiveBayes = state.NB
	nb.Threshold = state.Threshold
	nb.NoBinarize = state.NoBinarize
	return nil
}
