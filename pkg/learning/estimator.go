package learning

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrNotFitted is returned when predicting or transforming before Fit
	ErrNotFitted = errors.New("estimator is not fitted")

	// ErrUnknownParam is returned for parameter names an estimator does not define
	ErrUnknownParam = errors.New("unknown parameter")

	// ErrInvalidParam is returned for parameter values of the wrong type or range
	ErrInvalidParam = errors.New("invalid parameter value")
)

// Estimator is a trainable text classifier operating on sparse feature rows
type Estimator interface {
	// Name returns the registry name of the estimator (e.g. "multinomial_nb")
	Name() string

	// Fit trains the estimator on feature rows X with labels y
	Fit(X []Vector, y []string) error

	// Predict returns one label per feature row
	Predict(X []Vector) ([]string, error)

	// Classes returns the sorted labels seen during Fit
	Classes() []string

	// Params returns the current hyperparameters keyed by name
	Params() map[string]any

	// HasParam reports whether name is a hyperparameter of this estimator
	HasParam(name string) bool

	// SetParam validates and assigns a single hyperparameter
	SetParam(name string, value any) error

	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Constructor creates an estimator with default hyperparameters
type Constructor func() Estimator

var registry = map[string]Constructor{
	MultinomialNBName: func() Estimator { return NewMultinomialNB() },
	BernoulliNBName:   func() Estimator { return NewBernoulliNB() },
	SVCName:           func() Estimator { return NewSVC() },
}

// New creates a default estimator by registry name
func New(name string) (Estimator, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown estimator %q", name)
	}
	return ctor(), nil
}

// Names returns all registered estimator names
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of e, fitted state included
func Clone(e Estimator) (Estimator, error) {
	data, err := e.MarshalBinary()
	if err != nil {
		return nil, err
	}
	c, err := New(e.Name())
	if err != nil {
		return nil, err
	}
	if err := c.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return c, nil
}

// uniqueLabels returns the sorted distinct labels and each sample's class index
func uniqueLabels(y []string) ([]string, []int) {
	seen := make(map[string]bool)
	var labels []string
	for _, label := range y {
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	encoded := make([]int, len(y))
	for i, label := range y {
		encoded[i] = index[label]
	}
	return labels, encoded
}

func checkXY(X []Vector, y []string) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: no training samples", ErrInvalidParam)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d samples but %d labels", ErrInvalidParam, len(X), len(y))
	}
	return nil
}

func numFeatures(X []Vector) int {
	n := 0
	for _, x := range X {
		if k := len(x.Indices); k > 0 && x.Indices[k-1]+1 > n {
			n = x.Indices[k-1] + 1
		}
	}
	return n
}

// Parameter coercion. Values may come from Go callers or as strings from the CLI.

// FloatParam converts a parameter value to float64
func FloatParam(name string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidParam, name, v)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %s has type %T, expected number", ErrInvalidParam, name, value)
}

// IntParam converts a parameter value to int
func IntParam(name string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%w: %s=%v is not an integer", ErrInvalidParam, name, v)
		}
		return int(v), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidParam, name, v)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: %s has type %T, expected integer", ErrInvalidParam, name, value)
}

// BoolParam converts a parameter value to bool
func BoolParam(name string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidParam, name, v)
		}
		return b, nil
	}
	return false, fmt.Errorf("%w: %s has type %T, expected boolean", ErrInvalidParam, name, value)
}

// FloatSliceParam converts a list or comma separated string to []float64
func FloatSliceParam(name string, value any) ([]float64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []float64:
		out := make([]float64, len(v))
		copy(out, v)
		return out, nil
	case []any:
		out := make([]float64, len(v))
		for i, item := range v {
			f, err := FloatParam(name, item)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parts := strings.Split(v, ",")
		out := make([]float64, len(parts))
		for i, part := range parts {
			f, err := FloatParam(name, part)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s has type %T, expected list of numbers", ErrInvalidParam, name, value)
}

// classLogPrior computes log class priors from explicit priors, counts or a uniform distribution
func classLogPrior(counts []float64, prior []float64, fitPrior bool) ([]float64, error) {
	k := len(counts)
	out := make([]float64, k)

	if prior != nil {
		if len(prior) != k {
			return nil, fmt.Errorf("%w: class_prior has %d entries for %d classes", ErrInvalidParam, len(prior), k)
		}
		for i, p := range prior {
			out[i] = math.Log(p)
		}
		return out, nil
	}

	if !fitPrior {
		for i := range out {
			out[i] = -math.Log(float64(k))
		}
		return out, nil
	}

	var total float64
	for _, c := range counts {
		total += c
	}
	for i, c := range counts {
		out[i] = math.Log(c) - math.Log(total)
	}
	return out, nil
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
