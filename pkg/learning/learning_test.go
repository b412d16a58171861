package learning

import (
	"errors"
	"reflect"
	"testing"
)

// Two clearly separated classes over a six feature vocabulary
func toyData() ([]Vector, []string) {
	X := []Vector{
		NewVector(map[int]float64{0: 2, 1: 1}),
		NewVector(map[int]float64{0: 1, 2: 1}),
		NewVector(map[int]float64{1: 2, 2: 1}),
		NewVector(map[int]float64{3: 2, 4: 1}),
		NewVector(map[int]float64{4: 1, 5: 2}),
		NewVector(map[int]float64{3: 1, 5: 1}),
	}
	y := []string{"ham", "ham", "ham", "spam", "spam", "spam"}
	return X, y
}

func TestVectorOps(t *testing.T) {
	a := NewVector(map[int]float64{0: 1, 2: 2, 5: 3})
	b := NewVector(map[int]float64{2: 4, 5: 1, 7: 9})

	if got := a.Dot(b); got != 11 {
		t.Errorf("Dot = %v, expected 11", got)
	}
	if got := a.SquaredNorm(); got != 14 {
		t.Errorf("SquaredNorm = %v, expected 14", got)
	}
	if got := a.At(2); got != 2 {
		t.Errorf("At(2) = %v, expected 2", got)
	}
	if got := a.At(3); got != 0 {
		t.Errorf("At(3) = %v, expected 0", got)
	}
	if !reflect.DeepEqual(a.Indices, []int{0, 2, 5}) {
		t.Errorf("Indices not sorted: %v", a.Indices)
	}
	if NewVector(map[int]float64{1: 0}).Len() != 0 {
		t.Error("Zero entries should not be stored")
	}
}

func TestEstimatorsFitPredict(t *testing.T) {
	X, y := toyData()

	linear := NewSVC()
	if err := linear.SetParam("kernel", "linear"); err != nil {
		t.Fatalf("Failed to set kernel: %v", err)
	}

	estimators := []Estimator{NewMultinomialNB(), NewBernoulliNB(), NewSVC(), linear}
	for _, est := range estimators {
		t.Run(est.Name(), func(t *testing.T) {
			if _, err := est.Predict(X); !errors.Is(err, ErrNotFitted) {
				t.Errorf("Expected ErrNotFitted before Fit, got %v", err)
			}

			if err := est.Fit(X, y); err != nil {
				t.Fatalf("Fit failed: %v", err)
			}

			if !reflect.DeepEqual(est.Classes(), []string{"ham", "spam"}) {
				t.Errorf("Unexpected classes %v", est.Classes())
			}

			pred, err := est.Predict(X)
			if err != nil {
				t.Fatalf("Predict failed: %v", err)
			}
			if !reflect.DeepEqual(pred, y) {
				t.Errorf("Predict on training data = %v, expected %v", pred, y)
			}
		})
	}
}

func TestMultiClassSVC(t *testing.T) {
	X := []Vector{
		NewVector(map[int]float64{0: 1}),
		NewVector(map[int]float64{0: 1, 1: 0.1}),
		NewVector(map[int]float64{2: 1}),
		NewVector(map[int]float64{2: 1, 3: 0.1}),
		NewVector(map[int]float64{4: 1}),
		NewVector(map[int]float64{4: 1, 5: 0.1}),
	}
	y := []string{"a", "a", "b", "b", "c", "c"}

	svc := NewSVC()
	if err := svc.SetParam("kernel", "linear"); err != nil {
		t.Fatalf("Failed to set kernel: %v", err)
	}
	if err := svc.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if len(svc.Machines) != 3 {
		t.Errorf("Expected 3 one-vs-one machines, got %d", len(svc.Machines))
	}

	pred, err := svc.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if !reflect.DeepEqual(pred, y) {
		t.Errorf("Predict = %v, expected %v", pred, y)
	}
}

func TestFitErrors(t *testing.T) {
	X, y := toyData()

	if err := NewMultinomialNB().Fit(X, y[:2]); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam for length mismatch, got %v", err)
	}
	if err := NewMultinomialNB().Fit(nil, nil); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam for empty input, got %v", err)
	}
	if err := NewSVC().Fit(X[:3], y[:3]); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam for single class SVC, got %v", err)
	}

	nb := NewMultinomialNB()
	if err := nb.SetParam("class_prior", []float64{1}); err != nil {
		t.Fatalf("Failed to set class_prior: %v", err)
	}
	if err := nb.Fit(X, y); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Expected ErrInvalidParam for wrong class_prior length, got %v", err)
	}
}

func TestSetParam(t *testing.T) {
	tests := []struct {
		name    string
		est     Estimator
		param   string
		value   any
		wantErr error
		check   func(Estimator) bool
	}{
		{
			name:  "Multinomial alpha",
			est:   NewMultinomialNB(),
			param: "alpha",
			value: 0.5,
			check: func(e Estimator) bool { return e.Params()["alpha"] == 0.5 },
		},
		{
			name:  "Alpha from CLI string",
			est:   NewMultinomialNB(),
			param: "alpha",
			value: "0.25",
			check: func(e Estimator) bool { return e.Params()["alpha"] == 0.25 },
		},
		{
			name:    "Negative alpha",
			est:     NewMultinomialNB(),
			param:   "alpha",
			value:   -1.0,
			wantErr: ErrInvalidParam,
		},
		{
			name:    "Unknown parameter",
			est:     NewMultinomialNB(),
			param:   "kernel",
			value:   "rbf",
			wantErr: ErrUnknownParam,
		},
		{
			name:  "Bernoulli binarize disabled",
			est:   NewBernoulliNB(),
			param: "binarize",
			value: nil,
			check: func(e Estimator) bool { return e.Params()["binarize"] == nil },
		},
		{
			name:  "SVC C",
			est:   NewSVC(),
			param: "C",
			value: 10,
			check: func(e Estimator) bool { return e.Params()["C"] == 10.0 },
		},
		{
			name:    "SVC bad kernel",
			est:     NewSVC(),
			param:   "kernel",
			value:   "cubic",
			wantErr: ErrInvalidParam,
		},
		{
			name:  "SVC numeric gamma",
			est:   NewSVC(),
			param: "gamma",
			value: 0.1,
			check: func(e Estimator) bool { return e.Params()["gamma"] == 0.1 },
		},
		{
			name:  "SVC gamma mode",
			est:   NewSVC(),
			param: "gamma",
			value: "auto",
			check: func(e Estimator) bool { return e.Params()["gamma"] == "auto" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.est.SetParam(tt.param, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetParam failed: %v", err)
			}
			if !tt.est.HasParam(tt.param) {
				t.Errorf("HasParam(%q) = false", tt.param)
			}
			if !tt.check(tt.est) {
				t.Errorf("Parameter %s not applied: %v", tt.param, tt.est.Params())
			}
		})
	}
}

func TestCloneKeepsFittedState(t *testing.T) {
	X, y := toyData()

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			est, err := New(name)
			if err != nil {
				t.Fatalf("New(%q) failed: %v", name, err)
			}
			if err := est.SetParam("fit_prior", false); err != nil && !errors.Is(err, ErrUnknownParam) {
				t.Fatalf("SetParam failed: %v", err)
			}
			if err := est.Fit(X, y); err != nil {
				t.Fatalf("Fit failed: %v", err)
			}

			clone, err := Clone(est)
			if err != nil {
				t.Fatalf("Clone failed: %v", err)
			}
			if !reflect.DeepEqual(clone.Params(), est.Params()) {
				t.Errorf("Params differ after clone: %v vs %v", clone.Params(), est.Params())
			}

			want, _ := est.Predict(X)
			got, err := clone.Predict(X)
			if err != nil {
				t.Fatalf("Predict on clone failed: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Clone predicts %v, original %v", got, want)
			}
		})
	}

	if _, err := New("random_forest"); err == nil {
		t.Error("Expected error for unknown estimator name")
	}
}
