package learning

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const (
	// SVCName is the registry name of SVC
	SVCName = "svc"

	// DefaultRandomState seeds the working-set selection when none is given
	DefaultRandomState int64 = 24

	// maxPasses is the number of consecutive sweeps without updates that ends SMO
	maxPasses = 5

	// iterationLimit bounds SMO when max_iter is unlimited
	iterationLimit = 10000

	// alphaEpsilon is the smallest multiplier change treated as progress
	alphaEpsilon = 1e-5
)

// Supported SVC kernels
const (
	KernelLinear  = "linear"
	KernelPoly    = "poly"
	KernelRBF     = "rbf"
	KernelSigmoid = "sigmoid"
)

// Gamma modes resolved from the training data
const (
	GammaScale = "scale"
	GammaAuto  = "auto"
)

// SVC is a support vector classifier trained with sequential minimal
// optimization. More than two classes are handled one-vs-one.
type SVC struct {
	// Hyperparameters
	C           float64
	Kernel      string
	Degree      int
	Gamma       float64
	GammaMode   string
	Coef0       float64
	Tol         float64
	MaxIter     int
	RandomState int64

	// Learned state
	Labels        []string
	Machines      []BinaryMachine
	FittedGamma   float64
	IsFitted      bool
	TrainFeatures int
}

// BinaryMachine separates class Pos (decision > 0) from class Neg
type BinaryMachine struct {
	Pos, Neg       int
	SupportVectors []Vector
	DualCoef       []float64
	Intercept      float64
}

// NewSVC creates a classifier with an RBF kernel, C=1 and gamma="scale"
func NewSVC() *SVC {
	return &SVC{
		C:           1.0,
		Kernel:      KernelRBF,
		Degree:      3,
		GammaMode:   GammaScale,
		Tol:         1e-3,
		MaxIter:     -1,
		RandomState: DefaultRandomState,
	}
}

// Name implements Estimator
func (s *SVC) Name() string { return SVCName }

// Classes implements Estimator
func (s *SVC) Classes() []string {
	out := make([]string, len(s.Labels))
	copy(out, s.Labels)
	return out
}

// Params implements Estimator
func (s *SVC) Params() map[string]any {
	var gamma any = s.Gamma
	if s.GammaMode != "" {
		gamma = s.GammaMode
	}
	return map[string]any{
		"C":            s.C,
		"kernel":       s.Kernel,
		"degree":       s.Degree,
		"gamma":        gamma,
		"coef0":        s.Coef0,
		"tol":          s.Tol,
		"max_iter":     s.MaxIter,
		"random_state": s.RandomState,
	}
}

// HasParam implements Estimator
func (s *SVC) HasParam(name string) bool {
	_, ok := s.Params()[name]
	return ok
}

// SetParam implements Estimator
func (s *SVC) SetParam(name string, value any) error {
	switch name {
	case "C":
		c, err := FloatParam(name, value)
		if err != nil {
			return err
		}
		if c <= 0 {
			return fmt.Errorf("%w: C must be > 0, got %v", ErrInvalidParam, c)
		}
		s.C = c
	case "kernel":
		kernel, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: kernel has type %T, expected string", ErrInvalidParam, value)
		}
		switch kernel {
		case KernelLinear, KernelPoly, KernelRBF, KernelSigmoid:
			s.Kernel = kernel
		default:
			return fmt.Errorf("%w: unsupported kernel %q", ErrInvalidParam, kernel)
		}
	case "degree":
		degree, err := IntParam(name, value)
		if err != nil {
			return err
		}
		if degree < 0 {
			return fmt.Errorf("%w: degree must be >= 0, got %d", ErrInvalidParam, degree)
		}
		s.Degree = degree
	case "gamma":
		if mode, ok := value.(string); ok && (mode == GammaScale || mode == GammaAuto) {
			s.GammaMode = mode
			s.Gamma = 0
			return nil
		}
		gamma, err := FloatParam(name, value)
		if err != nil {
			return err
		}
		if gamma <= 0 {
			return fmt.Errorf("%w: gamma must be > 0, got %v", ErrInvalidParam, gamma)
		}
		s.Gamma = gamma
		s.GammaMode = ""
	case "coef0":
		coef0, err := FloatParam(name, value)
		if err != nil {
			return err
		}
		s.Coef0 = coef0
	case "tol":
		tol, err := FloatParam(name, value)
		if err != nil {
			return err
		}
		if tol <= 0 {
			return fmt.Errorf("%w: tol must be > 0, got %v", ErrInvalidParam, tol)
		}
		s.Tol = tol
	case "max_iter":
		maxIter, err := IntParam(name, value)
		if err != nil {
			return err
		}
		s.MaxIter = maxIter
	case "random_state":
		seed, err := IntParam(name, value)
		if err != nil {
			return err
		}
		s.RandomState = int64(seed)
	default:
		return fmt.Errorf("%w: %s for %s", ErrUnknownParam, name, s.Name())
	}
	return nil
}

// resolveGamma turns "scale"/"auto" into a number for the training data
func (s *SVC) resolveGamma(X []Vector, nFeatures int) float64 {
	switch s.GammaMode {
	case GammaAuto:
		if nFeatures == 0 {
			return 1
		}
		return 1 / float64(nFeatures)
	case GammaScale:
		cells := float64(len(X) * nFeatures)
		if cells == 0 {
			return 1
		}
		var sum, sumSq float64
		for _, x := range X {
			for _, v := range x.Values {
				sum += v
				sumSq += v * v
			}
		}
		mean := sum / cells
		variance := sumSq/cells - mean*mean
		if variance <= 0 {
			return 1
		}
		return 1 / (float64(nFeatures) * variance)
	}
	return s.Gamma
}

func (s *SVC) kernel(a, b Vector) float64 {
	switch s.Kernel {
	case KernelLinear:
		return a.Dot(b)
	case KernelPoly:
		return math.Pow(s.FittedGamma*a.Dot(b)+s.Coef0, float64(s.Degree))
	case KernelSigmoid:
		return math.Tanh(s.FittedGamma*a.Dot(b) + s.Coef0)
	default:
		d := a.SquaredNorm() + b.SquaredNorm() - 2*a.Dot(b)
		return math.Exp(-s.FittedGamma * d)
	}
}

// Fit trains one binary machine per pair of classes
func (s *SVC) Fit(X []Vector, y []string) error {
	if err := checkXY(X, y); err != nil {
		return err
	}

	labels, encoded := uniqueLabels(y)
	if len(labels) < 2 {
		return fmt.Errorf("%w: svc needs at least 2 classes, got %d", ErrInvalidParam, len(labels))
	}

	s.TrainFeatures = numFeatures(X)
	s.FittedGamma = s.resolveGamma(X, s.TrainFeatures)

	rng := rand.New(rand.NewSource(s.RandomState))
	var machines []BinaryMachine
	for p := 0; p < len(labels); p++ {
		for q := p + 1; q < len(labels); q++ {
			var subX []Vector
			var subY []float64
			for i, c := range encoded {
				switch c {
				case p:
					subX = append(subX, X[i])
					subY = append(subY, 1)
				case q:
					subX = append(subX, X[i])
					subY = append(subY, -1)
				}
			}
			m := s.smo(subX, subY, rng)
			m.Pos, m.Neg = p, q
			machines = append(machines, m)
		}
	}

	s.Labels = labels
	s.Machines = machines
	s.IsFitted = true
	return nil
}

// smo solves the dual problem for labels in {-1, +1}
func (s *SVC) smo(X []Vector, y []float64, rng *rand.Rand) BinaryMachine {
	n := len(X)
	gram := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			gram.SetSym(i, j, s.kernel(X[i], X[j]))
		}
	}

	alpha := make([]float64, n)
	var b float64

	decision := func(i int) float64 {
		f := b
		for k := 0; k < n; k++ {
			if alpha[k] != 0 {
				f += alpha[k] * y[k] * gram.At(k, i)
			}
		}
		return f
	}

	limit := s.MaxIter
	if limit <= 0 {
		limit = iterationLimit
	}

	passes := 0
	for iter := 0; passes < maxPasses && iter < limit && n > 1; iter++ {
		changed := 0
		for i := 0; i < n; i++ {
			ei := decision(i) - y[i]
			if !((y[i]*ei < -s.Tol && alpha[i] < s.C) || (y[i]*ei > s.Tol && alpha[i] > 0)) {
				continue
			}

			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			ej := decision(j) - y[j]

			ai, aj := alpha[i], alpha[j]
			var lo, hi float64
			if y[i] != y[j] {
				lo = math.Max(0, aj-ai)
				hi = math.Min(s.C, s.C+aj-ai)
			} else {
				lo = math.Max(0, ai+aj-s.C)
				hi = math.Min(s.C, ai+aj)
			}
			if lo == hi {
				continue
			}

			eta := 2*gram.At(i, j) - gram.At(i, i) - gram.At(j, j)
			if eta >= 0 {
				continue
			}

			alpha[j] = math.Min(hi, math.Max(lo, aj-y[j]*(ei-ej)/eta))
			if math.Abs(alpha[j]-aj) < alphaEpsilon {
				alpha[j] = aj
				continue
			}
			alpha[i] = ai + y[i]*y[j]*(aj-alpha[j])

			b1 := b - ei - y[i]*(alpha[i]-ai)*gram.At(i, i) - y[j]*(alpha[j]-aj)*gram.At(i, j)
			b2 := b - ej - y[i]*(alpha[i]-ai)*gram.At(i, j) - y[j]*(alpha[j]-aj)*gram.At(j, j)
			switch {
			case alpha[i] > 0 && alpha[i] < s.C:
				b = b1
			case alpha[j] > 0 && alpha[j] < s.C:
				b = b2
			default:
				b = (b1 + b2) / 2
			}
			changed++
		}

		if changed == 0 {
			passes++
		} else {
			passes = 0
		}
	}

	m := BinaryMachine{Intercept: b}
	for i := 0; i < n; i++ {
		if alpha[i] > 0 {
			m.SupportVectors = append(m.SupportVectors, X[i])
			m.DualCoef = append(m.DualCoef, alpha[i]*y[i])
		}
	}
	return m
}

// decision returns the signed distance of x from machine m
func (s *SVC) decision(m *BinaryMachine, x Vector) float64 {
	f := m.Intercept
	for k, sv := range m.SupportVectors {
		f += m.DualCoef[k] * s.kernel(sv, x)
	}
	return f
}

// Predict returns the class with the most one-vs-one votes
func (s *SVC) Predict(X []Vector) ([]string, error) {
	if !s.IsFitted {
		return nil, ErrNotFitted
	}

	out := make([]string, len(X))
	votes := make([]float64, len(s.Labels))
	for i, x := range X {
		for c := range votes {
			votes[c] = 0
		}
		for k := range s.Machines {
			m := &s.Machines[k]
			if s.decision(m, x) > 0 {
				votes[m.Pos]++
			} else {
				votes[m.Neg]++
			}
		}
		out[i] = s.Labels[argmax(votes)]
	}

	return out, nil
}

// svcState has the fields of SVC without its gob hooks
type svcState SVC

// MarshalBinary implements encoding.BinaryMarshaler using gob
func (s *SVC) MarshalBinary() ([]byte, error) {
	return encodeState((*svcState)(s))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob
func (s *SVC) UnmarshalBinary(data []byte) error {
	var state svcState
	if err := decodeState(data, &state); err != nil {
		return err
	}
	*s = SVC(state)
	return nil
}
