package learning

import "sort"

// Vector is a sparse feature row. Indices are strictly increasing.
type Vector struct {
	Indices []int
	Values  []float64
}

// NewVector builds a sparse vector from a feature index -> value map
func NewVector(features map[int]float64) Vector {
	indices := make([]int, 0, len(features))
	for idx, val := range features {
		if val != 0 {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = features[idx]
	}

	return Vector{Indices: indices, Values: values}
}

// Len returns the number of stored (non-zero) entries
func (v Vector) Len() int {
	return len(v.Indices)
}

// At returns the value at feature index idx
func (v Vector) At(idx int) float64 {
	i := sort.SearchInts(v.Indices, idx)
	if i < len(v.Indices) && v.Indices[i] == idx {
		return v.Values[i]
	}
	return 0
}

// Dot returns the inner product of two sparse vectors
func (v Vector) Dot(o Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// SquaredNorm returns the squared euclidean norm
func (v Vector) SquaredNorm() float64 {
	var sum float64
	for _, val := range v.Values {
		sum += val * val
	}
	return sum
}

// Equal reports whether two vectors hold the same entries
func (v Vector) Equal(o Vector) bool {
	if len(v.Indices) != len(o.Indices) {
		return false
	}
	for i := range v.Indices {
		if v.Indices[i] != o.Indices[i] || v.Values[i] != o.Values[i] {
			return false
		}
	}
	return true
}
