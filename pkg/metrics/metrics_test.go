package metrics

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		truth []string
		pred  []string
		want  float64
	}{
		{"all correct", []string{"a", "b"}, []string{"a", "b"}, 1},
		{"half", []string{"a", "b", "a", "b"}, []string{"a", "a", "b", "b"}, 0.5},
		{"none", []string{"a"}, []string{"b"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.truth, tt.pred)
			if err != nil {
				t.Fatalf("Accuracy failed: %v", err)
			}
			if !approx(got, tt.want) {
				t.Errorf("Accuracy = %v, expected %v", got, tt.want)
			}
		})
	}

	if _, err := Accuracy([]string{"a"}, nil); err == nil {
		t.Error("Expected error for length mismatch")
	}
	if _, err := Accuracy(nil, nil); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestEvaluate(t *testing.T) {
	truth := []string{"spam", "spam", "spam", "ham", "ham", "ham"}
	pred := []string{"spam", "spam", "ham", "ham", "ham", "spam"}

	r, err := Evaluate(truth, pred)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(r.Labels) != 2 || r.Labels[0] != "ham" {
		t.Fatalf("Labels = %v", r.Labels)
	}
	if !approx(r.Accuracy, 4.0/6.0) {
		t.Errorf("Accuracy = %v", r.Accuracy)
	}
	if r.Confusion.At(1, 0) != 1 || r.Confusion.At(1, 1) != 2 {
		t.Errorf("Unexpected confusion row for spam: %v %v", r.Confusion.At(1, 0), r.Confusion.At(1, 1))
	}

	spam := r.Classes[1]
	if !approx(spam.Precision, 2.0/3.0) || !approx(spam.Recall, 2.0/3.0) || spam.Support != 3 {
		t.Errorf("Unexpected spam stats %+v", spam)
	}
	if !approx(r.MacroF1, 2.0/3.0) {
		t.Errorf("MacroF1 = %v", r.MacroF1)
	}
}

func TestEvaluateUnseenPrediction(t *testing.T) {
	r, err := Evaluate([]string{"a", "a"}, []string{"a", "z"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	z := r.Classes[1]
	if z.Label != "z" || z.Support != 0 || z.Recall != 0 || z.Precision != 0 || z.F1 != 0 {
		t.Errorf("Unexpected stats for label never in truth: %+v", z)
	}
}

func TestPrint(t *testing.T) {
	r, err := Evaluate([]string{"ham", "spam"}, []string{"ham", "spam"})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	r.Print(&buf)
	out := buf.String()
	for _, want := range []string{"precision", "ham", "spam", "accuracy", "1.000"} {
		if !strings.Contains(out, want) {
			t.Errorf("Report missing %q:\n%s", want, out)
		}
	}
}
