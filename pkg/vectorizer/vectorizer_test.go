package vectorizer

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/redditscore/textclf/pkg/learning"
)

var corpus = []string{
	"free money now",
	"meeting notes for the project",
	"free prize money",
}

func TestNewSelectsKind(t *testing.T) {
	tests := []struct {
		tfidf  bool
		ngrams int
		kind   Kind
	}{
		{true, 1, KindTfidf},
		{false, 1, KindCount},
		{true, 3, KindTfidf},
		{false, 2, KindCount},
	}

	for _, tt := range tests {
		v := New(tt.tfidf, tt.ngrams)
		if v.Kind() != tt.kind {
			t.Errorf("New(%v, %d).Kind() = %s, expected %s", tt.tfidf, tt.ngrams, v.Kind(), tt.kind)
		}
		if v.Ngrams() != tt.ngrams {
			t.Errorf("New(%v, %d).Ngrams() = %d", tt.tfidf, tt.ngrams, v.Ngrams())
		}
	}
}

func TestCountVectorizer(t *testing.T) {
	cv := NewCountVectorizer(2)

	if _, err := cv.Transform(corpus); !errors.Is(err, learning.ErrNotFitted) {
		t.Errorf("Expected ErrNotFitted before Fit, got %v", err)
	}

	rows, err := cv.FitTransform(corpus)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	if len(rows) != len(corpus) {
		t.Fatalf("Expected %d rows, got %d", len(corpus), len(rows))
	}

	vocab := cv.Vocabulary()
	for _, term := range []string{"free", "money", "free money", "free prize"} {
		if _, ok := vocab[term]; !ok {
			t.Errorf("Expected %q in vocabulary", term)
		}
	}

	if got := rows[0].At(vocab["free money"]); got != 1 {
		t.Errorf("Count of 'free money' in doc 0 = %v, expected 1", got)
	}

	unseen, err := cv.Transform([]string{"free free unseen"})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if unseen[0].Len() != 1 || unseen[0].At(vocab["free"]) != 2 {
		t.Errorf("Unexpected row for unseen terms: %+v", unseen[0])
	}

	if err := NewCountVectorizer(1).Fit([]string{"", "!"}); err == nil {
		t.Error("Expected error for empty vocabulary")
	}
}

func TestTfidfVectorizer(t *testing.T) {
	tv := NewTfidfVectorizer(1)
	rows, err := tv.FitTransform(corpus)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	for i, row := range rows {
		if norm := math.Sqrt(row.SquaredNorm()); math.Abs(norm-1) > 1e-9 {
			t.Errorf("Row %d norm = %v, expected 1", i, norm)
		}
	}

	vocab := tv.Vocabulary()
	idf := tv.IDF()
	// "free" appears in 2 of 3 docs, "meeting" in 1
	if want := math.Log(4.0/3.0) + 1; math.Abs(idf[vocab["free"]]-want) > 1e-12 {
		t.Errorf("idf(free) = %v, expected %v", idf[vocab["free"]], want)
	}
	if want := math.Log(4.0/2.0) + 1; math.Abs(idf[vocab["meeting"]]-want) > 1e-12 {
		t.Errorf("idf(meeting) = %v, expected %v", idf[vocab["meeting"]], want)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, v := range []Vectorizer{NewCountVectorizer(2), NewTfidfVectorizer(3)} {
		t.Run(string(v.Kind()), func(t *testing.T) {
			want, err := v.FitTransform(corpus)
			if err != nil {
				t.Fatalf("FitTransform failed: %v", err)
			}

			data, err := v.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary failed: %v", err)
			}
			restored, err := Decode(v.Kind(), data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if restored.Ngrams() != v.Ngrams() {
				t.Errorf("Ngrams = %d, expected %d", restored.Ngrams(), v.Ngrams())
			}
			if !reflect.DeepEqual(restored.Analyze("alpha beta gamma delta"), v.Analyze("alpha beta gamma delta")) {
				t.Error("Analyzer not rebuilt from n-gram order")
			}

			got, err := restored.Transform(corpus)
			if err != nil {
				t.Fatalf("Transform failed: %v", err)
			}
			for i := range want {
				if !got[i].Equal(want[i]) {
					t.Errorf("Row %d differs after round trip", i)
				}
			}
		})
	}

	if _, err := Decode("hashing", nil); err == nil {
		t.Error("Expected error for unknown kind")
	}
}
