// Package analyzer turns raw documents into word n-gram features.
package analyzer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Analyzer maps a document to the features a vectorizer counts
type Analyzer func(doc string) []string

// tokenPattern selects runs of two or more letters, digits or underscores in any script
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_][\p{L}\p{M}\p{N}_]+`)

// Tokenize lower-cases the document, strips accents and splits it into word tokens
func Tokenize(doc string) []string {
	text := strings.ToLower(stripAccents(doc))
	return tokenPattern.FindAllString(text, -1)
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// WordNgrams returns all word n-grams of orders minN through maxN.
// Lower orders come first; tokens inside an n-gram are joined by a space.
func WordNgrams(tokens []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		return nil
	}

	var grams []string
	if minN == 1 {
		grams = append(grams, tokens...)
		minN = 2
	}

	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}

	return grams
}

// Build returns an analyzer producing word n-grams of orders 1 through n
func Build(n int) Analyzer {
	if n < 1 {
		n = 1
	}
	return func(doc string) []string {
		return WordNgrams(Tokenize(doc), 1, n)
	}
}
