package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldReplacer = strings.NewReplacer(
	"ł", "l", "Ł", "L",
	"đ", "dj", "Đ", "Dj",
	"ď", "dj", "Ď", "Dj",
	"ß", "ss",
)

// FoldAccents strips diacritics so that "Zażółć" can be found by typing
// "zazolc". Letters that do not decompose into a base letter plus combining
// marks are mapped explicitly.
func FoldAccents(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, foldReplacer.Replace(value))
	if err != nil {
		return value
	}

	return folded
}

// MatchesQuery reports whether a stop name matches a free-form search query.
// A single-word query matches anywhere in the name. A multi-word query
// matches each word as a prefix of consecutive (possibly skipped) name words,
// in order. Comparison is case and accent insensitive.
func MatchesQuery(name string, query string) bool {
	foldedName := strings.ToLower(FoldAccents(name))
	foldedQuery := strings.ToLower(FoldAccents(query))

	queryWords := strings.Fields(foldedQuery)
	if len(queryWords) <= 1 {
		return strings.Contains(foldedName, foldedQuery)
	}

	nameWords := strings.Fields(foldedName)

	wordIndex := 0
	for _, queryWord := range queryWords {
		found := false
		for ; wordIndex < len(nameWords); wordIndex++ {
			if strings.HasPrefix(nameWords[wordIndex], queryWord) {
				found = true
				wordIndex++
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}
