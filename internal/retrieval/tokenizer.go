package retrieval

import (
	"regexp"
	"unicode/utf8"
)

// stopWords are tokens carrying no retrieval signal, mostly Korean
// particles and copula forms extracted during document ingestion.
var stopWords = map[string]struct{}{
	"이": {}, "그": {}, "저": {}, "것": {}, "수": {}, "등": {},
	"및": {}, "를": {}, "이다": {}, "입니다": {}, "했다": {}, "했습니다": {},
}

var tokenSplit = regexp.MustCompile(`[\s,.]+`)

// Tokenize splits free text on whitespace, commas and periods, dropping
// single-character tokens and stop words. The result may be empty; an empty
// token list is a valid outcome, not an error.
func Tokenize(text string) []string {
	var tokens []string
	for _, tok := range tokenSplit.Split(text, -1) {
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
