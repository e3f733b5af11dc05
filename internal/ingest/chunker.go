package ingest

import (
	"regexp"
	"sort"
	"strings"

	"github.com/innocurve/inoclone/internal/retrieval"
)

const (
	defaultMaxChunkSize = 1000
	maxKeywords         = 10
)

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)

// SplitIntoChunks breaks text into sentence-aligned chunks of at most
// maxChunkSize bytes. Sentences are never split; a chunk is flushed when the
// next sentence would push it over the limit.
func SplitIntoChunks(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = defaultMaxChunkSize
	}

	sentences := sentenceRe.FindAllString(text, -1)
	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		if current.Len()+len(sentence) > maxChunkSize && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

// ExtractKeywords returns the most frequent significant tokens of the text,
// at most 10, most frequent first. Tokenization matches the retrieval
// tokenizer so stored tags line up with query tokens.
func ExtractKeywords(text string) []string {
	tokens := retrieval.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	frequency := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if frequency[tok] == 0 {
			order = append(order, tok)
		}
		frequency[tok]++
	}

	// Stable sort keeps first-seen order for equal frequencies.
	sort.SliceStable(order, func(i, j int) bool {
		return frequency[order[i]] > frequency[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}
