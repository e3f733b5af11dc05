package retrieval

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/innocurve/inoclone/internal/storage"
)

const defaultTopN = 2

// ChunkSearcher is the candidate-filter query the Retriever needs.
// Implemented by storage.Store.
type ChunkSearcher interface {
	SearchChunks(tokens []string) ([]storage.KnowledgeChunk, error)
}

// ScoredChunk pairs a knowledge chunk with its relevance score for one
// query. Scores are non-negative and never persisted.
type ScoredChunk struct {
	Chunk storage.KnowledgeChunk
	Score int
}

// Retriever finds knowledge chunks relevant to a chat question by keyword
// scoring: +2 for each query token appearing in the chunk text, +1 more for
// an exact keyword-tag match.
type Retriever struct {
	store ChunkSearcher
	topN  int
}

// NewRetriever creates a Retriever over the given chunk store. If topN <= 0,
// the default (2) is used.
func NewRetriever(store ChunkSearcher, topN int) *Retriever {
	if topN <= 0 {
		topN = defaultTopN
	}
	return &Retriever{store: store, topN: topN}
}

// RelevantContext returns the text of the top-scoring chunks for the
// question, joined with blank lines. It returns "" when the question
// produces no usable tokens, when nothing matches, or when the store fails —
// a retrieval failure must never abort the conversation.
func (r *Retriever) RelevantContext(question string) string {
	tokens := Tokenize(question)
	if len(tokens) == 0 {
		return ""
	}

	chunks, err := r.store.SearchChunks(tokens)
	if err != nil {
		slog.Warn("knowledge chunk search failed", "error", err)
		return ""
	}

	scored := Score(chunks, tokens)
	if len(scored) > r.topN {
		scored = scored[:r.topN]
	}

	parts := make([]string, len(scored))
	for i, sc := range scored {
		parts[i] = sc.Chunk.Content
	}
	return strings.Join(parts, "\n\n")
}

// Score ranks candidate chunks against the query tokens, highest first.
// The sort is stable: chunks with equal scores keep their retrieval order.
// Chunks that match no token at all are dropped.
func Score(chunks []storage.KnowledgeChunk, tokens []string) []ScoredChunk {
	var scored []ScoredChunk
	for _, chunk := range chunks {
		content := strings.ToLower(chunk.Content)

		score := 0
		for _, tok := range tokens {
			lower := strings.ToLower(tok)
			if strings.Contains(content, lower) {
				score += 2
			}
			for _, kw := range chunk.Keywords {
				if strings.ToLower(kw) == lower {
					score++
					break
				}
			}
		}
		if score == 0 {
			continue
		}
		scored = append(scored, ScoredChunk{Chunk: chunk, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
