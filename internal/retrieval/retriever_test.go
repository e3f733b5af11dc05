package retrieval

import (
	"errors"
	"strings"
	"testing"

	"github.com/innocurve/inoclone/internal/storage"
)

type mockSearcher struct {
	searchFn func(tokens []string) ([]storage.KnowledgeChunk, error)
}

func (m *mockSearcher) SearchChunks(tokens []string) ([]storage.KnowledgeChunk, error) {
	return m.searchFn(tokens)
}

func TestScore(t *testing.T) {
	chunks := []storage.KnowledgeChunk{
		{ID: "a", Content: "이노커브는 AI 컨설팅 회사입니다.", Keywords: []string{"이노커브는", "컨설팅"}},
		{ID: "b", Content: "점심 메뉴 추천", Keywords: []string{"점심"}},
		{ID: "c", Content: "컨설팅 프로세스 안내", Keywords: nil},
	}

	scored := Score(chunks, []string{"컨설팅"})

	if len(scored) != 2 {
		t.Fatalf("len(scored) = %d, want 2", len(scored))
	}
	// Chunk a: substring (+2) and exact tag (+1). Chunk c: substring only.
	if scored[0].Chunk.ID != "a" || scored[0].Score != 3 {
		t.Errorf("top = %s score %d, want a score 3", scored[0].Chunk.ID, scored[0].Score)
	}
	if scored[1].Chunk.ID != "c" || scored[1].Score != 2 {
		t.Errorf("second = %s score %d, want c score 2", scored[1].Chunk.ID, scored[1].Score)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	chunks := []storage.KnowledgeChunk{
		{ID: "a", Content: "Wrote the backend in Go and Python.", Keywords: []string{"GO"}},
	}

	scored := Score(chunks, []string{"go"})

	if len(scored) != 1 {
		t.Fatalf("len(scored) = %d, want 1", len(scored))
	}
	if scored[0].Score != 3 {
		t.Errorf("score = %d, want 3", scored[0].Score)
	}
}

func TestScoreStableTies(t *testing.T) {
	chunks := []storage.KnowledgeChunk{
		{ID: "first", Content: "컨설팅 상담 안내"},
		{ID: "second", Content: "컨설팅 비용 안내"},
		{ID: "third", Content: "컨설팅 절차 안내"},
	}

	scored := Score(chunks, []string{"컨설팅"})

	if len(scored) != 3 {
		t.Fatalf("len(scored) = %d, want 3", len(scored))
	}
	for i, wantID := range []string{"first", "second", "third"} {
		if scored[i].Chunk.ID != wantID {
			t.Errorf("scored[%d].ID = %s, want %s (equal scores must keep input order)", i, scored[i].Chunk.ID, wantID)
		}
	}
}

func TestScoreDropsNonMatching(t *testing.T) {
	chunks := []storage.KnowledgeChunk{
		{ID: "a", Content: "전혀 무관한 내용"},
	}
	if scored := Score(chunks, []string{"컨설팅"}); len(scored) != 0 {
		t.Errorf("len(scored) = %d, want 0", len(scored))
	}
}

func TestRelevantContextJoinsTopChunks(t *testing.T) {
	store := &mockSearcher{
		searchFn: func(tokens []string) ([]storage.KnowledgeChunk, error) {
			return []storage.KnowledgeChunk{
				{ID: "low", Content: "컨설팅 개요", Keywords: nil},
				{ID: "high", Content: "이노커브 컨설팅 상세", Keywords: []string{"이노커브"}},
				{ID: "mid", Content: "이노커브 연혁", Keywords: nil},
			}, nil
		},
	}
	r := NewRetriever(store, 2)

	got := r.RelevantContext("이노커브 컨설팅 문의")

	want := "이노커브 컨설팅 상세\n\n컨설팅 개요"
	if got != want {
		t.Errorf("RelevantContext = %q, want %q", got, want)
	}
}

func TestRelevantContextEmptyQuestion(t *testing.T) {
	store := &mockSearcher{
		searchFn: func(tokens []string) ([]storage.KnowledgeChunk, error) {
			t.Fatal("SearchChunks should not be called for an empty token set")
			return nil, nil
		},
	}
	r := NewRetriever(store, 0)

	if got := r.RelevantContext("이 그 저"); got != "" {
		t.Errorf("RelevantContext = %q, want empty", got)
	}
}

func TestRelevantContextDegradesOnStoreError(t *testing.T) {
	store := &mockSearcher{
		searchFn: func(tokens []string) ([]storage.KnowledgeChunk, error) {
			return nil, errors.New("db locked")
		},
	}
	r := NewRetriever(store, 0)

	if got := r.RelevantContext("이노커브 컨설팅"); got != "" {
		t.Errorf("RelevantContext = %q, want empty on store failure", got)
	}
}

func TestRelevantContextNoMatches(t *testing.T) {
	store := &mockSearcher{
		searchFn: func(tokens []string) ([]storage.KnowledgeChunk, error) {
			return nil, nil
		},
	}
	r := NewRetriever(store, 0)

	if got := r.RelevantContext("이노커브"); got != "" {
		t.Errorf("RelevantContext = %q, want empty", got)
	}
}

func TestRelevantContextNonHangulQuery(t *testing.T) {
	var gotTokens []string
	store := &mockSearcher{
		searchFn: func(tokens []string) ([]storage.KnowledgeChunk, error) {
			gotTokens = tokens
			return []storage.KnowledgeChunk{
				{ID: "a", Content: "hello world greeting guide", Keywords: []string{"hello"}},
			}, nil
		},
	}
	r := NewRetriever(store, 0)

	got := r.RelevantContext("hello there")
	if !strings.Contains(got, "hello world") {
		t.Errorf("RelevantContext = %q, want the matching chunk", got)
	}
	if len(gotTokens) != 2 {
		t.Errorf("tokens = %v, want 2 tokens", gotTokens)
	}
}
