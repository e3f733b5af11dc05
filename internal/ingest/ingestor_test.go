package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/innocurve/inoclone/internal/storage"
)

type mockChunkStore struct {
	saveFn func(c storage.KnowledgeChunk) error
	saved  []storage.KnowledgeChunk
}

func (m *mockChunkStore) SaveChunk(c storage.KnowledgeChunk) error {
	m.saved = append(m.saved, c)
	if m.saveFn == nil {
		return nil
	}
	return m.saveFn(c)
}

func TestIngestText(t *testing.T) {
	store := &mockChunkStore{}
	in := NewIngestor(store)

	count, err := in.IngestText("이노커브는 AI 컨설팅 회사입니다. 2022년에 설립되었습니다.", "company-intro")
	if err != nil {
		t.Fatalf("IngestText failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d chunks", len(store.saved))
	}

	chunk := store.saved[0]
	if chunk.ID == "" {
		t.Error("chunk has no ID")
	}
	if chunk.Source != "company-intro" {
		t.Errorf("source = %q", chunk.Source)
	}
	if len(chunk.Keywords) == 0 {
		t.Error("chunk has no extracted keywords")
	}
	if chunk.CreatedAt.IsZero() {
		t.Error("chunk has no creation time")
	}
}

func TestIngestTextStoreFailure(t *testing.T) {
	store := &mockChunkStore{
		saveFn: func(c storage.KnowledgeChunk) error {
			return errors.New("disk full")
		},
	}
	in := NewIngestor(store)

	if _, err := in.IngestText("실패할 문장입니다.", "x"); err == nil {
		t.Fatal("IngestText succeeded despite store failure")
	}
}

func TestIngestFilePlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("메모 첫 줄입니다. 메모 둘째 줄입니다."), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	store := &mockChunkStore{}
	in := NewIngestor(store)

	count, err := in.IngestFile(path)
	if err != nil {
		t.Fatalf("IngestFile failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if store.saved[0].Source != "notes.txt" {
		t.Errorf("source = %q, want the base filename", store.saved[0].Source)
	}
}

func TestIngestFileMissing(t *testing.T) {
	in := NewIngestor(&mockChunkStore{})
	if _, err := in.IngestFile("/nonexistent/file.txt"); err == nil {
		t.Fatal("IngestFile succeeded for a missing file")
	}
}
