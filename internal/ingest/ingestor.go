package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/innocurve/inoclone/internal/storage"
)

// ChunkStore is the persistence the Ingestor needs.
// Implemented by storage.Store.
type ChunkStore interface {
	SaveChunk(c storage.KnowledgeChunk) error
}

// Ingestor turns source documents into keyword-tagged knowledge chunks.
type Ingestor struct {
	store        ChunkStore
	maxChunkSize int
}

// NewIngestor creates an Ingestor with the default chunk size (1000 bytes).
func NewIngestor(store ChunkStore) *Ingestor {
	return &Ingestor{store: store, maxChunkSize: defaultMaxChunkSize}
}

// IngestText chunks the text, extracts keyword tags per chunk, and persists
// the chunks. Returns the number of chunks stored.
func (in *Ingestor) IngestText(text, source string) (int, error) {
	chunks := SplitIntoChunks(text, in.maxChunkSize)
	for _, content := range chunks {
		chunk := storage.KnowledgeChunk{
			ID:        uuid.New().String(),
			Content:   content,
			Keywords:  ExtractKeywords(content),
			Source:    source,
			CreatedAt: time.Now().UTC(),
		}
		if err := in.store.SaveChunk(chunk); err != nil {
			return 0, fmt.Errorf("saving chunk: %w", err)
		}
	}
	return len(chunks), nil
}

// IngestFile reads a PDF or plain-text file and ingests its content.
func (in *Ingestor) IngestFile(path string) (int, error) {
	var text string
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		extracted, err := extractPDFText(path)
		if err != nil {
			return 0, fmt.Errorf("extracting PDF text: %w", err)
		}
		text = extracted
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading file: %w", err)
		}
		text = string(data)
	}

	return in.IngestText(text, filepath.Base(path))
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", err
	}
	return buf.String(), nil
}
