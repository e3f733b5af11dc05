package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/innocurve/inoclone/internal/composer"
	"github.com/innocurve/inoclone/internal/openai"
	"github.com/innocurve/inoclone/internal/persona"
	"github.com/innocurve/inoclone/internal/storage"
)

const defaultGenerationTimeout = 30 * time.Second

// ErrNoUserMessage is returned when the request contains no user-authored
// turn to answer.
var ErrNoUserMessage = errors.New("no user message in request")

// Turn is one role-tagged message of the incoming conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces one assistant completion for an ordered message list.
// Implemented by openai.Client.
type Generator interface {
	Chat(ctx context.Context, messages []openai.Message) (string, error)
}

// PersonResolver finds a mentioned person in a message, degrading to nil.
// Implemented by persona.Resolver.
type PersonResolver interface {
	Resolve(ctx context.Context, message string) *persona.Person
}

// ContextRetriever returns grounding text for a question, degrading to "".
// Implemented by retrieval.Retriever.
type ContextRetriever interface {
	RelevantContext(question string) string
}

// OwnerStore is the storage access the orchestrator needs.
// Implemented by storage.Store.
type OwnerStore interface {
	GetOwner(id int64) (storage.Owner, error)
	ListProjects(ownerID int64) ([]storage.Project, error)
	ListExperiences(ownerID int64) ([]storage.Experience, error)
	AppendChatTurn(t storage.ChatTurn) error
}

// Metadata captures diagnostic information about one orchestrated exchange.
type Metadata struct {
	PersonResolved bool
	KnowledgeUsed  bool
	DurationMs     int64
}

// Orchestrator runs the conversational pipeline: entity resolution, owner
// retrieval, knowledge scoring, prompt assembly, generation, and history
// persistence.
type Orchestrator struct {
	store      OwnerStore
	resolver   PersonResolver
	retriever  ContextRetriever
	composer   *composer.Composer
	generator  Generator
	genTimeout time.Duration
}

// NewOrchestrator wires the pipeline components together.
func NewOrchestrator(store OwnerStore, resolver PersonResolver, retriever ContextRetriever, comp *composer.Composer, generator Generator) *Orchestrator {
	return &Orchestrator{
		store:      store,
		resolver:   resolver,
		retriever:  retriever,
		composer:   comp,
		generator:  generator,
		genTimeout: defaultGenerationTimeout,
	}
}

// Chat answers the last user message of the conversation as the owner's
// clone. The primary owner is mandatory: if their profile cannot be loaded
// the whole request fails. Mentioned-person resolution, knowledge retrieval
// and professional-record loading all degrade silently. The user's turn is
// persisted after generation; a persistence failure is logged but the reply
// is still returned.
func (o *Orchestrator) Chat(ctx context.Context, ownerID int64, turns []Turn) (reply string, meta Metadata, err error) {
	start := time.Now()
	defer func() {
		meta.DurationMs = time.Since(start).Milliseconds()
	}()

	query := lastUserMessage(turns)
	if query == "" {
		return "", meta, ErrNoUserMessage
	}

	// Entity resolution, owner bundle and knowledge retrieval are
	// independent reads; fire them all and join. Only the owner fetch can
	// fail the request.
	var (
		mentioned   *persona.Person
		owner       storage.Owner
		experiences []storage.Experience
		projects    []storage.Project
		knowledge   string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mentioned = o.resolver.Resolve(gctx, query)
		return nil
	})
	g.Go(func() error {
		var err error
		owner, err = o.store.GetOwner(ownerID)
		if err != nil {
			return fmt.Errorf("loading owner %d: %w", ownerID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		experiences, err = o.store.ListExperiences(ownerID)
		if err != nil {
			slog.Warn("loading owner experiences failed", "owner_id", ownerID, "error", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		projects, err = o.store.ListProjects(ownerID)
		if err != nil {
			slog.Warn("loading owner projects failed", "owner_id", ownerID, "error", err)
		}
		return nil
	})
	g.Go(func() error {
		knowledge = o.retriever.RelevantContext(query)
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", meta, err
	}
	meta.PersonResolved = mentioned != nil
	meta.KnowledgeUsed = knowledge != ""

	prompt := o.composer.Build(owner, experiences, projects, knowledge, mentioned)

	messages := make([]openai.Message, 0, len(turns)+1)
	messages = append(messages, openai.Message{Role: "system", Content: prompt})
	for _, t := range turns {
		messages = append(messages, openai.Message{Role: t.Role, Content: t.Content})
	}

	genCtx, cancel := context.WithTimeout(ctx, o.genTimeout)
	defer cancel()

	reply, err = o.generator.Chat(genCtx, messages)
	if err != nil {
		return "", meta, fmt.Errorf("generation failed: %w", err)
	}

	// Reply delivery takes priority over durability of the history write.
	turn := storage.ChatTurn{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Role:      "user",
		Content:   query,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.store.AppendChatTurn(turn); err != nil {
		slog.Warn("persisting chat turn failed", "owner_id", ownerID, "error", err)
	}

	slog.Debug("chat exchange complete",
		"person_resolved", meta.PersonResolved,
		"knowledge_used", meta.KnowledgeUsed,
	)

	return reply, meta, nil
}

// lastUserMessage returns the content of the last user-authored turn, or "".
func lastUserMessage(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" {
			return turns[i].Content
		}
	}
	return ""
}
