package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/innocurve/inoclone/internal/composer"
	"github.com/innocurve/inoclone/internal/openai"
	"github.com/innocurve/inoclone/internal/persona"
	"github.com/innocurve/inoclone/internal/storage"
)

type mockStore struct {
	getOwnerFn    func(id int64) (storage.Owner, error)
	projectsFn    func(ownerID int64) ([]storage.Project, error)
	experiencesFn func(ownerID int64) ([]storage.Experience, error)
	appendFn      func(t storage.ChatTurn) error

	appended []storage.ChatTurn
}

func (m *mockStore) GetOwner(id int64) (storage.Owner, error) {
	if m.getOwnerFn == nil {
		return storage.Owner{ID: id, Name: "정민기"}, nil
	}
	return m.getOwnerFn(id)
}

func (m *mockStore) ListProjects(ownerID int64) ([]storage.Project, error) {
	if m.projectsFn == nil {
		return nil, nil
	}
	return m.projectsFn(ownerID)
}

func (m *mockStore) ListExperiences(ownerID int64) ([]storage.Experience, error) {
	if m.experiencesFn == nil {
		return nil, nil
	}
	return m.experiencesFn(ownerID)
}

func (m *mockStore) AppendChatTurn(t storage.ChatTurn) error {
	m.appended = append(m.appended, t)
	if m.appendFn == nil {
		return nil
	}
	return m.appendFn(t)
}

type mockResolver struct {
	resolveFn func(ctx context.Context, message string) *persona.Person
}

func (m *mockResolver) Resolve(ctx context.Context, message string) *persona.Person {
	if m.resolveFn == nil {
		return nil
	}
	return m.resolveFn(ctx, message)
}

type mockRetriever struct {
	contextFn func(question string) string
}

func (m *mockRetriever) RelevantContext(question string) string {
	if m.contextFn == nil {
		return ""
	}
	return m.contextFn(question)
}

type mockGenerator struct {
	chatFn   func(ctx context.Context, messages []openai.Message) (string, error)
	messages []openai.Message
}

func (m *mockGenerator) Chat(ctx context.Context, messages []openai.Message) (string, error) {
	m.messages = messages
	if m.chatFn == nil {
		return "안녕하세요!", nil
	}
	return m.chatFn(ctx, messages)
}

func newTestOrchestrator(store *mockStore, resolver *mockResolver, retriever *mockRetriever, gen *mockGenerator) *Orchestrator {
	return NewOrchestrator(store, resolver, retriever, composer.New("정민기"), gen)
}

func TestChatHappyPath(t *testing.T) {
	store := &mockStore{}
	gen := &mockGenerator{}
	o := newTestOrchestrator(store, &mockResolver{}, &mockRetriever{}, gen)

	turns := []Turn{
		{Role: "user", Content: "안녕하세요"},
		{Role: "assistant", Content: "반갑습니다"},
		{Role: "user", Content: "회사 소개해 주세요"},
	}
	reply, meta, err := o.Chat(context.Background(), 1, turns)
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if reply != "안녕하세요!" {
		t.Errorf("reply = %q", reply)
	}
	if meta.PersonResolved || meta.KnowledgeUsed {
		t.Errorf("meta = %+v, want nothing resolved or used", meta)
	}

	// System instruction first, then the conversation verbatim.
	if len(gen.messages) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(gen.messages))
	}
	if gen.messages[0].Role != "system" {
		t.Errorf("messages[0].Role = %q, want system", gen.messages[0].Role)
	}
	if !strings.Contains(gen.messages[0].Content, "정민기의 AI 클론") {
		t.Error("system instruction missing the owner identity")
	}
	if gen.messages[3].Content != "회사 소개해 주세요" {
		t.Errorf("messages[3].Content = %q", gen.messages[3].Content)
	}

	// Only the user's last message is persisted.
	if len(store.appended) != 1 {
		t.Fatalf("appended %d turns, want 1", len(store.appended))
	}
	if got := store.appended[0]; got.Role != "user" || got.Content != "회사 소개해 주세요" || got.OwnerID != 1 {
		t.Errorf("persisted turn = %+v", got)
	}
	if store.appended[0].ID == "" {
		t.Error("persisted turn has no ID")
	}
}

func TestChatNoUserMessage(t *testing.T) {
	o := newTestOrchestrator(&mockStore{}, &mockResolver{}, &mockRetriever{}, &mockGenerator{})

	_, _, err := o.Chat(context.Background(), 1, []Turn{{Role: "assistant", Content: "hi"}})
	if !errors.Is(err, ErrNoUserMessage) {
		t.Errorf("err = %v, want ErrNoUserMessage", err)
	}
}

func TestChatOwnerLoadFailureIsFatal(t *testing.T) {
	store := &mockStore{
		getOwnerFn: func(id int64) (storage.Owner, error) {
			return storage.Owner{}, errors.New("db locked")
		},
	}
	o := newTestOrchestrator(store, &mockResolver{}, &mockRetriever{}, &mockGenerator{})

	_, _, err := o.Chat(context.Background(), 1, []Turn{{Role: "user", Content: "안녕"}})
	if err == nil {
		t.Fatal("Chat succeeded without an owner profile")
	}
}

func TestChatDegradedReadsStillAnswer(t *testing.T) {
	store := &mockStore{
		projectsFn: func(ownerID int64) ([]storage.Project, error) {
			return nil, errors.New("db locked")
		},
		experiencesFn: func(ownerID int64) ([]storage.Experience, error) {
			return nil, errors.New("db locked")
		},
	}
	o := newTestOrchestrator(store, &mockResolver{}, &mockRetriever{}, &mockGenerator{})

	reply, meta, err := o.Chat(context.Background(), 1, []Turn{{Role: "user", Content: "프로젝트 알려줘"}})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if reply == "" {
		t.Error("reply is empty")
	}
	if meta.PersonResolved || meta.KnowledgeUsed {
		t.Errorf("meta = %+v", meta)
	}
}

func TestChatKnowledgeAndPersonInPrompt(t *testing.T) {
	resolver := &mockResolver{
		resolveFn: func(ctx context.Context, message string) *persona.Person {
			return &persona.Person{
				Owner:     storage.Owner{ID: 2, Name: "이재권"},
				Honorific: "님",
			}
		},
	}
	retriever := &mockRetriever{
		contextFn: func(question string) string {
			return "이노커브는 2022년에 설립되었습니다."
		},
	}
	gen := &mockGenerator{}
	o := newTestOrchestrator(&mockStore{}, resolver, retriever, gen)

	_, meta, err := o.Chat(context.Background(), 1, []Turn{{Role: "user", Content: "재권님이 언제 합류했나요?"}})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if !meta.PersonResolved || !meta.KnowledgeUsed {
		t.Errorf("meta = %+v, want person and knowledge flags set", meta)
	}

	system := gen.messages[0].Content
	if !strings.Contains(system, "이노커브는 2022년에 설립되었습니다.") {
		t.Error("system instruction missing retrieved knowledge")
	}
	if !strings.Contains(system, "이재권님의 정보:") {
		t.Error("system instruction missing mentioned-person block")
	}
}

func TestChatGenerationFailure(t *testing.T) {
	store := &mockStore{}
	gen := &mockGenerator{
		chatFn: func(ctx context.Context, messages []openai.Message) (string, error) {
			return "", errors.New("upstream 500")
		},
	}
	o := newTestOrchestrator(store, &mockResolver{}, &mockRetriever{}, gen)

	_, _, err := o.Chat(context.Background(), 1, []Turn{{Role: "user", Content: "안녕"}})
	if err == nil {
		t.Fatal("Chat succeeded despite generation failure")
	}
	if len(store.appended) != 0 {
		t.Errorf("appended %d turns after failed generation, want 0", len(store.appended))
	}
}

func TestChatPersistenceFailureStillReturnsReply(t *testing.T) {
	store := &mockStore{
		appendFn: func(turn storage.ChatTurn) error {
			return errors.New("disk full")
		},
	}
	o := newTestOrchestrator(store, &mockResolver{}, &mockRetriever{}, &mockGenerator{})

	reply, _, err := o.Chat(context.Background(), 1, []Turn{{Role: "user", Content: "안녕"}})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if reply == "" {
		t.Error("reply is empty")
	}
}
