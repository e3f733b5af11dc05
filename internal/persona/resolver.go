package persona

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/innocurve/inoclone/internal/storage"
)

// Directory is the profile-store access the Resolver needs.
// Implemented by storage.Store.
type Directory interface {
	FindOwnersBySuffix(suffix string) ([]storage.Owner, error)
	FindOwnerByName(name, alt string) (storage.Owner, error)
	ListProjects(ownerID int64) ([]storage.Project, error)
	ListExperiences(ownerID int64) ([]storage.Experience, error)
}

// Person is a resolved mentioned person: their profile, professional
// records, and the honorific to use when referring to them.
type Person struct {
	Owner       storage.Owner
	Projects    []storage.Project
	Experiences []storage.Experience
	Honorific   string
}

// Resolver detects a person named in a chat message and resolves them to a
// full profile. Resolution always degrades to "no person" on failure; it
// must never fail the conversation.
type Resolver struct {
	store          Directory
	matchers       []NameMatcher
	representative string // owner name addressed as 대표님
}

// NewResolver creates a Resolver with the default matcher chain.
// representative is the full name of the company representative, who gets
// the 대표님 honorific; everyone else gets 님.
func NewResolver(store Directory, representative string) *Resolver {
	return &Resolver{
		store:          store,
		matchers:       defaultMatchers(),
		representative: representative,
	}
}

// ExtractName runs the matcher chain over the message and returns the first
// extracted name with its trailing particle stripped, or "" when no matcher
// fires.
func (r *Resolver) ExtractName(message string) string {
	for _, m := range r.matchers {
		if name, ok := m.Match(message); ok {
			return StripParticle(name)
		}
	}
	return ""
}

// Resolve extracts a mentioned person from the message and looks up their
// profile, projects and experiences. Returns nil when the message names
// nobody, when no profile matches, or when the store fails.
func (r *Resolver) Resolve(ctx context.Context, message string) *Person {
	name := r.ExtractName(message)
	if name == "" {
		return nil
	}

	// A 2-syllable candidate is treated as a surname-stripped given name.
	if utf8.RuneCountInString(name) == 2 {
		name = r.resolveFullName(name)
	}

	owner, err := r.store.FindOwnerByName(name, strings.TrimSuffix(name, "이"))
	if errors.Is(err, storage.ErrNotFound) {
		slog.Debug("no owner found for mentioned name", "name", name)
		return nil
	}
	if err != nil {
		slog.Warn("mentioned person lookup failed", "name", name, "error", err)
		return nil
	}

	person := &Person{Owner: owner, Honorific: r.honorific(owner.Name)}

	// Projects and experiences are independent reads; fetch both
	// concurrently and let either fail without dropping the other.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		projects, err := r.store.ListProjects(owner.ID)
		if err != nil {
			slog.Warn("loading mentioned person projects failed", "owner_id", owner.ID, "error", err)
			return nil
		}
		person.Projects = projects
		return nil
	})
	g.Go(func() error {
		experiences, err := r.store.ListExperiences(owner.ID)
		if err != nil {
			slog.Warn("loading mentioned person experiences failed", "owner_id", owner.ID, "error", err)
			return nil
		}
		person.Experiences = experiences
		return nil
	})
	g.Wait()

	return person
}

// resolveFullName finds full names ending with the partial name and returns
// the shortest match, falling back to the partial name unchanged.
func (r *Resolver) resolveFullName(partial string) string {
	owners, err := r.store.FindOwnersBySuffix(partial)
	if err != nil {
		slog.Warn("full name lookup failed", "partial", partial, "error", err)
		return partial
	}
	if len(owners) == 0 {
		return partial
	}

	// The shortest full name is the closest match.
	sort.SliceStable(owners, func(i, j int) bool {
		return len(owners[i].Name) < len(owners[j].Name)
	})
	return owners[0].Name
}

func (r *Resolver) honorific(name string) string {
	if name == r.representative {
		return "대표님"
	}
	return "님"
}
