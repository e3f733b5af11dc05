package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for owners, professional
// records, knowledge chunks, conversation history and reservations.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "inoclone.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// --- Owners ---

// GetOwner returns the owner with the given id, or ErrNotFound.
func (s *Store) GetOwner(id int64) (Owner, error) {
	row := s.db.QueryRow(`
		SELECT owner_id, name, age, hobbies, val, country, birth, created_at
		FROM owners WHERE owner_id = ?`, id)
	return scanOwner(row)
}

// FindOwnersBySuffix returns every owner whose full name ends with the given
// fragment. Used to resolve a surname-stripped partial name.
func (s *Store) FindOwnersBySuffix(suffix string) ([]Owner, error) {
	rows, err := s.db.Query(`
		SELECT owner_id, name, age, hobbies, val, country, birth, created_at
		FROM owners WHERE name LIKE '%' || ? ORDER BY owner_id`, suffix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []Owner
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

// FindOwnerByName returns at most one owner whose name contains name or alt
// as a substring, or ErrNotFound. alt may be empty.
func (s *Store) FindOwnerByName(name, alt string) (Owner, error) {
	if alt == "" {
		alt = name
	}
	row := s.db.QueryRow(`
		SELECT owner_id, name, age, hobbies, val, country, birth, created_at
		FROM owners WHERE name LIKE '%' || ? || '%' OR name LIKE '%' || ? || '%'
		ORDER BY owner_id LIMIT 1`, name, alt)
	return scanOwner(row)
}

// InsertOwner stores a new owner and returns its assigned id.
func (s *Store) InsertOwner(o Owner) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO owners (name, age, hobbies, val, country, birth, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.Name, o.Age, encodeStringList(o.Hobbies), o.Values, o.Country, o.Birth,
		timestamp(o.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOwner(row rowScanner) (Owner, error) {
	var o Owner
	var hobbies, createdAt string
	err := row.Scan(&o.ID, &o.Name, &o.Age, &hobbies, &o.Values, &o.Country, &o.Birth, &createdAt)
	if err == sql.ErrNoRows {
		return Owner{}, ErrNotFound
	}
	if err != nil {
		return Owner{}, err
	}
	o.Hobbies = decodeStringList(hobbies, "owners.hobbies")
	o.CreatedAt = parseTimestamp(createdAt)
	return o, nil
}

// --- Professional records ---

func (s *Store) ListProjects(ownerID int64) ([]Project, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, title, description, tech_stack, created_at
		FROM projects WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		var tech, createdAt string
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &tech, &createdAt); err != nil {
			return nil, err
		}
		p.TechStack = decodeStringList(tech, "projects.tech_stack")
		p.CreatedAt = parseTimestamp(createdAt)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) InsertProject(p Project) error {
	_, err := s.db.Exec(`
		INSERT INTO projects (owner_id, title, description, tech_stack, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.OwnerID, p.Title, p.Description, encodeStringList(p.TechStack), timestamp(p.CreatedAt),
	)
	return err
}

func (s *Store) ListExperiences(ownerID int64) ([]Experience, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, company, position, period, description, created_at
		FROM experiences WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experiences []Experience
	for rows.Next() {
		var e Experience
		var createdAt string
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Company, &e.Position, &e.Period, &e.Description, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTimestamp(createdAt)
		experiences = append(experiences, e)
	}
	return experiences, rows.Err()
}

func (s *Store) InsertExperience(e Experience) error {
	_, err := s.db.Exec(`
		INSERT INTO experiences (owner_id, company, position, period, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.OwnerID, e.Company, e.Position, e.Period, e.Description, timestamp(e.CreatedAt),
	)
	return err
}

// --- Knowledge chunks ---

// SearchChunks returns every chunk whose content or keyword list contains at
// least one of the given tokens, in insertion order. The per-token relevance
// scoring happens in the retrieval package; this is only the candidate
// filter (an OR of substring conditions, matching the original ilike/cs
// query shape).
func (s *Store) SearchChunks(tokens []string) ([]KnowledgeChunk, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	conds := make([]string, 0, len(tokens))
	args := make([]any, 0, len(tokens)*2)
	for _, tok := range tokens {
		conds = append(conds, "(content LIKE '%' || ? || '%' OR keywords LIKE '%' || ? || '%')")
		args = append(args, tok, tok)
	}

	query := `SELECT id, content, keywords, source, created_at FROM knowledge_chunks
		WHERE ` + strings.Join(conds, " OR ") + ` ORDER BY rowid`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []KnowledgeChunk
	for rows.Next() {
		var c KnowledgeChunk
		var keywords, createdAt string
		if err := rows.Scan(&c.ID, &c.Content, &keywords, &c.Source, &createdAt); err != nil {
			return nil, err
		}
		c.Keywords = decodeStringList(keywords, "knowledge_chunks.keywords")
		c.CreatedAt = parseTimestamp(createdAt)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *Store) SaveChunk(c KnowledgeChunk) error {
	_, err := s.db.Exec(`
		INSERT INTO knowledge_chunks (id, content, keywords, source, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Content, encodeStringList(c.Keywords), c.Source, timestamp(c.CreatedAt),
	)
	return err
}

func (s *Store) CountChunks() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM knowledge_chunks").Scan(&n)
	return n, err
}

// --- Conversation history ---

// ListChatHistory returns the owner's conversation turns in creation order.
func (s *Store) ListChatHistory(ownerID int64) ([]ChatTurn, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, role, content, created_at
		FROM chat_history WHERE owner_id = ? ORDER BY created_at ASC, rowid ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []ChatTurn
	for rows.Next() {
		var t ChatTurn
		var createdAt string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Role, &t.Content, &createdAt); err != nil {
			return nil, err
		}
		t.CreatedAt = parseTimestamp(createdAt)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *Store) AppendChatTurn(t ChatTurn) error {
	_, err := s.db.Exec(`
		INSERT INTO chat_history (id, owner_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Role, t.Content, timestamp(t.CreatedAt),
	)
	return err
}

// --- Reservations ---

func (s *Store) SaveReservation(r Reservation) error {
	var date any
	if !r.Date.IsZero() {
		date = r.Date.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(`
		INSERT INTO reservations (id, name, email, phone_number, date, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Email, r.PhoneNumber, date, r.Message, timestamp(r.CreatedAt),
	)
	return err
}

// --- Gallery ---

func (s *Store) GetGalleryItem(id int64) (GalleryItem, error) {
	var g GalleryItem
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, title, description, image_url, created_at
		FROM gallery WHERE id = ?`, id,
	).Scan(&g.ID, &g.Title, &g.Description, &g.ImageURL, &createdAt)
	if err == sql.ErrNoRows {
		return GalleryItem{}, ErrNotFound
	}
	if err != nil {
		return GalleryItem{}, err
	}
	g.CreatedAt = parseTimestamp(createdAt)
	return g, nil
}

// InsertGalleryItem stores a gallery entry and returns its assigned id.
func (s *Store) InsertGalleryItem(g GalleryItem) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO gallery (title, description, image_url, created_at)
		VALUES (?, ?, ?, ?)`,
		g.Title, g.Description, g.ImageURL, timestamp(g.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// --- helpers ---

func encodeStringList(list []string) string {
	if list == nil {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// decodeStringList parses a JSON array column. Malformed rows are logged and
// decoded as empty rather than propagated.
func decodeStringList(raw, column string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		slog.Warn("malformed JSON list column, skipping", "column", column, "error", err)
		return nil
	}
	return list
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Rows created by SQLite's CURRENT_TIMESTAMP default.
		t, err = time.Parse("2006-01-02 15:04:05", s)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}
