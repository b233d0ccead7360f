package mysite

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kevinypfan/my-site/locale"
)

// Store wraps a SQLite database holding posts (one row per slug and locale)
// and uploaded image metadata.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during a write; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT NOT NULL,
    locale TEXT NOT NULL,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    tags TEXT NOT NULL,
    summary TEXT NOT NULL,
    content TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (slug, locale)
);
CREATE INDEX IF NOT EXISTS posts_locale_date ON posts (locale, date DESC);
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

const postColumns = `slug, locale, title, date, tags, summary, content, published`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (BlogPost, error) {
	var slug, code, title, date, tags, summary, content string
	var published int
	if err := row.Scan(&slug, &code, &title, &date, &tags, &summary, &content, &published); err != nil {
		return BlogPost{}, err
	}
	return BlogPost{
		Slug:      slug,
		Locale:    locale.Code(code),
		Title:     title,
		Date:      date,
		Tags:      ParseTags(tags),
		Summary:   summary,
		Content:   content,
		Link:      "/blog/" + url.PathEscape(slug) + "/",
		Published: published == 1,
	}, nil
}

func (s *Store) queryPosts(query string, args ...any) ([]BlogPost, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts returns published posts ordered by date descending. An empty code
// returns every locale's posts. If tag is non-empty, results are filtered to
// posts carrying that tag.
func (s *Store) ListPosts(code locale.Code, tag string) ([]BlogPost, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE published = 1`
	var args []any
	if code != "" {
		query += ` AND locale = ?`
		args = append(args, string(code))
	}
	if tag != "" {
		query += ` AND instr(lower(tags), ',' || ? || ',') > 0`
		args = append(args, normalizeTag(tag))
	}
	query += ` ORDER BY date DESC, slug, locale`
	return s.queryPosts(query, args...)
}

// GetPostAny returns a locale version of a post regardless of published
// status (for admin).
func (s *Store) GetPostAny(slug string, code locale.Code) (BlogPost, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND locale = ?`, slug, string(code)))
}

// ListAllPosts returns every post version (published and drafts) ordered by
// date descending.
func (s *Store) ListAllPosts() ([]BlogPost, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts ORDER BY date DESC, slug, locale`)
}

// SavePost upserts one locale version of a post. Tags are normalized to
// lowercase.
func (s *Store) SavePost(p BlogPost) error {
	if p.Locale == "" {
		return fmt.Errorf("save %q: locale is required", p.Slug)
	}
	normalizedTags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		normalizedTags[i] = normalizeTag(t)
	}
	tagString := "," + strings.Join(normalizedTags, ",") + ","
	published := 0
	if p.Published {
		published = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, string(p.Locale), p.Title, p.Date, tagString, p.Summary, p.Content, published)
	return err
}

// DeletePost removes one locale version of a post.
func (s *Store) DeletePost(slug string, code locale.Code) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE slug = ? AND locale = ?`, slug, string(code))
	return err
}

// SaveImage records the metadata of an uploaded image.
func (s *Store) SaveImage(img Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// ListImages returns uploaded images, newest first.
func (s *Store) ListImages() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC, filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ImageExists reports whether filename is already recorded.
func (s *Store) ImageExists(filename string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM images WHERE filename = ?`, filename).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteImage removes the metadata of an uploaded image.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
