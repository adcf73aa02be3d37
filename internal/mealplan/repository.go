package mealplan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nutrijournal/internal/autoblock"
	"nutrijournal/internal/frontmatter"
)

// dateLayout is the canonical on-disk date form; one day maps 1:1 to one
// {date}.md file.
const dateLayout = "2006-01-02"

// Repository persists days as markdown files with a front-matter header in a
// fixed directory.
type Repository struct {
	basePath string
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRepository creates a Repository and ensures the base directory exists.
func NewRepository(basePath string) (*Repository, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory %s: %w", basePath, err)
	}
	return &Repository{
		basePath: basePath,
		now:      time.Now,
		locks:    map[string]*sync.Mutex{},
	}, nil
}

// NormalizeDate coerces input to YYYY-MM-DD. Parseable timestamps are
// reformatted; unparseable input falls back to the current date.
func (r *Repository) NormalizeDate(input string) string {
	if t, err := time.Parse(dateLayout, input); err == nil {
		return t.Format(dateLayout)
	}
	for _, layout := range []string{time.RFC3339, "2006/01/02", "02.01.2006"} {
		if t, err := time.Parse(layout, input); err == nil {
			return t.Format(dateLayout)
		}
	}
	return r.now().Format(dateLayout)
}

func (r *Repository) path(date string) string {
	return filepath.Join(r.basePath, date+".md")
}

// dateLock returns the per-date mutex, creating it on first use. Two
// concurrent Mutate calls on the same date serialize instead of racing
// last-write-wins.
func (r *Repository) dateLock(date string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[date]
	if !ok {
		l = &sync.Mutex{}
		r.locks[date] = l
	}
	return l
}

// Load returns the day for date, creating and persisting an empty one when no
// file exists yet. Read errors other than not-found propagate; a malformed
// header degrades to whatever fields survive decoding, never an error.
func (r *Repository) Load(ctx context.Context, date string) (*Day, error) {
	date = r.NormalizeDate(date)
	lock := r.dateLock(date)
	lock.Lock()
	defer lock.Unlock()
	return r.load(ctx, date)
}

func (r *Repository) load(ctx context.Context, date string) (*Day, error) {
	data, err := os.ReadFile(r.path(date))
	if os.IsNotExist(err) {
		day := NewDay(date)
		day.Recalculate()
		day.UpdatedAt = r.now()
		if err := r.write(ctx, day, DefaultBody(date)); err != nil {
			return nil, err
		}
		return day, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read day file for %s: %w", date, err)
	}

	doc := frontmatter.Decode(string(data))
	day := DecodeHeader(doc.Header, date)
	if len(day.Sections) == 0 {
		// Missing or gutted header: repair by reconstruction rather than
		// partial patching.
		slog.Warn("day header unreadable, rebuilding empty day", "date", date)
		day = NewDay(date)
	}
	day.body = doc.Body
	day.Recalculate()
	return day, nil
}

// Mutate runs the full load-modify-recompute-write cycle for date. The
// operation receives the in-memory tree; totals are recomputed and UpdatedAt
// stamped after it returns. A cancelled context discards the pending write.
func (r *Repository) Mutate(ctx context.Context, date string, op func(*Day) error) (*Day, error) {
	date = r.NormalizeDate(date)
	lock := r.dateLock(date)
	lock.Lock()
	defer lock.Unlock()

	day, err := r.load(ctx, date)
	if err != nil {
		// Corrupt state is repaired by reconstruction, not by failing the
		// whole operation.
		slog.Warn("failed to load day, substituting a fresh one", "date", date, "error", err)
		day = NewDay(date)
		day.body = DefaultBody(date)
	}

	if err := op(day); err != nil {
		return nil, err
	}

	day.Recalculate()
	day.UpdatedAt = r.now()

	if err := r.write(ctx, day, day.body); err != nil {
		return nil, err
	}
	return day, nil
}

// write serializes the day and persists it: header through the document
// codec, summary through the auto-block engine.
func (r *Repository) write(ctx context.Context, day *Day, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if body == "" {
		body = DefaultBody(day.Date)
	}
	body = autoblock.Upsert(body, SummaryMarker, RenderSummary(day))
	day.body = body

	source := frontmatter.Encode(EncodeHeader(day), body)
	if err := os.WriteFile(r.path(day.Date), []byte(source), 0644); err != nil {
		return fmt.Errorf("failed to write day file for %s: %w", day.Date, err)
	}
	return nil
}

// Exists reports whether a file for date is already on disk.
func (r *Repository) Exists(date string) bool {
	_, err := os.Stat(r.path(r.NormalizeDate(date)))
	return !os.IsNotExist(err)
}
