package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/scrapetmpl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ scrapetmpl.TemplateService = (*TemplateService)(nil)

const templateColumns = "id, domain, selectors, confidence_score, usage_count, success_rate, created_at, last_used, owner_id"

// TemplateService implements scrapetmpl.TemplateService using SQLite.
type TemplateService struct {
	db  *DB
	now func() time.Time
}

// TemplateOption configures a TemplateService.
type TemplateOption func(*TemplateService)

// WithClock sets the time source used for created_at and last_used.
func WithClock(now func() time.Time) TemplateOption {
	return func(s *TemplateService) {
		s.now = now
	}
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(db *DB, opts ...TemplateOption) *TemplateService {
	s := &TemplateService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTemplate inserts a new template row. Earlier templates for the same
// domain are kept; the newest one becomes current.
func (s *TemplateService) CreateTemplate(ctx context.Context, t *scrapetmpl.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}

	selectors, err := json.Marshal(t.Selectors)
	if err != nil {
		return fmt.Errorf("failed to encode selectors: %w", err)
	}

	t.ID = uuid.New().String()
	t.CreatedAt = s.now().UTC()
	t.UsageCount = 0
	t.SuccessRate = 1.0
	t.LastUsedAt = nil

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO templates (id, domain, selectors, confidence_score, usage_count, success_rate, created_at, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Domain, string(selectors), t.Confidence, t.UsageCount, t.SuccessRate,
		formatTime(t.CreatedAt), t.OwnerID)

	return err
}

// FindTemplateByID retrieves a template by ID.
func (s *TemplateService) FindTemplateByID(ctx context.Context, id string) (*scrapetmpl.Template, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+templateColumns+" FROM templates WHERE id = ?", id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scrapetmpl.Errorf(scrapetmpl.ENOTFOUND, "template not found")
	}
	return t, err
}

// FindTemplateByDomain retrieves the current template of a domain: the most
// recently created row, with insertion order breaking timestamp ties.
func (s *TemplateService) FindTemplateByDomain(ctx context.Context, domain string) (*scrapetmpl.Template, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+templateColumns+`
		FROM templates
		WHERE domain = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, domain)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scrapetmpl.NoTemplateError(domain)
	}
	return t, err
}

// FindTemplates retrieves templates matching the filter, newest first.
func (s *TemplateService) FindTemplates(ctx context.Context, filter scrapetmpl.TemplateFilter) ([]*scrapetmpl.Template, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + templateColumns + " FROM templates WHERE 1=1")

	if filter.Domain != nil {
		query.WriteString(" AND domain = ?")
		args = append(args, *filter.Domain)
	}
	if filter.OwnerID != nil {
		query.WriteString(" AND owner_id = ?")
		args = append(args, *filter.OwnerID)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []*scrapetmpl.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	return templates, rows.Err()
}

// UpdateUsage records one scrape outcome. The count increment and the
// running average are computed by a single UPDATE statement, so concurrent
// callers never lose an update.
func (s *TemplateService) UpdateUsage(ctx context.Context, id string, success bool) (*scrapetmpl.Template, error) {
	value := 0.0
	if success {
		value = 1.0
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE templates
		SET success_rate = (success_rate * usage_count + ?) / (usage_count + 1),
			usage_count = usage_count + 1,
			last_used = ?
		WHERE id = ?
	`, value, formatTime(s.now()), id)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, scrapetmpl.Errorf(scrapetmpl.ENOTFOUND, "template not found")
	}

	return s.FindTemplateByID(ctx, id)
}

// DeleteTemplate permanently removes a template.
func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return scrapetmpl.Errorf(scrapetmpl.ENOTFOUND, "template not found")
	}

	return nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*scrapetmpl.Template, error) {
	var t scrapetmpl.Template
	var selectors, createdAt string
	var lastUsed sql.NullString

	if err := row.Scan(&t.ID, &t.Domain, &selectors, &t.Confidence, &t.UsageCount,
		&t.SuccessRate, &createdAt, &lastUsed, &t.OwnerID); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(selectors), &t.Selectors); err != nil {
		return nil, fmt.Errorf("failed to decode selectors: %w", err)
	}

	var err error
	t.CreatedAt, err = parseTime(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	if lastUsed.Valid {
		lu, err := parseTime(lastUsed.String, "last_used")
		if err != nil {
			return nil, err
		}
		t.LastUsedAt = &lu
	}

	return &t, nil
}
