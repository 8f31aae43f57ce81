package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type sourceRepo struct {
	s *Store
}

func (r *sourceRepo) Create(ctx context.Context, src *ContentSource) error {
	if src.ID == "" {
		src.ID = uuid.NewString()
	}
	if src.CreatedAt.IsZero() {
		src.CreatedAt = time.Now().UTC()
	}
	if src.Type == "" {
		src.Type = SourceText
	}

	ins := r.s.sb.Insert(ContentSourcesTable.Name).
		Columns("id", "user_id", "type", "title", "body", "created_at").
		Values(src.ID, src.UserID, src.Type, nullString(src.Title), src.Body, src.CreatedAt)
	if _, err := execBuilder(ctx, r.s.db, ins); err != nil {
		return fmt.Errorf("save content source: %w", err)
	}
	return nil
}
