package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var shareLinkColumns = []string{"id", "quiz_id", "token", "is_public", "expires_at", "created_at"}

type shareLinkRepo struct {
	s *Store
}

func (r *shareLinkRepo) GetPublicByQuiz(ctx context.Context, quizID string) (*ShareLink, error) {
	sel := r.s.sb.Select(shareLinkColumns...).
		From(r.s.sb.Table(ShareLinksTable.Name)).
		Where(entsql.And(entsql.EQ("quiz_id", quizID), entsql.EQ("is_public", true))).
		OrderBy(entsql.Desc("created_at")).
		Limit(1)
	return r.getOne(ctx, sel)
}

func (r *shareLinkRepo) GetByToken(ctx context.Context, token string) (*ShareLink, error) {
	sel := r.s.sb.Select(shareLinkColumns...).
		From(r.s.sb.Table(ShareLinksTable.Name)).
		Where(entsql.EQ("token", token))
	return r.getOne(ctx, sel)
}

func (r *shareLinkRepo) getOne(ctx context.Context, sel *entsql.Selector) (*ShareLink, error) {
	var (
		l         ShareLink
		expiresAt sql.NullTime
	)
	err := queryRowBuilder(ctx, r.s.db, sel).
		Scan(&l.ID, &l.QuizID, &l.Token, &l.IsPublic, &expiresAt, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get share link: %w", err)
	}
	l.ExpiresAt = timePtr(expiresAt)
	return &l, nil
}

func (r *shareLinkRepo) Create(ctx context.Context, link *ShareLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	ins := r.s.sb.Insert(ShareLinksTable.Name).
		Columns(shareLinkColumns...).
		Values(link.ID, link.QuizID, link.Token, link.IsPublic, nullTime(link.ExpiresAt), link.CreatedAt)
	if _, err := execBuilder(ctx, r.s.db, ins); err != nil {
		return fmt.Errorf("save share link: %w", err)
	}
	return nil
}

func (r *shareLinkRepo) DeleteByQuiz(ctx context.Context, quizID string) (int, error) {
	del := r.s.sb.Delete(ShareLinksTable.Name).Where(entsql.EQ("quiz_id", quizID))
	res, err := execBuilder(ctx, r.s.db, del)
	if err != nil {
		return 0, fmt.Errorf("delete share links: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete share links: %w", err)
	}
	return int(n), nil
}
