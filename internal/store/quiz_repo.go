package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/amrixahmad/questionsmith/internal/quiz"
)

var quizColumns = []string{
	"id", "user_id", "source_id", "title", "status", "difficulty",
	"question_count", "max_attempts", "created_at", "updated_at",
}

var questionColumns = []string{
	"id", "quiz_id", "type", "stem", "options", "answer",
	"explanation", "tags", "position", "created_at",
}

type quizRepo struct {
	s *Store
}

func (r *quizRepo) CreateWithQuestions(ctx context.Context, q *Quiz, questions []quiz.CanonicalQuestion) error {
	now := time.Now().UTC()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Status == "" {
		q.Status = StatusDraft
	}
	if q.MaxAttempts <= 0 {
		q.MaxAttempts = 1
	}
	q.QuestionCount = len(questions)
	q.CreatedAt, q.UpdatedAt = now, now

	ins := r.s.sb.Insert(QuizzesTable.Name).
		Columns(quizColumns...).
		Values(q.ID, q.UserID, nullString(q.SourceID), q.Title, string(q.Status),
			nullString(string(q.Difficulty)), q.QuestionCount, q.MaxAttempts, q.CreatedAt, q.UpdatedAt)

	var bulk *entsql.InsertBuilder
	if len(questions) > 0 {
		bulk = r.s.sb.Insert(QuestionsTable.Name).Columns(questionColumns...)
		for i := range questions {
			qq := &questions[i]
			if qq.ID == "" {
				qq.ID = uuid.NewString()
			}
			if qq.Order <= 0 {
				qq.Order = i + 1
			}
			vals, err := questionValues(q.ID, qq, now)
			if err != nil {
				return fmt.Errorf("question %d: %w", i, err)
			}
			bulk.Values(vals...)
		}
	}

	return r.s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := execBuilder(ctx, tx, ins); err != nil {
			return fmt.Errorf("save quiz: %w", err)
		}
		if bulk != nil {
			if _, err := execBuilder(ctx, tx, bulk); err != nil {
				return fmt.Errorf("save questions: %w", err)
			}
		}
		return nil
	})
}

func questionValues(quizID string, q *quiz.CanonicalQuestion, now time.Time) ([]any, error) {
	var options any
	if len(q.Options) > 0 {
		v, err := jsonValue(q.Options, true)
		if err != nil {
			return nil, err
		}
		options = v
	}
	answer, err := jsonValue(q.Answer, false)
	if err != nil {
		return nil, err
	}
	var tags any
	if len(q.Tags) > 0 {
		if tags, err = jsonValue(q.Tags, true); err != nil {
			return nil, err
		}
	}
	return []any{
		q.ID, quizID, string(q.Type), q.Stem, options, answer,
		nullString(q.Explanation), tags, q.Order, now,
	}, nil
}

func (r *quizRepo) Get(ctx context.Context, id string) (*Quiz, error) {
	sel := r.s.sb.Select(quizColumns...).
		From(r.s.sb.Table(QuizzesTable.Name)).
		Where(entsql.EQ("id", id))

	q, err := scanQuiz(queryRowBuilder(ctx, r.s.db, sel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

func (r *quizRepo) ListByUser(ctx context.Context, userID string, opts ListOpts) ([]Quiz, error) {
	sel := r.s.sb.Select(quizColumns...).
		From(r.s.sb.Table(QuizzesTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	applyListOpts(sel, opts)

	rows, err := queryBuilder(ctx, r.s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// applyListOpts pages sel. SQLite rejects OFFSET without LIMIT, so an
// offset alone gets an unbounded limit.
func applyListOpts(sel *entsql.Selector, opts ListOpts) {
	switch {
	case opts.Limit > 0:
		sel.Limit(opts.Limit)
	case opts.Offset > 0:
		sel.Limit(math.MaxInt32)
	}
	if opts.Offset > 0 {
		sel.Offset(opts.Offset)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (*Quiz, error) {
	var (
		q          Quiz
		sourceID   sql.NullString
		status     string
		difficulty sql.NullString
	)
	err := row.Scan(&q.ID, &q.UserID, &sourceID, &q.Title, &status, &difficulty,
		&q.QuestionCount, &q.MaxAttempts, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	q.SourceID = sourceID.String
	q.Status = QuizStatus(status)
	q.Difficulty = quiz.Difficulty(difficulty.String)
	return &q, nil
}

func (r *quizRepo) Questions(ctx context.Context, quizID string) ([]quiz.CanonicalQuestion, error) {
	sel := r.s.sb.Select(questionColumns...).
		From(r.s.sb.Table(QuestionsTable.Name)).
		Where(entsql.EQ("quiz_id", quizID)).
		OrderBy(entsql.Asc("position"), entsql.Asc("id"))

	rows, err := queryBuilder(ctx, r.s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []quiz.CanonicalQuestion
	for rows.Next() {
		var (
			q            quiz.CanonicalQuestion
			quizIDCol    string
			qtype        string
			options, ans []byte
			explanation  sql.NullString
			tags         []byte
			createdAt    time.Time
		)
		if err := rows.Scan(&q.ID, &quizIDCol, &qtype, &q.Stem, &options, &ans,
			&explanation, &tags, &q.Order, &createdAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Type = quiz.QuestionType(qtype)
		q.Explanation = explanation.String
		if err := decodeJSON(options, &q.Options); err != nil {
			return nil, fmt.Errorf("question %s options: %w", q.ID, err)
		}
		if err := decodeJSON(tags, &q.Tags); err != nil {
			return nil, fmt.Errorf("question %s tags: %w", q.ID, err)
		}
		if err := decodeJSON(ans, &q.Answer); err != nil {
			return nil, fmt.Errorf("question %s answer: %w", q.ID, err)
		}
		q.Answer = canonicalAnswer(q.Type, q.Answer)
		out = append(out, q)
	}
	return out, rows.Err()
}

// canonicalAnswer restores the Go type of a multiple choice index after a
// JSON round trip turned it into float64.
func canonicalAnswer(t quiz.QuestionType, v any) any {
	if f, ok := v.(float64); ok && t == quiz.MultipleChoice {
		return int(f)
	}
	return v
}

func (r *quizRepo) SetStatus(ctx context.Context, id string, status QuizStatus) error {
	upd := r.s.sb.Update(QuizzesTable.Name).
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id))
	return r.updateOne(ctx, upd, "set quiz status")
}

func (r *quizRepo) SetMaxAttempts(ctx context.Context, id string, n int) error {
	upd := r.s.sb.Update(QuizzesTable.Name).
		Set("max_attempts", n).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id))
	return r.updateOne(ctx, upd, "set max attempts")
}

func (r *quizRepo) Delete(ctx context.Context, id string) error {
	del := r.s.sb.Delete(QuizzesTable.Name).Where(entsql.EQ("id", id))
	return r.updateOne(ctx, del, "delete quiz")
}

func (r *quizRepo) updateOne(ctx context.Context, b querierBuilder, what string) error {
	res, err := execBuilder(ctx, r.s.db, b)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
