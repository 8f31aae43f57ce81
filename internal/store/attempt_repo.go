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

var attemptColumns = []string{
	"id", "quiz_id", "user_id", "started_at", "submitted_at",
	"score", "max_score", "duration_seconds",
}

type attemptRepo struct {
	s *Store
}

func (r *attemptRepo) Start(ctx context.Context, a *Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now().UTC()
	}
	ins := r.s.sb.Insert(AttemptsTable.Name).
		Columns("id", "quiz_id", "user_id", "started_at").
		Values(a.ID, a.QuizID, a.UserID, a.StartedAt)
	if _, err := execBuilder(ctx, r.s.db, ins); err != nil {
		return fmt.Errorf("start attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) Get(ctx context.Context, id string) (*Attempt, error) {
	sel := r.s.sb.Select(attemptColumns...).
		From(r.s.sb.Table(AttemptsTable.Name)).
		Where(entsql.EQ("id", id))
	a, err := scanAttempt(queryRowBuilder(ctx, r.s.db, sel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return a, nil
}

func scanAttempt(row rowScanner) (*Attempt, error) {
	var (
		a           Attempt
		submittedAt sql.NullTime
		score       sql.NullInt64
		maxScore    sql.NullInt64
		duration    sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &a.StartedAt,
		&submittedAt, &score, &maxScore, &duration); err != nil {
		return nil, err
	}
	a.SubmittedAt = timePtr(submittedAt)
	a.Score = intPtr(score)
	a.MaxScore = intPtr(maxScore)
	a.DurationSeconds = intPtr(duration)
	return &a, nil
}

func (r *attemptRepo) Submit(ctx context.Context, attemptID string, in SubmitInput) error {
	submittedAt := in.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	upd := r.s.sb.Update(AttemptsTable.Name).
		Set("submitted_at", submittedAt.UTC()).
		Set("score", in.Score).
		Set("max_score", in.MaxScore).
		Set("duration_seconds", in.DurationSeconds).
		Where(entsql.And(
			entsql.EQ("id", attemptID),
			entsql.IsNull("submitted_at"),
		))

	var bulk *entsql.InsertBuilder
	if len(in.Answers) > 0 {
		bulk = r.s.sb.Insert(AnswersTable.Name).
			Columns("id", "attempt_id", "question_id", "response", "is_correct", "score", "created_at")
		for i, ans := range in.Answers {
			resp, err := jsonValue(ans.Response, false)
			if err != nil {
				return fmt.Errorf("answer %d: %w", i, err)
			}
			bulk.Values(uuid.NewString(), attemptID, ans.QuestionID, resp, ans.IsCorrect, ans.Score, submittedAt.UTC())
		}
	}

	return r.s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := execBuilder(ctx, tx, upd)
		if err != nil {
			return fmt.Errorf("submit attempt: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("submit attempt: %w", err)
		}
		if n == 0 {
			// Distinguish a missing attempt from one already submitted.
			var exists int
			sel := r.s.sb.Select(entsql.Count("*")).
				From(r.s.sb.Table(AttemptsTable.Name)).
				Where(entsql.EQ("id", attemptID))
			if err := queryRowBuilder(ctx, tx, sel).Scan(&exists); err != nil {
				return fmt.Errorf("check attempt: %w", err)
			}
			if exists == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}
		if bulk != nil {
			if _, err := execBuilder(ctx, tx, bulk); err != nil {
				return fmt.Errorf("save answers: %w", err)
			}
		}
		return nil
	})
}

func (r *attemptRepo) ListByUser(ctx context.Context, userID, quizID string) ([]Attempt, error) {
	sel := r.s.sb.Select(attemptColumns...).
		From(r.s.sb.Table(AttemptsTable.Name)).
		Where(attemptFilter(userID, quizID)).
		OrderBy(entsql.Desc("started_at"), entsql.Desc("id"))

	rows, err := queryBuilder(ctx, r.s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *attemptRepo) CountByUser(ctx context.Context, userID, quizID string) (int, error) {
	sel := r.s.sb.Select(entsql.Count("*")).
		From(r.s.sb.Table(AttemptsTable.Name)).
		Where(attemptFilter(userID, quizID))
	var n int
	if err := queryRowBuilder(ctx, r.s.db, sel).Scan(&n); err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

func attemptFilter(userID, quizID string) *entsql.Predicate {
	if quizID == "" {
		return entsql.EQ("user_id", userID)
	}
	return entsql.And(entsql.EQ("user_id", userID), entsql.EQ("quiz_id", quizID))
}

func (r *attemptRepo) Answers(ctx context.Context, attemptID string) ([]AnswerRow, error) {
	a := r.s.sb.Table(AnswersTable.Name).As("a")
	q := r.s.sb.Table(QuestionsTable.Name).As("q")
	sel := r.s.sb.Select(a.C("question_id"), a.C("response"), a.C("is_correct"), a.C("score")).
		From(a).
		Join(q).On(a.C("question_id"), q.C("id")).
		Where(entsql.EQ(a.C("attempt_id"), attemptID)).
		OrderBy(entsql.Asc(q.C("position")))

	rows, err := queryBuilder(ctx, r.s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var out []AnswerRow
	for rows.Next() {
		var (
			row  AnswerRow
			resp []byte
		)
		if err := rows.Scan(&row.QuestionID, &resp, &row.IsCorrect, &row.Score); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if err := decodeJSON(resp, &row.Response); err != nil {
			return nil, fmt.Errorf("answer %s: %w", row.QuestionID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
