package store

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/amrixahmad/questionsmith/internal/quiz"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	// A named shared-cache memory DB keeps tests isolated from each other.
	s, err := Open(DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	got := sqliteDSN("/tmp/q.db")
	want := "file:/tmp/q.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
	if got != want {
		t.Errorf("sqliteDSN = %q\nwant %q", got, want)
	}
	if got := sqliteDSN("file:x?mode=memory"); !strings.HasPrefix(got, "file:x?mode=memory&_pragma=") {
		t.Errorf("existing query not extended: %q", got)
	}
}

func sampleQuestions() []quiz.CanonicalQuestion {
	return []quiz.CanonicalQuestion{
		{
			Type:        quiz.MultipleChoice,
			Stem:        "2+2?",
			Options:     []quiz.Option{{ID: "1", Text: "3"}, {ID: "2", Text: "4"}},
			Answer:      1,
			Explanation: "Arithmetic.",
			Tags:        []string{"math"},
		},
		{Type: quiz.TrueFalse, Stem: "Sky is blue", Answer: true},
		{Type: quiz.ShortAnswer, Stem: "Capital of France?", Answer: "Paris"},
	}
}

func createQuiz(t *testing.T, s *Store, userID string) (*Quiz, []quiz.CanonicalQuestion) {
	t.Helper()
	q := &Quiz{UserID: userID, Title: "Sample", Difficulty: quiz.DifficultyEasy}
	qs := sampleQuestions()
	if err := s.QuizRepo().CreateWithQuestions(context.Background(), q, qs); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return q, qs
}

func TestQuizRepo_CreateAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	src := &ContentSource{UserID: "u1", Body: "Some notes"}
	if err := s.SourceRepo().Create(ctx, src); err != nil {
		t.Fatalf("create source: %v", err)
	}
	if src.ID == "" || src.Type != SourceText {
		t.Fatalf("source defaults not applied: %+v", src)
	}

	q := &Quiz{UserID: "u1", SourceID: src.ID, Title: "Sample", Difficulty: quiz.DifficultyEasy}
	qs := sampleQuestions()
	if err := s.QuizRepo().CreateWithQuestions(ctx, q, qs); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if q.ID == "" || q.Status != StatusDraft || q.MaxAttempts != 1 || q.QuestionCount != 3 {
		t.Fatalf("quiz defaults not applied: %+v", q)
	}
	for i, qq := range qs {
		if qq.ID == "" || qq.Order != i+1 {
			t.Errorf("question %d: id=%q order=%d", i, qq.ID, qq.Order)
		}
	}

	got, err := s.QuizRepo().Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Sample" || got.SourceID != src.ID || got.Difficulty != quiz.DifficultyEasy {
		t.Errorf("unexpected quiz: %+v", got)
	}

	loaded, err := s.QuizRepo().Questions(ctx, q.ID)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("loaded %d questions", len(loaded))
	}
	if loaded[0].Answer != 1 {
		t.Errorf("mc answer = %#v, want int 1", loaded[0].Answer)
	}
	if !reflect.DeepEqual(loaded[0].Options, qs[0].Options) {
		t.Errorf("options = %+v", loaded[0].Options)
	}
	if !reflect.DeepEqual(loaded[0].Tags, []string{"math"}) || loaded[0].Explanation != "Arithmetic." {
		t.Errorf("metadata lost: %+v", loaded[0])
	}
	if loaded[1].Answer != true || loaded[1].Options != nil {
		t.Errorf("tf question = %+v", loaded[1])
	}
	if loaded[2].Answer != "Paris" {
		t.Errorf("text answer = %#v", loaded[2].Answer)
	}
}

func TestQuizRepo_NotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.QuizRepo().Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get: err = %v, want ErrNotFound", err)
	}
	if err := s.QuizRepo().SetStatus(ctx, "missing", StatusPublished); !errors.Is(err, ErrNotFound) {
		t.Errorf("set status: err = %v", err)
	}
	if err := s.QuizRepo().Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: err = %v", err)
	}
}

func TestQuizRepo_ListStatusAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.QuizRepo()

	first, _ := createQuiz(t, s, "u1")
	time.Sleep(5 * time.Millisecond)
	second, _ := createQuiz(t, s, "u1")
	createQuiz(t, s, "u2")

	list, err := repo.ListByUser(ctx, "u1", ListOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("list order wrong: %+v", list)
	}

	page, err := repo.ListByUser(ctx, "u1", ListOpts{Offset: 1})
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(page) != 1 || page[0].ID != first.ID {
		t.Errorf("offset page = %+v", page)
	}

	if err := repo.SetStatus(ctx, first.ID, StatusPublished); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := repo.SetMaxAttempts(ctx, first.ID, 3); err != nil {
		t.Fatalf("set max attempts: %v", err)
	}
	got, _ := repo.Get(ctx, first.ID)
	if got.Status != StatusPublished || got.MaxAttempts != 3 {
		t.Errorf("update not applied: %+v", got)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	qs, err := repo.Questions(ctx, first.ID)
	if err != nil {
		t.Fatalf("questions after delete: %v", err)
	}
	if len(qs) != 0 {
		t.Errorf("questions should cascade, got %d", len(qs))
	}
}

func TestAttemptRepo_SubmitOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	q, qs := createQuiz(t, s, "owner")
	repo := s.AttemptRepo()

	a := &Attempt{QuizID: q.ID, UserID: "taker"}
	if err := repo.Start(ctx, a); err != nil {
		t.Fatalf("start: %v", err)
	}

	in := SubmitInput{
		Answers: []AnswerRow{
			{QuestionID: qs[2].ID, Response: "paris", IsCorrect: true, Score: 1},
			{QuestionID: qs[0].ID, Response: "B", IsCorrect: true, Score: 1},
		},
		Score:           2,
		MaxScore:        2,
		DurationSeconds: 42,
	}
	if err := repo.Submit(ctx, a.ID, in); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := repo.Submit(ctx, a.ID, in); !errors.Is(err, ErrConflict) {
		t.Errorf("second submit: err = %v, want ErrConflict", err)
	}
	if err := repo.Submit(ctx, "missing", in); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing submit: err = %v, want ErrNotFound", err)
	}

	got, err := repo.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Submitted() || *got.Score != 2 || *got.MaxScore != 2 || *got.DurationSeconds != 42 {
		t.Errorf("attempt not graded: %+v", got)
	}

	answers, err := repo.Answers(ctx, a.ID)
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(answers))
	}
	// Ordered by question position, not submission order.
	if answers[0].QuestionID != qs[0].ID || answers[0].Response != "B" {
		t.Errorf("first answer = %+v", answers[0])
	}
}

func TestAttemptRepo_ListAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	q1, _ := createQuiz(t, s, "owner")
	q2, _ := createQuiz(t, s, "owner")
	repo := s.AttemptRepo()

	for _, quizID := range []string{q1.ID, q1.ID, q2.ID} {
		if err := repo.Start(ctx, &Attempt{QuizID: quizID, UserID: "taker"}); err != nil {
			t.Fatalf("start: %v", err)
		}
	}

	n, err := repo.CountByUser(ctx, "taker", q1.ID)
	if err != nil || n != 2 {
		t.Errorf("count q1 = %d, %v", n, err)
	}
	all, err := repo.ListByUser(ctx, "taker", "")
	if err != nil || len(all) != 3 {
		t.Errorf("list all = %d, %v", len(all), err)
	}
	none, err := repo.ListByUser(ctx, "someone", "")
	if err != nil || len(none) != 0 {
		t.Errorf("list other user = %d, %v", len(none), err)
	}
}

func TestShareLinkRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	q, _ := createQuiz(t, s, "owner")
	repo := s.ShareLinkRepo()

	if _, err := repo.GetPublicByQuiz(ctx, q.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	exp := time.Now().Add(time.Hour).UTC()
	link := &ShareLink{QuizID: q.ID, Token: "tok-1", IsPublic: true, ExpiresAt: &exp}
	if err := repo.Create(ctx, link); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, &ShareLink{QuizID: q.ID, Token: "tok-1"}); err == nil {
		t.Error("duplicate token should fail")
	}

	got, err := repo.GetByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got.QuizID != q.ID || !got.IsPublic || got.ExpiresAt == nil || got.Expired(time.Now()) {
		t.Errorf("unexpected link: %+v", got)
	}
	if !got.Expired(exp.Add(time.Second)) {
		t.Error("link should be expired after its expiry")
	}

	pub, err := repo.GetPublicByQuiz(ctx, q.ID)
	if err != nil || pub.Token != "tok-1" {
		t.Errorf("public link = %+v, %v", pub, err)
	}

	n, err := repo.DeleteByQuiz(ctx, q.ID)
	if err != nil || n != 1 {
		t.Errorf("delete = %d, %v", n, err)
	}
	if _, err := repo.GetByToken(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestEventRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	events := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4.1-nano", Purpose: "quiz-generation", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "openai", Model: "gpt-4.1-nano", Purpose: "quiz-generation", InputTokens: 80, OutputTokens: 40, LatencyMs: 100, Success: true},
		{Provider: "anthropic", Model: "claude-haiku", Purpose: "other", LatencyMs: 50, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recs, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "quiz-generation"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 2 || recs[0].ID < recs[1].ID {
		t.Fatalf("expected 2 events newest first, got %+v", recs)
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if err != nil || len(limited) != 1 || limited[0].Provider != "anthropic" {
		t.Errorf("limited = %+v, %v", limited, err)
	}

	future, err := repo.QueryLLMEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	if err != nil || len(future) != 0 {
		t.Errorf("future window = %d, %v", len(future), err)
	}

	one, err := repo.GetLLMEvent(ctx, limited[0].ID)
	if err != nil || one.ErrorMessage != "rate limited" || one.Success {
		t.Errorf("get = %+v, %v", one, err)
	}
	if _, err := repo.GetLLMEvent(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing event err = %v", err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 || byPurpose[0].Purpose != "quiz-generation" {
		t.Fatalf("by purpose = %+v", byPurpose)
	}
	if st := byPurpose[0]; st.Calls != 2 || st.InputTokens != 180 || st.OutputTokens != 90 || st.AvgLatencyMs != 150 {
		t.Errorf("aggregate = %+v", st)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil || len(byModel) != 2 || byModel[0].Model != "gpt-4.1-nano" || byModel[0].Calls != 2 {
		t.Errorf("by model = %+v, %v", byModel, err)
	}
}
