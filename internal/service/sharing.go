package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/amrixahmad/questionsmith/internal/logging"
	"github.com/amrixahmad/questionsmith/internal/store"
)

// tokenBytes is the entropy of a share token before base64url encoding.
const tokenBytes = 16

// SharingService manages public share links.
type SharingService struct {
	quizzes store.QuizRepo
	links   store.ShareLinkRepo
	logger  logging.Logger
	now     clock
}

func NewSharingService(st *store.Store, logger logging.Logger) *SharingService {
	return &SharingService{
		quizzes: st.QuizRepo(),
		links:   st.ShareLinkRepo(),
		logger:  logger.With("service", "sharing"),
		now:     utcNow,
	}
}

// CreateLink returns the quiz's public link, creating one if needed.
// expiresIn of zero means the link does not expire. An existing live link
// is reused as is.
func (s *SharingService) CreateLink(ctx context.Context, userID, quizID string, expiresIn time.Duration) (*store.ShareLink, error) {
	if expiresIn < 0 {
		return nil, invalidInput(errors.New("expiry must not be negative"))
	}
	q, err := ownedQuiz(ctx, s.quizzes, userID, quizID)
	if err != nil {
		return nil, err
	}
	if q.Status != store.StatusPublished {
		return nil, ErrNotPublished
	}

	now := s.now()
	existing, err := s.links.GetPublicByQuiz(ctx, quizID)
	switch {
	case err == nil && !existing.Expired(now):
		return existing, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	link := &store.ShareLink{QuizID: quizID, Token: token, IsPublic: true, CreatedAt: now}
	if expiresIn > 0 {
		exp := now.Add(expiresIn)
		link.ExpiresAt = &exp
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "share link created", "quiz_id", quizID)
	return link, nil
}

// Revoke deletes every share link of the quiz and reports how many
// were removed.
func (s *SharingService) Revoke(ctx context.Context, userID, quizID string) (int, error) {
	if _, err := ownedQuiz(ctx, s.quizzes, userID, quizID); err != nil {
		return 0, err
	}
	n, err := s.links.DeleteByQuiz(ctx, quizID)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "share links revoked", "quiz_id", quizID, "count", n)
	return n, nil
}

// SharedQuiz is what a share token opens.
type SharedQuiz struct {
	Link *store.ShareLink
	QuizDetail
}

// Resolve opens a share token. Revoked, expired and private links, and
// links to quizzes that are no longer published, are all not found.
func (s *SharingService) Resolve(ctx context.Context, token string) (*SharedQuiz, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		return nil, fromStore(err, "resolve share link")
	}
	if !link.IsPublic || link.Expired(s.now()) {
		return nil, fmt.Errorf("resolve share link: %w", ErrNotFound)
	}
	q, err := s.quizzes.Get(ctx, link.QuizID)
	if err != nil {
		return nil, fromStore(err, "get quiz")
	}
	if q.Status != store.StatusPublished {
		return nil, fmt.Errorf("resolve share link: %w", ErrNotFound)
	}
	questions, err := s.quizzes.Questions(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return &SharedQuiz{Link: link, QuizDetail: QuizDetail{Quiz: q, Questions: questions}}, nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
