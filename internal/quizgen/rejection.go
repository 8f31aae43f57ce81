package quizgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amrixahmad/questionsmith/internal/quiz"
)

// Reason classifies why a candidate question was rejected.
type Reason string

const (
	ReasonUnknownType      Reason = "unknown_type"
	ReasonEmptyStem        Reason = "empty_stem"
	ReasonTooFewOptions    Reason = "too_few_options"
	ReasonUnresolvedAnswer Reason = "unresolved_answer"
	ReasonEmptyAnswer      Reason = "empty_answer"
)

// Rejection describes a candidate question dropped during sanitization.
type Rejection struct {
	Type    string // raw type of the candidate
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s question rejected (%s): %s", r.Type, r.Reason, r.Message)
}

// Result is the outcome of sanitizing one candidate: exactly one of
// Question and Rejection is set.
type Result struct {
	Question  *quiz.CanonicalQuestion
	Rejection *Rejection
}

// OK reports whether the candidate was accepted.
func (r Result) OK() bool { return r.Rejection == nil }

// Report aggregates sanitization results for a batch.
type Report struct {
	Total    int
	Accepted int
	Reasons  map[Reason]int
}

// Rejected returns the number of rejected candidates.
func (r Report) Rejected() int { return r.Total - r.Accepted }

func (r *Report) add(res Result) {
	r.Total++
	if res.OK() {
		r.Accepted++
		return
	}
	if r.Reasons == nil {
		r.Reasons = make(map[Reason]int)
	}
	r.Reasons[res.Rejection.Reason]++
}

// String renders e.g. "rejected 3/12 candidates: 2 unresolved_answer, 1 empty_stem".
func (r Report) String() string {
	s := fmt.Sprintf("rejected %d/%d candidates", r.Rejected(), r.Total)
	if len(r.Reasons) == 0 {
		return s
	}

	reasons := make([]Reason, 0, len(r.Reasons))
	for reason := range r.Reasons {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool {
		ci, cj := r.Reasons[reasons[i]], r.Reasons[reasons[j]]
		if ci != cj {
			return ci > cj
		}
		return reasons[i] < reasons[j]
	})

	parts := make([]string, len(reasons))
	for i, reason := range reasons {
		parts[i] = fmt.Sprintf("%d %s", r.Reasons[reason], reason)
	}
	return s + ": " + strings.Join(parts, ", ")
}
