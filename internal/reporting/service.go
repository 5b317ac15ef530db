package reporting

import (
	"context"
	"errors"
	"time"

	"voiceqa-platform/internal/conversation"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// Implementations should query the immutable turn log; both the in-memory
// and Postgres turn stores satisfy this interface directly.

type Repository interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]conversation.Turn, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) TurnsSummary(ctx context.Context, req TurnsSummaryRequest) (TurnsSummary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return TurnsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return TurnsSummary{}, errors.New("reporting: repository not configured")
	}

	turns, err := s.repo.ListBetween(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return TurnsSummary{}, err
	}

	out := TurnsSummary{}
	seen := map[string]struct{}{}
	for _, t := range turns {
		out.TotalTurns++
		seen[t.CallSid] = struct{}{}
		switch t.Status {
		case conversation.TurnStatusOK:
			out.AnsweredTurns++
		case conversation.TurnStatusNoSpeech:
			out.NoSpeechTurns++
		case conversation.TurnStatusSTTFailed:
			out.SttFailedTurns++
		case conversation.TurnStatusLLMFailed:
			out.LlmFailedTurns++
		case conversation.TurnStatusTTSFailed:
			out.TtsFailedTurns++
		case conversation.TurnStatusPublishFailed:
			out.PublishFailedTurns++
		case conversation.TurnStatusStoreFailed:
			out.StoreFailedTurns++
		}
	}
	out.DistinctCalls = len(seen)
	if out.TotalTurns > 0 {
		out.AnsweredRate = float64(out.AnsweredTurns) / float64(out.TotalTurns)
	}
	return out, nil
}
