package analysis

import (
	"context"
	"log"
	"time"

	domain "github.com/bryanwahyu/docwiki/internal/domain/analysis"
)

// Service drives batch analysis: one full round over every unit, then up to
// RetryAttempts further rounds over only the still-failed subset. Rounds run
// strictly sequentially; concurrency lives inside the task executor.
// Service is safe for concurrent use once its fields are set.
type Service struct {
	Executor domain.TaskExecutor
	Diagrams domain.DiagramValidator
	Config   domain.ExecConfig

	// RetryAttempts bounds the number of retry rounds after the initial one.
	RetryAttempts int

	// Cancelled, when set, is polled between retry rounds. A true return stops
	// further retries; accumulated successes are kept.
	Cancelled func() bool

	// OnItemDone, when set, is invoked once per unit per round, after that
	// unit's MapResult is available and regardless of its outcome. A unit that
	// is retried later triggers it again.
	OnItemDone func(domain.Unit, domain.MapResult)

	// Logger defaults to the stdlib default logger.
	Logger *log.Logger

	parser *Parser
}

// NewService wires a Service with its parser. Remaining fields may be set on
// the returned value before first use.
func NewService(executor domain.TaskExecutor, diagrams domain.DiagramValidator, cfg domain.ExecConfig, retryAttempts int) *Service {
	return &Service{
		Executor:      executor,
		Diagrams:      diagrams,
		Config:        cfg,
		RetryAttempts: retryAttempts,
		parser:        &Parser{Diagrams: diagrams},
	}
}

// Run executes the whole batch. Per-unit parse failures never surface as an
// error; they end up in FailedUnitIDs. Only a hard failure of the executor
// call itself propagates.
func (s *Service) Run(ctx context.Context, units []domain.Unit, gctx domain.GraphContext) (domain.BatchResult, error) {
	if s.parser == nil {
		s.parser = &Parser{Diagrams: s.Diagrams}
	}
	result := domain.BatchResult{
		Analyses:       []*domain.Record{},
		FailedUnitIDs:  []string{},
		FailureDetails: []domain.FailureDetail{},
	}
	if len(units) == 0 {
		return result, nil
	}

	start := time.Now()
	byID := make(map[string]domain.Unit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}

	round, err := s.runRound(ctx, units, gctx)
	if err != nil {
		return result, err
	}
	result.Analyses = append(result.Analyses, round.analyses...)
	remaining := round.failedIDs
	details := stampRound(round.failures, 0)

	for attempt := 1; attempt <= s.RetryAttempts && len(remaining) > 0; attempt++ {
		if s.Cancelled != nil && s.Cancelled() {
			s.logf("analysis cancelled before retry attempt=%d remaining=%d", attempt, len(remaining))
			break
		}

		retryUnits := make([]domain.Unit, 0, len(remaining))
		for _, id := range remaining {
			if u, ok := byID[id]; ok {
				retryUnits = append(retryUnits, u)
			}
		}
		s.logf("retrying failed units attempt=%d units=%d", attempt, len(retryUnits))

		round, err = s.runRound(ctx, retryUnits, gctx)
		if err != nil {
			return result, err
		}
		result.Analyses = append(result.Analyses, round.analyses...)
		// The new round's failures replace the previous set, never union it.
		remaining = round.failedIDs
		details = stampRound(round.failures, attempt)
	}

	result.FailedUnitIDs = remaining
	if details != nil {
		result.FailureDetails = details
	}
	result.DurationMS = time.Since(start).Milliseconds()
	return result, nil
}

func stampRound(failures []domain.FailureDetail, round int) []domain.FailureDetail {
	for i := range failures {
		failures[i].Round = round
	}
	return failures
}

func (s *Service) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
