package analysis

import (
	"context"
	"encoding/json"
	"strings"

	domain "github.com/bryanwahyu/docwiki/internal/domain/analysis"
)

// roundResult partitions one round's units: every submitted unit id lands in
// exactly one of the two sides. failures carries one entry per failedIDs
// element; Round is stamped by the caller.
type roundResult struct {
	analyses  []*domain.Record
	failedIDs []string
	failures  []domain.FailureDetail
}

// recoveryAttempt is one step of the recovery chain: a named source of text to
// run through the parser. Attempts are tried in order; the first parse success
// wins.
type recoveryAttempt struct {
	name string
	text string
}

// runRound converts the units, delegates one execution round to the task
// executor and classifies every result through the recovery chain. An error is
// returned only when the executor call itself fails hard.
func (s *Service) runRound(ctx context.Context, units []domain.Unit, gctx domain.GraphContext) (roundResult, error) {
	inputs := make([]domain.PromptInput, 0, len(units))
	for _, u := range units {
		inputs = append(inputs, ToPromptInput(u, gctx))
	}

	results, err := s.Executor.Execute(ctx, inputs, s.Config)
	if err != nil {
		return roundResult{}, err
	}

	out := roundResult{analyses: []*domain.Record{}, failedIDs: []string{}}

	// No output at all for the round: everything fails, no recovery attempted.
	if results == nil {
		for _, u := range units {
			out.failedIDs = append(out.failedIDs, u.ID)
			out.failures = append(out.failures, domain.FailureDetail{
				UnitID:  u.ID,
				Message: "executor returned no output for the round",
			})
		}
		s.logf("analysis round returned no output units=%d", len(units))
		return out, nil
	}

	for _, u := range units {
		res, ok := results[u.ID]
		if !ok {
			res = domain.MapResult{Success: false, Error: "no result returned for unit"}
		}
		if s.OnItemDone != nil {
			s.OnItemDone(u, res)
		}
		rec, reason := s.recoverResult(u, res)
		if rec != nil {
			out.analyses = append(out.analyses, rec)
			continue
		}
		out.failedIDs = append(out.failedIDs, u.ID)
		out.failures = append(out.failures, domain.FailureDetail{
			UnitID:     u.ID,
			Message:    reason,
			RawSnippet: truncate(res.RawResponse, snippetLen),
		})
	}
	return out, nil
}

// recoverResult applies the recovery chain to one unit's MapResult. It returns
// the parsed record, or nil plus the reason the unit is failed for this round.
func (s *Service) recoverResult(u domain.Unit, res domain.MapResult) (*domain.Record, string) {
	attempts := recoveryChain(res)
	if len(attempts) == 0 {
		reason := "failed with no recoverable text"
		if res.Error != "" {
			reason = truncate(res.Error, snippetLen)
		}
		s.logf("unit failed with no recoverable text unit=%s error=%s", u.ID, reason)
		return nil, reason
	}

	var parseErrs []string
	for _, att := range attempts {
		rec, err := s.parser.Parse(att.text, u.ID)
		if err != nil {
			parseErrs = append(parseErrs, att.name+": "+err.Error())
			continue
		}
		if !res.Success {
			s.logf("recovered analysis despite reported failure unit=%s source=%s", u.ID, att.name)
		}
		return rec, ""
	}

	for _, msg := range parseErrs {
		s.logf("analysis parse failed unit=%s %s", u.ID, msg)
	}
	return nil, strings.Join(parseErrs, "; ")
}

// recoveryChain orders the text sources to try for one result. The executor's
// pass/fail flag is advisory for raw text: a response a stricter upstream
// validator rejected is still attempted. The structured output fallback is not
// offered to a reported failure that arrived with no raw text at all; such a
// result fails immediately.
func recoveryChain(res domain.MapResult) []recoveryAttempt {
	var attempts []recoveryAttempt
	if res.RawResponse != "" {
		name := "rawResponse"
		if !res.Success {
			name = "rawResponse despite failure"
		}
		attempts = append(attempts, recoveryAttempt{name: name, text: res.RawResponse})
	}
	if res.Output != nil && (res.Success || res.RawResponse != "") {
		if b, err := json.Marshal(res.Output); err == nil {
			attempts = append(attempts, recoveryAttempt{name: "structured output", text: string(b)})
		}
	}
	return attempts
}
