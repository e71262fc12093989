package analysis

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"testing"

	domain "github.com/bryanwahyu/docwiki/internal/domain/analysis"
	"github.com/bryanwahyu/docwiki/internal/infra/diagram/mermaid"
)

// fakeExecutor replays one scripted round per call and records what it saw.
type fakeExecutor struct {
	rounds []map[string]domain.MapResult
	calls  [][]string // moduleIds submitted per round
	err    error
}

func (f *fakeExecutor) Execute(ctx context.Context, inputs []domain.PromptInput, cfg domain.ExecConfig) (map[string]domain.MapResult, error) {
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in[domain.PromptKeyModuleID])
	}
	sort.Strings(ids)
	f.calls = append(f.calls, ids)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.rounds) == 0 {
		return nil, nil
	}
	round := f.rounds[0]
	f.rounds = f.rounds[1:]
	return round, nil
}

func goodJSON(id string) string {
	return fmt.Sprintf(`{"moduleId": %q, "overview": "fine"}`, id)
}

func newTestService(exec domain.TaskExecutor, retries int, logs *bytes.Buffer) *Service {
	svc := NewService(exec, mermaid.New(), domain.ExecConfig{}, retries)
	if logs != nil {
		svc.Logger = log.New(logs, "", 0)
	}
	return svc
}

func TestRunEmptyInputSkipsExecutor(t *testing.T) {
	exec := &fakeExecutor{}
	res, err := newTestService(exec, 3, nil).Run(context.Background(), nil, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Analyses) != 0 || len(res.FailedUnitIDs) != 0 || res.DurationMS != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if len(exec.calls) != 0 {
		t.Error("executor must not be invoked for an empty batch")
	}
}

func TestRunPartitionInvariant(t *testing.T) {
	units := []domain.Unit{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{{
		"a": {Success: true, RawResponse: goodJSON("a")},
		"b": {Success: true, RawResponse: "total garbage"},
		"c": {Success: false},
	}}}
	res, err := newTestService(exec, 0, nil).Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Analyses)+len(res.FailedUnitIDs) != len(units) {
		t.Fatalf("partition broken: %d analyses + %d failed != %d units",
			len(res.Analyses), len(res.FailedUnitIDs), len(units))
	}
	seen := map[string]bool{}
	for _, rec := range res.Analyses {
		seen[rec.ID] = true
	}
	for _, id := range res.FailedUnitIDs {
		if seen[id] {
			t.Errorf("unit %s is in both partitions", id)
		}
		seen[id] = true
	}
	for _, u := range units {
		if !seen[u.ID] {
			t.Errorf("unit %s missing from result", u.ID)
		}
	}
}

func TestRunRecoversFromReportedFailure(t *testing.T) {
	units := []domain.Unit{{ID: "a"}}
	raw := "The call failed validation upstream but the payload is:\n```json\n" + goodJSON("a") + "\n```"
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{{
		"a": {Success: false, RawResponse: raw, Error: "schema validation failed"},
	}}}
	var logs bytes.Buffer
	res, err := newTestService(exec, 0, &logs).Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Analyses) != 1 || len(res.FailedUnitIDs) != 0 {
		t.Fatalf("expected recovery, got analyses=%d failed=%v", len(res.Analyses), res.FailedUnitIDs)
	}
	if !strings.Contains(logs.String(), "recovered analysis despite reported failure") {
		t.Errorf("expected a recovery log event, got: %s", logs.String())
	}
}

func TestRunFallsBackToStructuredOutput(t *testing.T) {
	units := []domain.Unit{{ID: "a"}}
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{{
		"a": {
			Success:     true,
			RawResponse: "not json at all",
			Output:      map[string]any{"moduleId": "a", "overview": "from output"},
		},
	}}}
	res, err := newTestService(exec, 0, nil).Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Analyses) != 1 {
		t.Fatalf("expected fallback to output, failed=%v", res.FailedUnitIDs)
	}
	if res.Analyses[0].Overview != "from output" {
		t.Errorf("unexpected overview: %q", res.Analyses[0].Overview)
	}
}

func TestRunOutputOnlyFailureIsTerminal(t *testing.T) {
	units := []domain.Unit{{ID: "a"}}
	// A reported failure without raw text gets no structured-output fallback,
	// even when the output alone would parse.
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{{
		"a": {
			Success: false,
			Output:  map[string]any{"moduleId": "a", "overview": "looks fine"},
			Error:   "upstream rejected",
		},
	}}}
	var logs bytes.Buffer
	res, err := newTestService(exec, 0, &logs).Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Analyses) != 0 || len(res.FailedUnitIDs) != 1 || res.FailedUnitIDs[0] != "a" {
		t.Fatalf("expected terminal failure, got analyses=%d failed=%v", len(res.Analyses), res.FailedUnitIDs)
	}
	if strings.Contains(logs.String(), "recovered analysis") {
		t.Errorf("no recovery must be attempted: %s", logs.String())
	}
}

func TestRunFailureDetails(t *testing.T) {
	units := []domain.Unit{{ID: "a"}, {ID: "b"}}
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{
		{
			"a": {Success: true, RawResponse: goodJSON("a")},
			"b": {Success: true, RawResponse: "plain prose, round one"},
		},
		{
			"b": {Success: true, RawResponse: "plain prose, round two"},
		},
	}}
	res, err := newTestService(exec, 1, nil).Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.FailureDetails) != len(res.FailedUnitIDs) {
		t.Fatalf("details/ids mismatch: %d details, %d ids", len(res.FailureDetails), len(res.FailedUnitIDs))
	}
	if len(res.FailureDetails) != 1 {
		t.Fatalf("expected one remaining failure, got %+v", res.FailureDetails)
	}
	d := res.FailureDetails[0]
	if d.UnitID != "b" {
		t.Errorf("unexpected failed unit: %s", d.UnitID)
	}
	if d.Round != 1 {
		t.Errorf("detail must carry the final round, got %d", d.Round)
	}
	if !strings.Contains(d.Message, "no JSON") {
		t.Errorf("detail message lost the parse reason: %q", d.Message)
	}
	if !strings.Contains(d.RawSnippet, "round two") {
		t.Errorf("detail snippet must come from the final round: %q", d.RawSnippet)
	}
}

func TestRunFailureWithoutTextIsTerminal(t *testing.T) {
	units := []domain.Unit{{ID: "a"}}
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{{
		"a": {Success: false, Error: "timeout"},
	}}}
	res, err := newTestService(exec, 0, nil).Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.FailedUnitIDs) != 1 || res.FailedUnitIDs[0] != "a" {
		t.Errorf("expected a terminal failure, got %+v", res)
	}
}

func TestRunRetriesOnlyFailedSubset(t *testing.T) {
	units := []domain.Unit{{ID: "a"}, {ID: "b"}}
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{
		{
			"a": {Success: true, RawResponse: goodJSON("a")},
			"b": {Success: true, RawResponse: "garbage"},
		},
		{
			"b": {Success: true, RawResponse: goodJSON("b")},
		},
	}}
	res, err := newTestService(exec, 1, nil).Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Analyses) != 2 || len(res.FailedUnitIDs) != 0 {
		t.Fatalf("expected both units analyzed, got analyses=%d failed=%v", len(res.Analyses), res.FailedUnitIDs)
	}
	if len(exec.calls) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(exec.calls))
	}
	if len(exec.calls[1]) != 1 || exec.calls[1][0] != "b" {
		t.Errorf("round 2 must resubmit only the failed unit, got %v", exec.calls[1])
	}
	// a came from round 1, b from round 2.
	if res.Analyses[0].ID != "a" || res.Analyses[1].ID != "b" {
		t.Errorf("unexpected accumulation order: %s, %s", res.Analyses[0].ID, res.Analyses[1].ID)
	}
}

func TestRunRetryBudgetExhausted(t *testing.T) {
	units := []domain.Unit{{ID: "a"}}
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{
		{"a": {Success: true, RawResponse: "garbage"}},
		{"a": {Success: true, RawResponse: "still garbage"}},
		{"a": {Success: true, RawResponse: "garbage forever"}},
	}}
	res, err := newTestService(exec, 2, nil).Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(exec.calls) != 3 {
		t.Errorf("expected initial + 2 retry rounds, got %d", len(exec.calls))
	}
	if len(res.FailedUnitIDs) != 1 {
		t.Errorf("expected the unit to stay failed, got %+v", res)
	}
}

func TestRunZeroRetryAttempts(t *testing.T) {
	units := []domain.Unit{{ID: "a"}}
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{
		{"a": {Success: true, RawResponse: "garbage"}},
	}}
	res, err := newTestService(exec, 0, nil).Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(exec.calls) != 1 {
		t.Errorf("expected a single round, got %d", len(exec.calls))
	}
	if len(res.FailedUnitIDs) != 1 {
		t.Errorf("expected failure kept, got %+v", res)
	}
}

func TestRunCancellationStopsRetries(t *testing.T) {
	units := []domain.Unit{{ID: "a"}, {ID: "b"}}
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{
		{
			"a": {Success: true, RawResponse: goodJSON("a")},
			"b": {Success: false},
		},
		{
			"b": {Success: true, RawResponse: goodJSON("b")},
		},
	}}
	svc := newTestService(exec, 5, nil)
	svc.Cancelled = func() bool { return true }

	res, err := svc.Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(exec.calls) != 1 {
		t.Errorf("cancellation must prevent retry rounds, got %d rounds", len(exec.calls))
	}
	if len(res.Analyses) != 1 || len(res.FailedUnitIDs) != 1 {
		t.Errorf("accumulated successes must be kept, got %+v", res)
	}
}

func TestRunRoundLevelHardFailure(t *testing.T) {
	units := []domain.Unit{{ID: "a"}, {ID: "b"}}
	// Executor yields no output at all (nil map, nil error).
	exec := &fakeExecutor{}
	var itemCalls int
	svc := newTestService(exec, 0, nil)
	svc.OnItemDone = func(domain.Unit, domain.MapResult) { itemCalls++ }

	res, err := svc.Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.FailedUnitIDs) != 2 {
		t.Errorf("expected every unit failed, got %+v", res)
	}
	if itemCalls != 0 {
		t.Error("no per-item callback without per-item results")
	}
}

func TestRunExecutorErrorPropagates(t *testing.T) {
	units := []domain.Unit{{ID: "a"}}
	exec := &fakeExecutor{err: context.DeadlineExceeded}
	_, err := newTestService(exec, 0, nil).Run(context.Background(), units, domain.GraphContext{})
	if err == nil {
		t.Fatal("expected hard executor failure to propagate")
	}
}

func TestRunItemCallbackFiresPerRound(t *testing.T) {
	units := []domain.Unit{{ID: "a"}}
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{
		{"a": {Success: true, RawResponse: "garbage"}},
		{"a": {Success: true, RawResponse: goodJSON("a")}},
	}}
	svc := newTestService(exec, 1, nil)
	var calls []bool
	svc.OnItemDone = func(u domain.Unit, res domain.MapResult) {
		if u.ID != "a" {
			t.Errorf("unexpected unit %s", u.ID)
		}
		calls = append(calls, res.Success)
	}

	if _, err := svc.Run(context.Background(), units, domain.GraphContext{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("expected one callback per round, got %d", len(calls))
	}
}

func TestRunMissingResultCountsAsFailure(t *testing.T) {
	units := []domain.Unit{{ID: "a"}, {ID: "b"}}
	exec := &fakeExecutor{rounds: []map[string]domain.MapResult{
		{"a": {Success: true, RawResponse: goodJSON("a")}},
	}}
	res, err := newTestService(exec, 0, nil).Run(context.Background(), units, domain.GraphContext{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Analyses) != 1 || len(res.FailedUnitIDs) != 1 || res.FailedUnitIDs[0] != "b" {
		t.Errorf("unit without a result must fail, got %+v", res)
	}
}
