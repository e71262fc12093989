package ai

import (
	"context"
	"sync"

	domai "github.com/bryanwahyu/docwiki/internal/domain/ai"
	analysis "github.com/bryanwahyu/docwiki/internal/domain/analysis"
	"github.com/bryanwahyu/docwiki/internal/infra/ai/prompt"
)

const (
	defaultConcurrency = 4
)

// Runner fans one round of prompt inputs out to the AI client with bounded
// concurrency and a per-item timeout. It implements the analysis.TaskExecutor
// port. One call per item per round; cross-round retries belong to the caller.
type Runner struct {
	client domai.Client
}

func NewRunner(client domai.Client) *Runner {
	return &Runner{client: client}
}

// Execute returns one MapResult per input, keyed by the input's moduleId
// field. A per-item transport error becomes a failed MapResult, never an error
// from Execute; only context cancellation of the whole round propagates.
func (r *Runner) Execute(ctx context.Context, inputs []analysis.PromptInput, cfg analysis.ExecConfig) (map[string]analysis.MapResult, error) {
	if len(inputs) == 0 {
		return map[string]analysis.MapResult{}, nil
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if concurrency > len(inputs) {
		concurrency = len(inputs)
	}

	system := prompt.GetSystemPrompt()
	jobs := make(chan analysis.PromptInput)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]analysis.MapResult, len(inputs))
		done    int
	)

	// OnProgress fires under the lock so callers see done counts in order.
	record := func(id string, res analysis.MapResult) {
		mu.Lock()
		defer mu.Unlock()
		results[id] = res
		done++
		if cfg.OnProgress != nil {
			cfg.OnProgress(done, len(inputs))
		}
	}

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for input := range jobs {
				id := input[analysis.PromptKeyModuleID]
				record(id, r.runOne(ctx, system, input, cfg))
			}
		}()
	}

	for _, input := range inputs {
		select {
		case jobs <- input:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, system string, input analysis.PromptInput, cfg analysis.ExecConfig) analysis.MapResult {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	raw, err := r.client.Complete(ctx, cfg.Model, system, prompt.GetUserPrompt(input))
	if err != nil {
		// Keep whatever text came back; the recovery chain may still use it.
		return analysis.MapResult{Success: false, RawResponse: raw, Error: err.Error()}
	}
	return analysis.MapResult{Success: true, RawResponse: raw}
}
