package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/cardflow/pkg/card"
	"github.com/aretw0/cardflow/pkg/domain"
)

// DefaultTimeout bounds a single process call when the card sets none.
const DefaultTimeout = 30 * time.Second

// Runner builds cards that execute local programs.
// Only commands declared through CardConfig are ever run: graphs reference
// cards by id and cannot inject commands or flags.
type Runner struct {
	baseDir string
	timeout time.Duration
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout sets the default per-call timeout.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cards builds one card per config.
func (r *Runner) Cards(configs []CardConfig) ([]domain.Card, error) {
	out := make([]domain.Card, 0, len(configs))
	for _, cfg := range configs {
		c, err := r.Card(cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Card builds a card that runs cfg.Command once per process call.
//
// The input is written to stdin as JSON. The card context is exposed as
// CARDFLOW_* environment variables. Stdout is decoded as JSON when possible
// and returned as a trimmed string otherwise. Failures become advisory errors
// with a nil output.
func (r *Runner) Card(cfg CardConfig) (domain.Card, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	timeout := r.timeout
	if cfg.Timeout != "" {
		timeout, _ = time.ParseDuration(cfg.Timeout)
	}

	fn := card.ProcessFunc[any, any](func(input any, cctx domain.CardContext, _ *domain.CardState) card.Result[any] {
		out, err := r.execute(cfg, timeout, input, cctx)
		if err != nil {
			return card.Result[any]{Errors: []string{fmt.Sprintf("process card %s: %v", cfg.ID, err)}}
		}
		return card.Result[any]{Output: out}
	})
	return card.New(cfg.Meta(), cfg.Signature, fn).Erase(), nil
}

func (r *Runner) execute(cfg CardConfig, timeout time.Duration, input any, cctx domain.CardContext) (any, error) {
	stdin, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("input is not serializable: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), environment(cfg, cctx)...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("timed out after %s", timeout)
		}
		return nil, fmt.Errorf("execution failed: %v. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	trimmed := strings.TrimSpace(stdout.String())
	var result any
	if trimmed != "" && json.Unmarshal([]byte(trimmed), &result) == nil {
		return result, nil
	}
	return trimmed, nil
}

func environment(cfg CardConfig, cctx domain.CardContext) []string {
	env := []string{
		"CARDFLOW_CARD_ID=" + cfg.ID,
		fmt.Sprintf("CARDFLOW_TICK=%d", cctx.CurrentTick),
		fmt.Sprintf("CARDFLOW_SAMPLE=%d", cctx.CurrentSample),
		fmt.Sprintf("CARDFLOW_TEMPO=%v", cctx.Transport.Tempo),
		fmt.Sprintf("CARDFLOW_PLAYING=%t", cctx.Transport.Playing),
		fmt.Sprintf("CARDFLOW_SAMPLE_RATE=%d", cctx.Engine.SampleRate),
	}
	for k, v := range cfg.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
