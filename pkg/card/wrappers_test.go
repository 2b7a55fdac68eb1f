package card

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_DelaysByTicks(t *testing.T) {
	const delay = 3
	l := Loop(double(), delay)

	var state *domain.CardState
	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	for i, x := range inputs {
		res := l.Process(x, ctx, state)
		state = res.State
		if i < delay {
			assert.Equal(t, x, res.Output, "call %d passes through", i+1)
			continue
		}
		assert.Equal(t, inputs[i-delay]*2, res.Output, "call %d", i+1)
	}
}

func TestLoop_HistoryIsBounded(t *testing.T) {
	l := Loop(inc(), 2)
	var state *domain.CardState
	for i := 0; i < 50; i++ {
		state = l.Process(i, ctx, state).State
	}
	ls, ok := state.Value.(LoopState[int])
	require.True(t, ok)
	assert.Len(t, ls.History, 4)
	assert.Equal(t, []int{46, 47, 48, 49}, ls.History)
	assert.Equal(t, 50, state.Version)
}

func TestLoop_ZeroDelayCallsDirectly(t *testing.T) {
	l := Loop(double(), 0)
	assert.Equal(t, 8, l.Process(4, ctx, nil).Output)
}

func TestMemo_CallsOncePerKey(t *testing.T) {
	calls := 0
	c := Pure(meta("sq"), sig(domain.PortControl, domain.PortControl), func(x int, _ domain.CardContext) int {
		calls++
		return x * x
	})
	m := Memo(c, strconv.Itoa)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 49, m.Process(7, ctx, nil).Output)
		assert.Equal(t, 64, m.Process(8, ctx, nil).Output)
	}
	assert.Equal(t, 2, calls)
}

func TestMemo_FIFOEviction(t *testing.T) {
	calls := map[int]int{}
	c := Pure(meta("id"), sig(domain.PortControl, domain.PortControl), func(x int, _ domain.CardContext) int {
		calls[x]++
		return x
	})
	m := Memo(c, strconv.Itoa)

	for i := 0; i <= DefaultMemoCapacity; i++ {
		m.Process(i, ctx, nil)
	}
	// Key 0 was inserted first and is gone; key 1 survives.
	m.Process(1, ctx, nil)
	assert.Equal(t, 1, calls[1])
	m.Process(0, ctx, nil)
	assert.Equal(t, 2, calls[0])
}

func TestMemo_HitDoesNotRefresh(t *testing.T) {
	calls := map[int]int{}
	c := Pure(meta("id"), sig(domain.PortControl, domain.PortControl), func(x int, _ domain.CardContext) int {
		calls[x]++
		return x
	})
	m := MemoWithCapacity(c, strconv.Itoa, 2)

	m.Process(1, ctx, nil)
	m.Process(2, ctx, nil)
	m.Process(1, ctx, nil) // hit, no refresh
	m.Process(3, ctx, nil) // evicts 1
	m.Process(1, ctx, nil)

	assert.Equal(t, 2, calls[1])
	assert.Equal(t, 1, calls[2])
}

func TestFIFOCache_Bounded(t *testing.T) {
	cache := &fifoCache[int]{capacity: 3, entries: map[string]Result[int]{}}
	for i := 0; i < 10; i++ {
		cache.put(strconv.Itoa(i), Result[int]{Output: i})
	}
	assert.Equal(t, 3, cache.len())
	_, ok := cache.get("6")
	assert.False(t, ok)
	res, ok := cache.get("9")
	require.True(t, ok)
	assert.Equal(t, 9, res.Output)
}

func TestAsync(t *testing.T) {
	release := make(chan struct{})
	a := Async(meta("slow"), sig(domain.PortControl, domain.PortControl), func(ctx context.Context, x int, _ domain.CardContext) (int, error) {
		select {
		case <-release:
			return x * 3, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	res := a.Process(5, ctx, nil)
	require.NotNil(t, res.Output)
	assert.False(t, res.Output.Ready())

	close(release)
	v, err := res.Output.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, v)
	assert.True(t, res.Output.Ready())
}

func TestAsync_Cancel(t *testing.T) {
	a := Async(meta("forever"), sig(domain.PortControl, domain.PortControl), func(ctx context.Context, _ int, _ domain.CardContext) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	p := a.Process(1, ctx, nil).Output

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Await(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	p.Cancel()
	p.Cancel()
	_, err = p.Await(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAwait(t *testing.T) {
	ok := Async(meta("ok"), sig(domain.PortControl, domain.PortControl), func(_ context.Context, x int, _ domain.CardContext) (int, error) {
		return x + 1, nil
	})
	bad := Async(meta("bad"), sig(domain.PortControl, domain.PortControl), func(context.Context, int, domain.CardContext) (int, error) {
		return 0, errors.New("offline")
	})

	chain := Series(Await(context.Background(), ok), double())
	assert.Equal(t, 8, chain.Process(3, ctx, nil).Output)

	res := Await(context.Background(), bad).Process(3, ctx, nil)
	assert.Equal(t, []string{"bad: offline"}, res.Errors)

	v, err := Resolved(4, nil).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

type filterParams struct {
	Cutoff float64 `mapstructure:"cutoff"`
	Mode   string  `mapstructure:"mode"`
}

func TestDecodeParams(t *testing.T) {
	s := domain.CardSignature{Parameters: []domain.Parameter{
		{Name: "cutoff", Type: domain.ParamNumber, Default: 1000.0, Min: domain.Float(20), Max: domain.Float(20000)},
		{Name: "mode", Type: domain.ParamEnum, Default: "lp", Options: []string{"lp", "hp"}},
	}}

	var p filterParams
	require.NoError(t, DecodeParams(s, map[string]any{"mode": "hp"}, &p))
	assert.Equal(t, filterParams{Cutoff: 1000, Mode: "hp"}, p)

	err := DecodeParams(s, map[string]any{"cutoff": 5.0}, &p)
	assert.Error(t, err)
}
