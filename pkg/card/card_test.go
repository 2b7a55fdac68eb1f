package card

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = domain.CardContext{
	CurrentTick: 1,
	Transport:   domain.Transport{Playing: true, Tempo: 120, TimeSignature: [2]int{4, 4}},
	Engine:      domain.EngineInfo{SampleRate: 48000, BufferSize: 256},
}

func sig(in, out domain.PortType) domain.CardSignature {
	return domain.CardSignature{
		Inputs:  []domain.Port{{Name: "in", Type: in}},
		Outputs: []domain.Port{{Name: "out", Type: out}},
	}
}

func meta(id string) domain.CardMeta {
	return domain.CardMeta{ID: id, Name: id, Category: domain.CategoryTransforms}
}

func double() *Card[int, int] {
	return Pure(meta("double"), sig(domain.PortControl, domain.PortControl), func(x int, _ domain.CardContext) int { return x * 2 })
}

func inc() *Card[int, int] {
	return Pure(meta("inc"), sig(domain.PortControl, domain.PortControl), func(x int, _ domain.CardContext) int { return x + 1 })
}

func counter() *Card[int, int] {
	return Stateful(meta("counter"), sig(domain.PortTrigger, domain.PortControl), 0, func(x int, _ domain.CardContext, n int) (int, int) {
		return n + x, n + x
	})
}

func TestPure(t *testing.T) {
	res := double().Process(21, ctx, nil)
	assert.Equal(t, 42, res.Output)
	assert.Nil(t, res.State)
	assert.Empty(t, res.Errors)
}

func TestStateful_VersionIncrements(t *testing.T) {
	c := counter()
	require.NotNil(t, c.InitialState())
	assert.Equal(t, 0, c.InitialState().Version)

	r1 := c.Process(2, ctx, nil)
	assert.Equal(t, 2, r1.Output)
	assert.Equal(t, 1, r1.State.Version)

	r2 := c.Process(3, ctx, r1.State)
	assert.Equal(t, 5, r2.Output)
	assert.Equal(t, 2, r2.State.Version)
	assert.True(t, r2.State.Changed(r1.State))

	// Card holds no state of its own.
	r3 := c.Process(1, ctx, nil)
	assert.Equal(t, 1, r3.Output)
}

func TestProcess_PanicBecomesError(t *testing.T) {
	c := Pure(meta("boom"), sig(domain.PortControl, domain.PortControl), func(int, domain.CardContext) int { panic("bad") })
	res := c.Process(1, ctx, nil)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "panic: bad")
}

func TestSeries_MatchesManualComposition(t *testing.T) {
	f, g := double(), inc()
	s := Series(f, g)

	for _, x := range []int{-3, 0, 7, 100} {
		want := g.Process(f.Process(x, ctx, nil).Output, ctx, nil).Output
		assert.Equal(t, want, s.Process(x, ctx, nil).Output)
	}
	assert.Equal(t, "series(double,inc)", s.ID())
	assert.Equal(t, domain.PortControl, s.Signature().Inputs[0].Type)
}

func TestSeries_ConcatenatesErrors(t *testing.T) {
	failing := func(id string) *Card[int, int] {
		return New(meta(id), sig(domain.PortControl, domain.PortControl), func(x int, _ domain.CardContext, _ *domain.CardState) Result[int] {
			return Result[int]{Output: x + 1, Errors: []string{id + " failed"}}
		})
	}
	res := Series(failing("a"), failing("b")).Process(0, ctx, nil)
	assert.Equal(t, 2, res.Output)
	assert.Equal(t, []string{"a failed", "b failed"}, res.Errors)
}

func TestSeries_KeepsSecondState(t *testing.T) {
	s := Series(double(), counter())
	r1 := s.Process(1, ctx, nil)
	r2 := s.Process(1, ctx, r1.State)
	assert.Equal(t, 4, r2.Output)
	assert.Equal(t, 2, r2.State.Version)
}

func TestParallel(t *testing.T) {
	toStr := Pure(meta("str"), sig(domain.PortControl, domain.PortString), func(x int, _ domain.CardContext) string { return strconv.Itoa(x) })
	p := Parallel(double(), toStr)

	res := p.Process(4, ctx, nil)
	assert.Equal(t, Pair[int, string]{First: 8, Second: "4"}, res.Output)
	assert.Nil(t, res.State)
	assert.Len(t, p.Signature().Outputs, 1, "outputs are unioned by name")
}

func TestParallel_ThreadsBothStates(t *testing.T) {
	p := Parallel(counter(), counter())
	r1 := p.Process(1, ctx, nil)
	r2 := p.Process(2, ctx, r1.State)

	assert.Equal(t, Pair[int, int]{First: 3, Second: 3}, r2.Output)
	ps, ok := r2.State.Value.(PairState)
	require.True(t, ok)
	assert.Equal(t, 2, ps.First.Version)
	assert.Equal(t, 2, r2.State.Version)
}

func TestBranch(t *testing.T) {
	calls := 0
	pred := func(x int, _ domain.CardContext) bool {
		calls++
		return x > 0
	}
	b := Branch(pred, double(), inc())

	assert.Equal(t, 10, b.Process(5, ctx, nil).Output)
	assert.Equal(t, -4, b.Process(-5, ctx, nil).Output)
	assert.Equal(t, 2, calls)
	assert.Equal(t, domain.CategoryRouting, b.Meta().Category)
}

func TestErase(t *testing.T) {
	e := double().Erase()
	res := e.Process(3, ctx, nil)
	assert.Equal(t, 6, res.Output)

	res = e.Process("three", ctx, nil)
	assert.Nil(t, res.Output)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "expected input int")

	typed, ok := Unwrap[int, int](e)
	require.True(t, ok)
	assert.Equal(t, "double", typed.ID())

	_, ok = Unwrap[string, int](e)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	positive := func(x int) error {
		if x < 0 {
			return errors.New("negative")
		}
		return nil
	}
	small := func(x int) error {
		if x > 10 {
			return fmt.Errorf("%d too large", x)
		}
		return nil
	}
	v := Validate(double(), positive, small)

	res := v.Process(3, ctx, nil)
	assert.Equal(t, 6, res.Output)
	assert.Empty(t, res.Errors)

	res = v.Process(-1, ctx, nil)
	assert.Equal(t, -2, res.Output, "input is processed even when invalid")
	assert.Equal(t, []string{"double: invalid input: negative"}, res.Errors)

	res = v.Process(20, ctx, nil)
	assert.Equal(t, []string{"double: invalid output: 40 too large"}, res.Errors)

	assert.Empty(t, Validate(double(), nil, nil).Process(-1, ctx, nil).Errors)
}

func TestProfile(t *testing.T) {
	res := Profile(counter()).Process(2, ctx, nil)
	assert.Equal(t, 2, res.Output)
	assert.Equal(t, 1, res.State.Version)
	require.NotNil(t, res.Timing)
	assert.False(t, res.Timing.Start.IsZero())
	assert.GreaterOrEqual(t, int64(res.Timing.Duration), int64(0))
}
