package card

import (
	"sync"

	"github.com/aretw0/cardflow/pkg/domain"
)

// DefaultMemoCapacity is the number of results Memo keeps before evicting.
const DefaultMemoCapacity = 1000

// KeyFunc serializes an input into a memoization key.
type KeyFunc[A any] func(A) string

// Memo caches c's results by key(input), evicting the oldest inserted key once
// more than DefaultMemoCapacity entries are held. Eviction is FIFO, not LRU:
// hits do not refresh an entry.
//
// The cache ignores state and context, so only wrap cards that are pure in
// their input.
func Memo[A, B any](c *Card[A, B], key KeyFunc[A]) *Card[A, B] {
	return MemoWithCapacity(c, key, DefaultMemoCapacity)
}

// MemoWithCapacity is Memo with an explicit capacity. Capacity below 1 uses the default.
func MemoWithCapacity[A, B any](c *Card[A, B], key KeyFunc[A], capacity int) *Card[A, B] {
	if capacity < 1 {
		capacity = DefaultMemoCapacity
	}
	cache := &fifoCache[B]{capacity: capacity, entries: make(map[string]Result[B])}

	out := New(wrapMeta("memo", c.meta), c.sig, func(in A, ctx domain.CardContext, state *domain.CardState) Result[B] {
		k := key(in)
		if res, ok := cache.get(k); ok {
			return res
		}
		res := c.Process(in, ctx, state)
		cache.put(k, res)
		return res
	})
	out.initial = c.InitialState()
	return out
}

type fifoCache[B any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]Result[B]
	order    []string
}

func (f *fifoCache[B]) get(k string) (Result[B], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.entries[k]
	return res, ok
}

func (f *fifoCache[B]) put(k string, res Result[B]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[k]; ok {
		f.entries[k] = res
		return
	}
	f.entries[k] = res
	f.order = append(f.order, k)
	for len(f.order) > f.capacity {
		oldest := f.order[0]
		f.order[0] = ""
		f.order = f.order[1:]
		delete(f.entries, oldest)
	}
}

func (f *fifoCache[B]) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
