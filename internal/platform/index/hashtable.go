package index

import (
	"fmt"

	"kvstore/internal/domain"

	farm "github.com/dgryski/go-farm"
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
)

// Growth is triggered once size reaches loadFactorNum/loadFactorDen of capacity.
const (
	loadFactorNum = 7
	loadFactorDen = 10
)

// Index is an open-addressing hash table over three parallel arrays with
// linear probing. There is no delete, so slots are either empty or occupied
// and lookups may stop at the first empty slot.
//
// Index is not safe for concurrent use.
type Index struct {
	keys     []string
	values   []string
	state    []slotState
	capacity int
	size     int
}

func New(initialCapacity int) (*Index, error) {
	if initialCapacity < 1 {
		return nil, fmt.Errorf("%w: initial capacity must be >= 1, got %d", domain.ErrInvalidArgument, initialCapacity)
	}
	capacity := 1
	for capacity < initialCapacity {
		capacity <<= 1
	}
	idx := &Index{}
	idx.allocate(capacity)
	return idx, nil
}

func (idx *Index) allocate(capacity int) {
	idx.capacity = capacity
	idx.size = 0
	idx.keys = make([]string, capacity)
	idx.values = make([]string, capacity)
	idx.state = make([]slotState, capacity)
}

// slot maps key to its home position. capacity is a power of two.
func (idx *Index) slot(key string) int {
	return int(farm.Hash32([]byte(key)) & uint32(idx.capacity-1))
}

func (idx *Index) needsGrow() bool {
	return idx.size*loadFactorDen >= idx.capacity*loadFactorNum
}

func (idx *Index) grow() {
	oldKeys, oldValues, oldState := idx.keys, idx.values, idx.state
	idx.allocate(idx.capacity << 1)
	for i := range oldState {
		if oldState[i] == slotOccupied {
			idx.Put(oldKeys[i], oldValues[i])
		}
	}
}

// Put inserts key or overwrites its value.
func (idx *Index) Put(key, value string) {
	if idx.needsGrow() {
		idx.grow()
	}
	mask := idx.capacity - 1
	for i := idx.slot(key); ; i = (i + 1) & mask {
		if idx.state[i] == slotEmpty {
			idx.keys[i] = key
			idx.values[i] = value
			idx.state[i] = slotOccupied
			idx.size++
			return
		}
		if idx.keys[i] == key {
			idx.values[i] = value
			return
		}
	}
}

// Get returns the value stored for key. The boolean is false when key was
// never inserted, which keeps an empty value distinguishable from absence.
//
// Tables of capacity 1 and 2 can be completely full between insertions, so
// the scan is bounded by capacity instead of relying on an empty slot.
func (idx *Index) Get(key string) (string, bool) {
	mask := idx.capacity - 1
	i := idx.slot(key)
	for n := 0; n < idx.capacity; n++ {
		if idx.state[i] == slotEmpty {
			return "", false
		}
		if idx.keys[i] == key {
			return idx.values[i], true
		}
		i = (i + 1) & mask
	}
	return "", false
}

// Range calls fn for every entry in slot order until fn returns false.
func (idx *Index) Range(fn func(key, value string) bool) {
	for i := range idx.state {
		if idx.state[i] != slotOccupied {
			continue
		}
		if !fn(idx.keys[i], idx.values[i]) {
			return
		}
	}
}

func (idx *Index) Len() int {
	return idx.size
}

func (idx *Index) Cap() int {
	return idx.capacity
}
