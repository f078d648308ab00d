package containers

// Pool is a slot table backing handle-indexed resources. Slots carry a
// generation counter that is bumped every time a slot is vacated, so a
// handle held across a destroy-and-reuse cycle fails validation instead of
// silently aliasing the newer occupant.
//
// Not safe for concurrent use; callers own serialization.
type Pool[T any] struct {
	slots []poolSlot[T]
	live  int

	// When set, Add scans for the first vacated slot before appending.
	// Meant for resource classes that churn; append-only pools never
	// shrink their id space.
	reuseSlots bool
}

type poolSlot[T any] struct {
	value      T
	generation uint32
	valid      bool
}

func NewPool[T any](reuseSlots bool) *Pool[T] {
	return &Pool[T]{
		reuseSlots: reuseSlots,
	}
}

// Add stores value and returns its slot id and current generation.
func (p *Pool[T]) Add(value T) (uint32, uint32) {
	if p.reuseSlots {
		for i := range p.slots {
			if !p.slots[i].valid {
				p.slots[i].value = value
				p.slots[i].valid = true
				p.live++
				return uint32(i), p.slots[i].generation
			}
		}
	}
	p.slots = append(p.slots, poolSlot[T]{value: value, valid: true})
	p.live++
	return uint32(len(p.slots) - 1), 0
}

// Get returns the slot value when id is in range, the slot is live and the
// generation matches. Every failure mode reports false.
func (p *Pool[T]) Get(id, generation uint32) (*T, bool) {
	if id >= uint32(len(p.slots)) {
		return nil, false
	}
	slot := &p.slots[id]
	if !slot.valid || slot.generation != generation {
		return nil, false
	}
	return &slot.value, true
}

// Remove validates like Get, vacates the slot and bumps its generation.
// The evicted value is returned so the caller can release native objects.
func (p *Pool[T]) Remove(id, generation uint32) (T, bool) {
	var zero T
	if id >= uint32(len(p.slots)) {
		return zero, false
	}
	slot := &p.slots[id]
	if !slot.valid || slot.generation != generation {
		return zero, false
	}
	value := slot.value
	slot.value = zero
	slot.valid = false
	slot.generation++
	p.live--
	return value, true
}

// Each visits every live slot. Returning false from fn stops the walk.
func (p *Pool[T]) Each(fn func(id uint32, value *T) bool) {
	for i := range p.slots {
		if !p.slots[i].valid {
			continue
		}
		if !fn(uint32(i), &p.slots[i].value) {
			return
		}
	}
}

// Len is the total number of slots ever allocated, live or not.
func (p *Pool[T]) Len() int {
	return len(p.slots)
}

// Live is the number of occupied slots.
func (p *Pool[T]) Live() int {
	return p.live
}
