// Package memory holds per-call allocation helpers for the multiplication
// kernels and the garbage collector controls used around large products.
package memory

// SlotArena is a pool of fixed-width monomial slots carved from one
// contiguous block of words. Slots are addressed by small integer handles
// instead of pointers, so the block can grow without invalidating them.
//
// Allocation pops the free list first and otherwise bumps the offset; when
// the block is exhausted it is doubled. An arena is owned by a single
// goroutine.
type SlotArena struct {
	width int
	buf   []uint64
	next  int32
	free  []int32
}

// NewSlotArena creates an arena of slots of width words with room for
// capacity slots before the first growth.
func NewSlotArena(width, capacity int) *SlotArena {
	if width < 1 {
		width = 1
	}
	if capacity < 1 {
		capacity = 1
	}
	return &SlotArena{
		width: width,
		buf:   make([]uint64, width*capacity),
		free:  make([]int32, 0, capacity),
	}
}

// Alloc returns the handle of an unused slot. The slot contents are undefined.
func (a *SlotArena) Alloc() int32 {
	if n := len(a.free); n > 0 {
		s := a.free[n-1]
		a.free = a.free[:n-1]
		return s
	}
	if int(a.next+1)*a.width > len(a.buf) {
		grown := make([]uint64, 2*len(a.buf))
		copy(grown, a.buf)
		a.buf = grown
	}
	s := a.next
	a.next++
	return s
}

// Release returns slot s to the free list.
func (a *SlotArena) Release(s int32) {
	a.free = append(a.free, s)
}

// Slot returns the words of slot s. The slice is only valid until the next
// Alloc, which may move the block.
func (a *SlotArena) Slot(s int32) []uint64 {
	off := int(s) * a.width
	return a.buf[off : off+a.width : off+a.width]
}

// Reset releases every slot without freeing the backing block.
func (a *SlotArena) Reset() {
	a.next = 0
	a.free = a.free[:0]
}

// InUse returns the number of slots currently handed out.
func (a *SlotArena) InUse() int {
	return int(a.next) - len(a.free)
}

// CapacitySlots returns the number of slots the block can hold without growing.
func (a *SlotArena) CapacitySlots() int {
	return len(a.buf) / a.width
}
