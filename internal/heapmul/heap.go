package heapmul

// node is a heap chain link. There is one node per row of the first
// operand; its index is the row and j is the current column.
type node struct {
	j    int32
	next int32
}

type entry[K any] struct {
	key  K
	head int32
}

// mheap is a 1-indexed binary heap whose top is the key stored first. Equal
// keys met on the insertion path are merged into one chain.
type mheap[K any, S space[K]] struct {
	sp S
	e  []entry[K]
}

func newHeap[K any, S space[K]](sp S, capacity int) *mheap[K, S] {
	return &mheap[K, S]{sp: sp, e: make([]entry[K], 1, capacity+1)}
}

func (h *mheap[K, S]) len() int { return len(h.e) - 1 }

func (h *mheap[K, S]) top() K { return h.e[1].key }

// insert adds node n under key k. When an equal key is already on the path
// to the root, n joins that chain and k is released.
func (h *mheap[K, S]) insert(k K, n int32, nodes []node) {
	i := len(h.e)
	for j := i / 2; j >= 1; j /= 2 {
		c := h.sp.cmp(k, h.e[j].key)
		if c == 0 {
			nodes[n].next = h.e[j].head
			h.e[j].head = n
			h.sp.release(k)
			return
		}
		if c < 0 {
			break
		}
	}
	h.e = append(h.e, entry[K]{})
	for j := i / 2; j >= 1 && h.sp.cmp(k, h.e[j].key) > 0; j /= 2 {
		h.e[i] = h.e[j]
		i = j
	}
	h.e[i] = entry[K]{key: k, head: n}
}

// pop removes and returns the top entry.
func (h *mheap[K, S]) pop() entry[K] {
	n := len(h.e) - 1
	if n < 1 {
		panic("heapmul: pop from empty heap")
	}
	top := h.e[1]
	last := h.e[n]
	h.e = h.e[:n]
	if n == 1 {
		return top
	}
	i := 1
	for {
		c := 2 * i
		if c >= n {
			break
		}
		if c+1 < n && h.sp.cmp(h.e[c+1].key, h.e[c].key) > 0 {
			c++
		}
		if h.sp.cmp(last.key, h.e[c].key) >= 0 {
			break
		}
		h.e[i] = h.e[c]
		i = c
	}
	h.e[i] = last
	return top
}
