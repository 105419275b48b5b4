package level

import "matchcore/internal/common"

// dequeContainer is the arena-plus-generational-index deque variant named
// explicitly in spec §9 ("Where the chosen language lacks stable-address
// linked lists in its standard library, an arena-plus-index representation
// (Vec<Node> + free list + generational indices) reproduces the same
// contract and is preferred"). Nodes live in a growable slice; growth
// never invalidates existing handles because handles are indices, not
// pointers, and a node's slot is only reused after Erase bumps its
// generation — a stale handle from before that Erase will never alias a
// different order's slot.
type dequeNode struct {
	order      *common.Order
	prev, next int // -1 sentinel
	gen        uint32
	used       bool
}

type dequeHandle struct {
	idx int
	gen uint32
}

type dequeContainer struct {
	nodes     []dequeNode
	freeList  []int
	head, tail int // -1 sentinel
	count     int
}

func newDequeContainer() *dequeContainer {
	return &dequeContainer{head: -1, tail: -1}
}

func (c *dequeContainer) alloc() int {
	if n := len(c.freeList); n > 0 {
		idx := c.freeList[n-1]
		c.freeList = c.freeList[:n-1]
		return idx
	}
	c.nodes = append(c.nodes, dequeNode{})
	return len(c.nodes) - 1
}

// Insert appends to the back of the deque (spec §4.C4: "push back").
func (c *dequeContainer) Insert(o *common.Order) Handle {
	idx := c.alloc()
	n := &c.nodes[idx]
	n.order = o
	n.used = true
	n.prev = c.tail
	n.next = -1

	if c.tail != -1 {
		c.nodes[c.tail].next = idx
	} else {
		c.head = idx
	}
	c.tail = idx
	c.count++

	return dequeHandle{idx: idx, gen: n.gen}
}

func (c *dequeContainer) Erase(h Handle) {
	dh := h.(dequeHandle)
	n := &c.nodes[dh.idx]
	if !n.used || n.gen != dh.gen {
		return
	}

	if n.prev != -1 {
		c.nodes[n.prev].next = n.next
	} else {
		c.head = n.next
	}
	if n.next != -1 {
		c.nodes[n.next].prev = n.prev
	} else {
		c.tail = n.prev
	}

	n.used = false
	n.order = nil
	n.gen++
	c.count--
	c.freeList = append(c.freeList, dh.idx)
}

func (c *dequeContainer) Empty() bool {
	return c.count == 0
}

func (c *dequeContainer) Len() int {
	return c.count
}

// First returns the front of the deque (earliest arrival still resting).
func (c *dequeContainer) First() *common.Order {
	if c.head == -1 {
		return nil
	}
	return c.nodes[c.head].order
}
