package level

import (
	"container/list"

	"matchcore/internal/common"
)

// listContainer is the doubly-linked-list variant: push-back insert,
// front-of-list first element, O(1) mid-queue erase via the stored
// *list.Element handle. No third-party doubly-linked list with stable,
// externally-held element handles exists in the retrieved example corpus,
// so this leans on the standard library's container/list — see DESIGN.md
// for the justification this spec requires for any standard-library-backed
// component.
type listContainer struct {
	l *list.List
}

func newListContainer() *listContainer {
	return &listContainer{l: list.New()}
}

func (c *listContainer) Insert(o *common.Order) Handle {
	return c.l.PushBack(o)
}

func (c *listContainer) Erase(h Handle) {
	c.l.Remove(h.(*list.Element))
}

func (c *listContainer) Empty() bool {
	return c.l.Len() == 0
}

func (c *listContainer) Len() int {
	return c.l.Len()
}

func (c *listContainer) First() *common.Order {
	front := c.l.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*common.Order)
}
