package dashboard

import (
	"sync"

	"github.com/ChiCivicLab/violations-dashboard/internal/geodata"
)

// Controller owns one session's filter state and drives recomputation. It is
// a two-state machine: idle (views reflect the last published snapshot) and
// recomputing. Criteria changes that arrive while a recomputation is running
// coalesce: only the latest criteria get recomputed, so views never lag more
// than one pass behind the newest user input and no backlog builds up.
type Controller struct {
	records []geodata.ViolationRecord // joined dataset, immutable
	subs    []Subscriber

	mu          sync.Mutex
	criteria    Criteria
	view        FilteredView
	recomputing bool
	dirty       bool
	idle        *sync.Cond
}

// NewController builds a controller over the immutable joined dataset and
// synchronously computes the initial snapshot so subscribers are never empty
// for a fresh session.
func NewController(records []geodata.ViolationRecord, initial Criteria, subs ...Subscriber) *Controller {
	c := &Controller{records: records, subs: subs}
	c.idle = sync.NewCond(&c.mu)
	c.SetCriteria(initial)
	return c
}

// Criteria returns the most recently requested criteria.
func (c *Controller) Criteria() Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

// View returns the last published snapshot.
func (c *Controller) View() FilteredView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// SetCriteria records the new criteria and recomputes. If another goroutine
// is mid-recomputation the call returns immediately; that goroutine's loop
// picks up the latest criteria before going idle.
func (c *Controller) SetCriteria(criteria Criteria) {
	c.mu.Lock()
	c.criteria = criteria
	if c.recomputing {
		c.dirty = true
		c.mu.Unlock()
		return
	}
	c.recomputing = true
	c.mu.Unlock()

	c.recompute()
}

func (c *Controller) recompute() {
	for {
		c.mu.Lock()
		criteria := c.criteria
		c.dirty = false
		c.mu.Unlock()

		view := Apply(c.records, criteria)

		// Adapters only read the snapshot, so they derive in parallel.
		var wg sync.WaitGroup
		for _, s := range c.subs {
			wg.Add(1)
			go func(s Subscriber) {
				defer wg.Done()
				s.Update(view, criteria)
			}(s)
		}
		wg.Wait()

		c.mu.Lock()
		c.view = view
		if !c.dirty {
			c.recomputing = false
			c.idle.Broadcast()
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

// Wait blocks until the controller is idle, i.e. all subscribers have
// consumed a snapshot for the latest criteria.
func (c *Controller) Wait() {
	c.mu.Lock()
	for c.recomputing {
		c.idle.Wait()
	}
	c.mu.Unlock()
}
