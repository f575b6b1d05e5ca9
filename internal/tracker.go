package internal

// Tracker keeps the stack of nodes being evaluated. With the guard on,
// entering a node already on the stack is refused.
type Tracker struct {
	guard bool

	stack    []*Object
	visiting map[*Object]bool
}

func NewTracker(guard bool) *Tracker {
	return &Tracker{
		guard:    guard,
		visiting: make(map[*Object]bool),
	}
}

func (t *Tracker) Enter(o *Object) bool {
	if t.guard && t.visiting[o] {
		return false
	}

	t.stack = append(t.stack, o)
	t.visiting[o] = true
	return true
}

func (t *Tracker) Leave(o *Object) {
	if n := len(t.stack); n > 0 && t.stack[n-1] == o {
		t.stack = t.stack[:n-1]
	}
	delete(t.visiting, o)
}

// Current returns the node being evaluated, if any.
func (t *Tracker) Current() *Object {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

func (t *Tracker) Depth() int { return len(t.stack) }
