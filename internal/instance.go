package internal

import (
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/AnatoleLucet/bind/internal/convert"
	"github.com/AnatoleLucet/bind/internal/types"
)

// Instance owns one destination node, its transitive inputs and the
// producers that were disconnected from it.
type Instance struct {
	id uuid.UUID

	container  *Container
	reg        *types.Registry
	sourceType *types.Type

	destination DestinationNode
	orphans     []ValueNode

	// persisted result of the performance walk
	performant      bool
	performantKnown bool

	// panic handlers
	catchers []func(any)
}

func NewInstance(destination DestinationNode) *Instance {
	i := &Instance{id: uuid.New()}
	i.SetDestination(destination)
	return i
}

func (i *Instance) ID() uuid.UUID { return i.id }

func (i *Instance) Container() *Container { return i.container }

func (i *Instance) Destination() DestinationNode { return i.destination }

// SetDestination replaces the destination. The previous one is dropped with
// its graph.
func (i *Instance) SetDestination(d DestinationNode) {
	i.destination = d
	if d != nil {
		i.adopt(d)
	}
	i.invalidate()
}

// SourceType is the declared type of the source object.
func (i *Instance) SourceType() *types.Type {
	if i.sourceType != nil {
		return i.sourceType
	}
	if i.container != nil {
		return i.container.sourceType
	}
	return nil
}

func (i *Instance) SetSourceType(t *types.Type) {
	i.sourceType = t
	i.refresh()
}

func (i *Instance) attach(c *Container) {
	i.container = c
	i.reg = c.reg
	i.refresh()
}

// refresh recomputes every node's slots, picking up type changes.
func (i *Instance) refresh() {
	for n := range i.Nodes() {
		n.Base().SetupBindingItems()
	}
	for _, o := range i.orphans {
		o.Base().SetupBindingItems()
	}
	i.invalidate()
}

// adopt makes n and its inputs owned by the instance.
func (i *Instance) adopt(n Node) {
	o := n.Base()
	if o.instance == i {
		return
	}
	o.instance = i
	for in := range o.Inputs() {
		i.adopt(in)
	}
	o.SetupBindingItems()
}

// Nodes iterates over the destination and every node reachable from it,
// each once.
func (i *Instance) Nodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if i.destination == nil {
			return
		}

		seen := make(map[*Object]bool)
		var walk func(n Node) bool
		walk = func(n Node) bool {
			o := n.Base()
			if seen[o] {
				return true
			}
			seen[o] = true
			if !yield(n) {
				return false
			}
			for in := range o.Inputs() {
				if !walk(in) {
					return false
				}
			}
			return true
		}
		walk(i.destination)
	}
}

// Orphans lists the producers disconnected from the graph, kept until
// deleted.
func (i *Instance) Orphans() []ValueNode { return i.orphans }

func (i *Instance) addOrphan(n ValueNode) {
	for _, o := range i.orphans {
		if o == n {
			return
		}
	}
	i.orphans = append(i.orphans, n)
}

func (i *Instance) removeOrphan(n ValueNode) bool {
	for idx, o := range i.orphans {
		if o == n {
			i.orphans = append(i.orphans[:idx], i.orphans[idx+1:]...)
			return true
		}
	}
	return false
}

// DeleteOrphan drops an orphan and the nodes feeding it for good.
func (i *Instance) DeleteOrphan(n ValueNode) bool {
	if !i.removeOrphan(n) {
		return false
	}

	live := make(map[*Object]bool)
	for m := range i.Nodes() {
		live[m.Base()] = true
	}

	var release func(m Node)
	release = func(m Node) {
		o := m.Base()
		if o.instance != i || live[o] {
			return
		}
		o.instance = nil
		for in := range o.Inputs() {
			release(in)
		}
	}
	release(n)
	return true
}

func (i *Instance) invalidate() {
	i.performantKnown = false
}

// IsPerformant reports whether no node of the graph uses the Always policy.
// Inputs of Once nodes are not visited. The result is kept until the graph
// changes.
func (i *Instance) IsPerformant() bool {
	if i.performantKnown {
		return i.performant
	}

	seen := make(map[*Object]bool)
	var walk func(n Node) bool
	walk = func(n Node) bool {
		o := n.Base()
		if seen[o] {
			return true
		}
		seen[o] = true

		switch o.policy {
		case PolicyAlways:
			return false
		case PolicyOnce:
			return true
		}
		for in := range o.Inputs() {
			if !walk(in) {
				return false
			}
		}
		return true
	}

	i.performant = i.destination == nil || walk(i.destination)
	i.performantKnown = true
	return i.performant
}

// ShouldBindingTick reports whether the next update can change anything.
func (i *Instance) ShouldBindingTick(ctx *Context) bool {
	if i.destination == nil {
		return false
	}
	if !i.IsPerformant() {
		return true
	}
	return i.destination.Base().CheckCachedNeedsUpdate(ctx)
}

// MarkBindingDirty asks the owning container to tick this instance again.
func (i *Instance) MarkBindingDirty() {
	if i.container != nil {
		i.container.markDirty(i)
	}
}

// sourceChanged makes every node reading the source object re-evaluate.
func (i *Instance) sourceChanged() {
	for n := range i.Nodes() {
		for _, it := range n.Base().items {
			if it.self && it.producer == nil {
				it.touch()
			}
		}
	}
}

// OnError registers a handler for panics raised while evaluating. Without
// handlers panics are logged and swallowed.
func (i *Instance) OnError(fn func(any)) {
	i.catchers = append(i.catchers, fn)
}

func (i *Instance) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if len(i.catchers) == 0 {
				log.Errorf("binding %s: %v", i.id, r)
				return
			}

			for _, catcher := range i.catchers {
				catcher(r)
			}
		}
	}()

	fn()
}

func (i *Instance) Initialize(ctx *Context) {
	if i.destination == nil {
		return
	}
	i.run(func() { i.destination.Base().Initialize(ctx) })
}

func (i *Instance) Update(ctx *Context) {
	if i.destination == nil {
		return
	}
	i.run(func() { i.destination.Base().UpdateDestination(ctx) })
}

func (i *Instance) Terminate(ctx *Context) {
	if i.destination == nil {
		return
	}
	i.run(func() { i.destination.Base().Terminate(ctx) })
}

// FixupRenamedProperty renames the first path element of every node whose
// path starts with old. It returns how many nodes changed.
func (i *Instance) FixupRenamedProperty(old, to string) int {
	n := 0
	for node := range i.Nodes() {
		if r, ok := node.(interface{ renameFirst(old, to string) bool }); ok && r.renameFirst(old, to) {
			n++
		}
	}
	if n > 0 {
		i.refresh()
	}
	return n
}

// Validate checks the wiring of the graph: producers whose output cannot
// reach the slot type, required slots left unwired, and paths or functions
// that do not resolve against the declared types.
func (i *Instance) Validate(conv *convert.Registry) error {
	var result *multierror.Error

	if i.destination == nil {
		return multierror.Append(result, errorf(ErrMissingInput, "instance %s has no destination", i.id))
	}

	for n := range i.Nodes() {
		o := n.Base()
		prefix := fmt.Sprintf("%s %s", o.kind, o.id)

		for _, it := range o.items {
			if it.producer == nil {
				if !it.optional && !it.self && !it.HasDefault() {
					result = multierror.Append(result, errorf(ErrMissingInput, "%s: slot %q is not wired", prefix, it.name))
				}
				continue
			}

			out := it.producer.OutputType()
			if it.typ == nil || out == nil {
				continue
			}
			if !it.typ.CompatibleWith(out) && !conv.CanConvert(it.typ, out) {
				result = multierror.Append(result, errorf(ErrTypeMismatch, "%s: slot %q expects %s, wired to %s", prefix, it.name, it.typ, out))
			}
		}

		if v, ok := n.(interface{ validate() error }); ok {
			if err := v.validate(); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", prefix, err))
			}
		}
	}

	return result.ErrorOrNil()
}
