package internal

import (
	"iter"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/AnatoleLucet/bind/internal/types"
)

var log = commonlog.GetLogger("bind")

// Node is implemented by every node kind.
type Node interface {
	Base() *Object

	// slots the node expects given its configuration
	itemSpecs() []ItemSpec
	// default CheckNeedsUpdate rule, overridable
	needsUpdate(ctx *Context) bool
	initialize(ctx *Context)
	terminate(ctx *Context)
}

// ValueNode is a node that produces values.
type ValueNode interface {
	Node

	// OutputType is recomputed from the configuration on every call.
	OutputType() *types.Type
	produce(ctx *Context) types.Cell
}

// DestinationNode is a node that consumes values.
type DestinationNode interface {
	Node

	consume(ctx *Context)
}

// Object is the state shared by every node kind: identity, policy, input
// slots and the cached value.
type Object struct {
	id     uuid.UUID
	kind   Kind
	policy Policy
	flags  flags

	items []*Item

	self     Node
	instance *Instance
	consumer *Item // slot this node is wired into

	cached        types.Cell
	producedFrame uint64
	evals         int
}

func (o *Object) init(self Node, kind Kind, policy Policy) {
	o.id = uuid.New()
	o.kind = kind
	o.policy = policy
	o.self = self
	o.SetupBindingItems()
}

func (o *Object) Base() *Object { return o }

func (o *Object) ID() uuid.UUID { return o.id }

// SetID pins the node identity, used when loading documents.
func (o *Object) SetID(id uuid.UUID) { o.id = id }

func (o *Object) Kind() Kind { return o.kind }

func (o *Object) Policy() Policy { return o.policy }

// SetPolicy changes the update policy. Some kinds force their own.
func (o *Object) SetPolicy(p Policy) {
	if f, ok := o.self.(interface{ fixPolicy(Policy) Policy }); ok {
		p = f.fixPolicy(p)
	}
	o.policy = p
	if o.instance != nil {
		o.instance.invalidate()
	}
}

func (o *Object) Instance() *Instance { return o.instance }

// Consumer returns the slot this node is wired into, if any.
func (o *Object) Consumer() *Item { return o.consumer }

func (o *Object) Items() []*Item { return o.items }

func (o *Object) Item(name string) *Item {
	for _, it := range o.items {
		if it.name == name {
			return it
		}
	}
	return nil
}

// Inputs iterates over the producers wired into the node.
func (o *Object) Inputs() iter.Seq[ValueNode] {
	return func(yield func(ValueNode) bool) {
		for _, it := range o.items {
			if it.producer == nil {
				continue
			}
			if !yield(it.producer) {
				return
			}
		}
	}
}

// Connect wires producer into the named slot.
func (o *Object) Connect(slot string, producer ValueNode) error {
	it := o.Item(slot)
	if it == nil {
		return errorf(ErrUnknownSlot, "%s has no slot %q", o.kind, slot)
	}
	it.Connect(producer)
	return nil
}

// Disconnect unwires the named slot and returns the previous producer.
func (o *Object) Disconnect(slot string) ValueNode {
	if it := o.Item(slot); it != nil {
		return it.Disconnect()
	}
	return nil
}

// SetDefault sets the value read by the named slot while unwired.
func (o *Object) SetDefault(slot string, v any) error {
	it := o.Item(slot)
	if it == nil {
		return errorf(ErrUnknownSlot, "%s has no slot %q", o.kind, slot)
	}
	it.SetDefault(v)
	return nil
}

// SetupBindingItems reshapes the slots to what the configuration expects.
// Unexpected slots are dropped and their producers become orphans; missing
// ones are created. Wiring survives for slots that keep their name.
func (o *Object) SetupBindingItems() {
	specs := o.self.itemSpecs()

	existing := make(map[string]*Item, len(o.items))
	for _, it := range o.items {
		existing[it.name] = it
	}

	items := make([]*Item, 0, len(specs))
	for _, spec := range specs {
		if it, ok := existing[spec.Name]; ok {
			it.typ = spec.Type
			it.optional = spec.Optional
			it.self = spec.Self
			items = append(items, it)
			delete(existing, spec.Name)
			continue
		}
		items = append(items, newItem(o, spec))
	}

	for _, it := range o.items {
		if _, pruned := existing[it.name]; pruned {
			it.Disconnect()
		}
	}

	o.items = items
	if o.instance != nil {
		o.instance.invalidate()
	}
}

func (o *Object) registry() *types.Registry {
	if o.instance != nil && o.instance.reg != nil {
		return o.instance.reg
	}
	return types.Default()
}

// sourceType is the declared type of the object "self" slots read.
func (o *Object) sourceType() *types.Type {
	if o.instance != nil {
		return o.instance.SourceType()
	}
	return nil
}

// needsUpdate is the default rule: Always nodes always update, Once nodes
// until they produced a value, the others when they never ran, were marked
// dirty or an input needs to update.
func (o *Object) needsUpdate(ctx *Context) bool {
	switch o.policy {
	case PolicyAlways:
		return true
	case PolicyOnce:
		return !o.flags.has(flagHasValue)
	}

	if !o.flags.has(flagProduced) || o.flags.has(flagDirty) {
		return true
	}
	for _, it := range o.items {
		if it.NeedsUpdate(ctx) {
			return true
		}
	}
	return false
}

// CheckNeedsUpdate evaluates the node's rule without memoisation.
func (o *Object) CheckNeedsUpdate(ctx *Context) bool {
	return o.self.needsUpdate(ctx)
}

// CheckCachedNeedsUpdate evaluates the rule at most once per frame.
func (o *Object) CheckCachedNeedsUpdate(ctx *Context) bool {
	if v, ok := ctx.needs[o]; ok {
		return v
	}

	if !ctx.enter(o) {
		return false
	}
	defer ctx.leave(o)

	v := o.self.needsUpdate(ctx)
	ctx.needs[o] = v
	return v
}

// GetValue returns the node's value, re-evaluating only when the policy
// asks for it. A node evaluates at most once per frame.
func (o *Object) GetValue(ctx *Context) types.Cell {
	vn, ok := o.self.(ValueNode)
	if !ok {
		return types.Unknown()
	}

	if o.flags.has(flagProduced) {
		if o.producedFrame == ctx.frame {
			return o.cached
		}
		if !o.CheckCachedNeedsUpdate(ctx) {
			return o.cached
		}
	}

	if !ctx.enter(o) {
		return types.Empty(vn.OutputType())
	}
	defer ctx.leave(o)

	v := vn.produce(ctx)
	o.evals++

	o.cached = v
	o.producedFrame = ctx.frame
	o.flags.set(flagProduced)
	o.flags.clear(flagDirty)
	if v.IsValid() && !isNilObject(v) {
		o.flags.set(flagHasValue)
	}

	return v
}

func isNilObject(c types.Cell) bool {
	if !c.Type.IsObject() {
		return false
	}
	_, ok := c.Object()
	return !ok
}

// Cached returns the last value produced, without evaluating.
func (o *Object) Cached() types.Cell { return o.cached }

// Evaluations counts how many times the node produced a value or updated
// its destination.
func (o *Object) Evaluations() int { return o.evals }

func (o *Object) IsInitialized() bool { return o.flags.has(flagInitialized) }

func (o *Object) IsTerminated() bool { return o.flags.has(flagTerminated) }

// Initialize initializes the wired inputs, then the node itself.
func (o *Object) Initialize(ctx *Context) {
	if o.flags.has(flagInitialized) {
		return
	}
	if !ctx.enter(o) {
		return
	}
	defer ctx.leave(o)

	for in := range o.Inputs() {
		in.Base().Initialize(ctx)
	}

	o.self.initialize(ctx)
	o.flags.clear(flagTerminated)
	o.flags.set(flagInitialized)
}

// UpdateDestination consumes the inputs when the node needs to update.
func (o *Object) UpdateDestination(ctx *Context) {
	dn, ok := o.self.(DestinationNode)
	if !ok {
		return
	}
	if o.flags.has(flagProduced) && !o.CheckCachedNeedsUpdate(ctx) {
		return
	}

	if !ctx.enter(o) {
		return
	}
	defer ctx.leave(o)

	dn.consume(ctx)
	o.evals++
	o.producedFrame = ctx.frame
	o.flags.set(flagProduced | flagHasValue)
	o.flags.clear(flagDirty)
}

// Terminate tears the node down, then its wired inputs.
func (o *Object) Terminate(ctx *Context) {
	if !o.flags.has(flagInitialized) {
		return
	}
	if !ctx.enter(o) {
		return
	}
	defer ctx.leave(o)

	o.self.terminate(ctx)
	o.flags.clear(flagInitialized)
	o.flags.set(flagTerminated)

	for in := range o.Inputs() {
		in.Base().Terminate(ctx)
	}
}

// MarkDirty forces the node to re-evaluate on the next update and asks the
// owning instance to tick.
func (o *Object) MarkDirty() {
	o.flags.set(flagDirty)
	if o.instance != nil {
		o.instance.MarkBindingDirty()
	}
}

func (o *Object) IsDirty() bool { return o.flags.has(flagDirty) }

// default hooks, overridden by the kinds that need them
func (o *Object) initialize(*Context) {}
func (o *Object) terminate(*Context)  {}
