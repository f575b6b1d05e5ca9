package internal

import (
	"reflect"

	"github.com/AnatoleLucet/bind/internal/types"
)

// Item is a named input slot of a node, optionally wired to the output of a
// value node. The slot does not own its producer; the instance does.
type Item struct {
	name  string
	owner *Object

	producer ValueNode

	// type expected by the owner, nil when any type is accepted
	typ      *types.Type
	optional bool
	self     bool // unwired, it reads the source object

	def types.Cell

	// copy of the last value handed out, for change detection
	snapshot types.Cell
	stale    bool
}

// ItemSpec describes a slot a node expects to have.
type ItemSpec struct {
	Name     string
	Type     *types.Type
	Optional bool
	Self     bool
}

func newItem(owner *Object, spec ItemSpec) *Item {
	return &Item{
		name:     spec.Name,
		owner:    owner,
		typ:      spec.Type,
		optional: spec.Optional,
		self:     spec.Self,
		stale:    true,
	}
}

func (it *Item) Name() string        { return it.name }
func (it *Item) Owner() *Object      { return it.owner }
func (it *Item) Type() *types.Type   { return it.typ }
func (it *Item) IsOptional() bool    { return it.optional }
func (it *Item) IsSelf() bool        { return it.self }
func (it *Item) Producer() ValueNode { return it.producer }
func (it *Item) IsWired() bool       { return it.producer != nil }

// Default returns the value used while the slot is unwired.
func (it *Item) Default() types.Cell { return it.def }

// HasDefault reports whether a default value was configured.
func (it *Item) HasDefault() bool { return it.def.IsValid() }

// SetDefault configures the value used while the slot is unwired. v may be a
// types.Cell, a reflect.Value or any Go value.
func (it *Item) SetDefault(v any) {
	switch v := v.(type) {
	case types.Cell:
		it.def = v
	case reflect.Value:
		it.def = valueCell(it.registry(), v)
	default:
		it.def = valueCell(it.registry(), reflect.ValueOf(v))
	}
	it.touch()
}

// touch makes the next read report a change and the owner re-evaluate.
func (it *Item) touch() {
	it.stale = true
	if it.owner != nil {
		it.owner.MarkDirty()
	}
}

func (it *Item) registry() *types.Registry {
	if it.owner != nil {
		return it.owner.registry()
	}
	return types.Default()
}

func valueCell(reg *types.Registry, v reflect.Value) types.Cell {
	if !v.IsValid() {
		return types.Unknown()
	}
	c := types.NewCell(reg.TypeOf(v.Type()))
	c.Value.Set(v)
	return c
}

// OutputType is the type of the values the slot hands out.
func (it *Item) OutputType() *types.Type {
	if it.producer != nil {
		return it.producer.OutputType()
	}
	if it.def.Type != nil {
		return it.def.Type
	}
	return it.typ
}

// GetValue returns the slot's current value and whether it differs from the
// value returned by the previous call.
func (it *Item) GetValue(ctx *Context) (types.Cell, bool) {
	var c types.Cell
	switch {
	case it.producer != nil:
		c = it.producer.Base().GetValue(ctx)
	case it.self:
		c = ctx.Source()
	default:
		changed := it.stale
		it.stale = false
		if it.def.Type == nil && it.typ != nil {
			return types.NewCell(it.typ), changed
		}
		return it.def, changed
	}

	if !it.stale && it.snapshot.Equal(c) {
		return c, false
	}

	it.stale = false
	it.remember(c)
	return c, true
}

func (it *Item) remember(c types.Cell) {
	if !c.IsValid() {
		it.snapshot = types.Empty(c.Type)
		return
	}
	if !c.Type.SameAs(it.snapshot.Type) || !it.snapshot.IsValid() {
		it.snapshot = types.NewCell(c.Type)
	}
	c.Type.Copy(it.snapshot.Value, c.Value)
}

// NeedsUpdate reports whether the producer wired to the slot needs to
// re-evaluate this frame.
func (it *Item) NeedsUpdate(ctx *Context) bool {
	if it.producer == nil {
		return false
	}
	return it.producer.Base().CheckCachedNeedsUpdate(ctx)
}

// Connect wires producer into the slot. The previous producer, if any,
// becomes an orphan of the instance.
func (it *Item) Connect(producer ValueNode) {
	if it.producer == producer {
		return
	}
	it.Disconnect()

	it.producer = producer
	it.touch()
	if producer == nil {
		return
	}

	p := producer.Base()
	p.consumer = it
	if inst := it.owner.instance; inst != nil {
		inst.removeOrphan(producer)
		inst.adopt(producer)
		inst.invalidate()
	}
}

// Disconnect unwires the slot, keeping the producer as an orphan.
func (it *Item) Disconnect() ValueNode {
	old := it.producer
	if old == nil {
		return nil
	}

	it.producer = nil
	it.touch()
	if old.Base().consumer == it {
		old.Base().consumer = nil
	}
	if inst := it.owner.instance; inst != nil {
		inst.addOrphan(old)
		inst.invalidate()
	}
	return old
}
