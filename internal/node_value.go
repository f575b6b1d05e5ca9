package internal

import (
	"reflect"

	"github.com/AnatoleLucet/bind/internal/types"
)

// CastObjectValue passes its object through when it is an instance of the
// target class, nil otherwise.
type CastObjectValue struct {
	Object

	target *types.Type
	out    types.Cell
}

func NewCastObjectValue(target *types.Type) *CastObjectValue {
	n := &CastObjectValue{target: target}
	n.init(n, KindCastObjectValue, PolicyIfUpdatesNeeded)
	return n
}

func (n *CastObjectValue) Target() *types.Type { return n.target }

// SetTarget changes the target class, and with it the output type.
func (n *CastObjectValue) SetTarget(target *types.Type) {
	n.target = target
	n.out = types.Cell{}
	n.flags.set(flagDirty)
	n.SetupBindingItems()
}

func (n *CastObjectValue) itemSpecs() []ItemSpec {
	return []ItemSpec{{Name: SlotObject, Type: n.registry().Any()}}
}

func (n *CastObjectValue) OutputType() *types.Type { return n.target }

func (n *CastObjectValue) produce(ctx *Context) types.Cell {
	in, changed := n.Item(SlotObject).GetValue(ctx)
	if !changed && n.flags.has(flagProduced) && n.cached.Type == n.target {
		return n.cached
	}
	if n.target == nil {
		return types.Unknown()
	}
	if !n.out.Type.SameAs(n.target) {
		n.out = types.NewCell(n.target)
	}

	class := n.target.Class()
	obj, ok := types.ObjectValue(in.Value)
	if ok && class != nil && class.Matches(obj) {
		n.out.Value.Set(obj)
	} else {
		n.out.Value.SetZero()
	}
	return n.out
}

// ContainerLengthValue produces the number of elements of an array, set or
// map.
type ContainerLengthValue struct {
	Object

	out types.Cell
}

func NewContainerLengthValue() *ContainerLengthValue {
	n := &ContainerLengthValue{}
	n.init(n, KindContainerLengthValue, PolicyIfUpdatesNeeded)
	return n
}

func (n *ContainerLengthValue) itemSpecs() []ItemSpec {
	return []ItemSpec{{Name: SlotContainer}}
}

func (n *ContainerLengthValue) OutputType() *types.Type {
	return types.TypeFor[int32](n.registry())
}

func (n *ContainerLengthValue) produce(ctx *Context) types.Cell {
	in, changed := n.Item(SlotContainer).GetValue(ctx)
	if !changed && n.flags.has(flagProduced) {
		return n.cached
	}
	if !in.IsValid() || !in.Type.IsContainer() {
		return types.Empty(n.OutputType())
	}

	if !n.out.IsValid() {
		n.out = types.NewCell(n.OutputType())
	}
	n.out.Value.SetInt(int64(lengthOf(in.Value)))
	return n.out
}

func lengthOf(v reflect.Value) int {
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len()
	}
	return 0
}
