package internal

import (
	"fmt"
	"reflect"

	"github.com/AnatoleLucet/bind/internal/types"
)

const (
	SlotTrue  = "True"
	SlotFalse = "False"
)

// SelectOption maps a value of the "Value" slot to the branch slot Name.
type SelectOption struct {
	Name  string
	Value types.Cell
}

// SelectValue picks one of its branch slots from the "Value" slot. Booleans
// select "True" or "False", enums the slot named after the entry label, and
// any other type the first option whose value equals the input. Without a
// match it falls back to the "Default" slot.
type SelectValue struct {
	Object

	valueType *types.Type
	options   []SelectOption

	out types.Cell
}

func NewSelectValue(valueType *types.Type) *SelectValue {
	n := &SelectValue{valueType: valueType}
	n.init(n, KindSelectValue, PolicyIfUpdatesNeeded)
	return n
}

func (n *SelectValue) ValueType() *types.Type { return n.valueType }

// SetValueType changes the type of the "Value" slot, which decides the
// branches.
func (n *SelectValue) SetValueType(t *types.Type) {
	n.valueType = t
	n.flags.set(flagDirty)
	n.SetupBindingItems()
}

func (n *SelectValue) Options() []SelectOption { return n.options }

// AddOption appends a branch selected when the input equals v. The branch
// slot is named after v unless a name is given.
func (n *SelectValue) AddOption(v any, name ...string) *Item {
	var cell types.Cell
	switch v := v.(type) {
	case types.Cell:
		cell = v
	default:
		cell = valueCell(n.registry(), reflect.ValueOf(v))
	}

	label := fmt.Sprint(cell.Interface())
	if len(name) > 0 && name[0] != "" {
		label = name[0]
	}

	n.options = append(n.options, SelectOption{Name: label, Value: cell})
	n.flags.set(flagDirty)
	n.SetupBindingItems()
	return n.Item(label)
}

// RemoveOption drops the branch named name.
func (n *SelectValue) RemoveOption(name string) bool {
	for i, o := range n.options {
		if o.Name == name {
			n.options = append(n.options[:i], n.options[i+1:]...)
			n.flags.set(flagDirty)
			n.SetupBindingItems()
			return true
		}
	}
	return false
}

// Branches lists the branch slot names in order.
func (n *SelectValue) Branches() []string {
	switch {
	case n.valueType == nil:
		return nil
	case n.valueType.Kind() == types.KindBool:
		return []string{SlotTrue, SlotFalse}
	case n.valueType.Kind() == types.KindEnum:
		var out []string
		for _, e := range n.valueType.Enum().Visible() {
			out = append(out, e.Label())
		}
		return out
	}

	out := make([]string, 0, len(n.options))
	for _, o := range n.options {
		out = append(out, o.Name)
	}
	return out
}

func (n *SelectValue) itemSpecs() []ItemSpec {
	specs := []ItemSpec{{Name: SlotValue, Type: n.valueType}}
	for _, b := range n.Branches() {
		specs = append(specs, ItemSpec{Name: b, Optional: true})
	}
	return append(specs, ItemSpec{Name: SlotDefault, Optional: true})
}

// OutputType is the type of the slot the node is wired into, else the type
// of the "Default" slot, else the type of the first branch.
func (n *SelectValue) OutputType() *types.Type {
	if n.consumer != nil && n.consumer.typ != nil {
		return n.consumer.typ
	}
	if it := n.Item(SlotDefault); it != nil {
		if t := it.OutputType(); t != nil {
			return t
		}
	}
	for _, b := range n.Branches() {
		if it := n.Item(b); it != nil {
			if t := it.OutputType(); t != nil {
				return t
			}
		}
	}
	return nil
}

// branch returns the slot selected by the input value.
func (n *SelectValue) branch(ctx *Context, in types.Cell) *Item {
	if !in.IsValid() {
		return nil
	}

	switch {
	case n.valueType != nil && n.valueType.Kind() == types.KindBool && in.Type.Kind() == types.KindBool:
		if in.Value.Bool() {
			return n.Item(SlotTrue)
		}
		return n.Item(SlotFalse)

	case n.valueType != nil && n.valueType.Kind() == types.KindEnum:
		i, ok := types.IntValue(in.Value)
		if !ok {
			return nil
		}
		entry, ok := n.valueType.Enum().ByValue(i)
		if !ok || entry.Hidden {
			return nil
		}
		return n.Item(entry.Label())
	}

	for _, o := range n.options {
		if ctx.conv.Equal(o.Value, in) {
			return n.Item(o.Name)
		}
	}
	return nil
}

func (n *SelectValue) produce(ctx *Context) types.Cell {
	in, _ := n.Item(SlotValue).GetValue(ctx)

	it := n.branch(ctx, in)
	if it == nil || (!it.IsWired() && !it.HasDefault()) {
		it = n.Item(SlotDefault)
	}
	if it == nil || (!it.IsWired() && !it.HasDefault()) {
		return types.Empty(n.OutputType())
	}

	v, _ := it.GetValue(ctx)
	out := n.OutputType()
	if !v.IsValid() || out == nil {
		return types.Empty(out)
	}
	if v.Type.SameAs(out) {
		return v
	}

	if !n.out.Type.SameAs(out) {
		n.out = types.NewCell(out)
	}
	if !ctx.conv.ConvertValue(out, n.out.Value, v.Type, v.Value) {
		return types.Empty(out)
	}
	return n.out
}
