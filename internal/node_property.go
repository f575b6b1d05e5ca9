package internal

import (
	"reflect"

	"github.com/AnatoleLucet/bind/internal/types"
)

// PropertyValue reads a field path from its root. It always re-evaluates,
// reading a property is the only way to notice it changed.
type PropertyValue struct {
	Object
	pathTarget
}

func NewPropertyValue(path string) *PropertyValue {
	n := &PropertyValue{}
	n.pathTarget = pathTarget{o: &n.Object, slot: SlotPathRoot}
	n.setPath(path)
	n.init(n, KindPropertyValue, PolicyAlways)
	return n
}

func (n *PropertyValue) fixPolicy(Policy) Policy { return PolicyAlways }

// SetPath changes the path and reshapes the slots.
func (n *PropertyValue) SetPath(path string) {
	n.setPath(path)
	n.flags.set(flagDirty)
	n.SetupBindingItems()
}

func (n *PropertyValue) itemSpecs() []ItemSpec {
	return []ItemSpec{{Name: SlotPathRoot, Optional: true, Self: true}}
}

func (n *PropertyValue) OutputType() *types.Type { return n.leafType() }

func (n *PropertyValue) initialize(*Context) { n.get() }

func (n *PropertyValue) terminate(*Context) { n.destroy() }

func (n *PropertyValue) produce(ctx *Context) types.Cell {
	root, _ := n.root(ctx)
	if !root.IsValid() {
		return types.Empty(n.leafType())
	}
	return n.get().Resolve(root.Value)
}

// FieldNotifyValue reads a field path and re-evaluates only when a change
// of it is broadcast. It listens to the root object for the first field of
// the path and, when the leaf is owned by another notifying object, to that
// object for the last field.
type FieldNotifyValue struct {
	PropertyValue

	rootWatch watch
	leafWatch watch
}

func NewFieldNotifyValue(path string) *FieldNotifyValue {
	n := &FieldNotifyValue{}
	n.pathTarget = pathTarget{o: &n.Object, slot: SlotPathRoot}
	n.setPath(path)
	n.init(n, KindFieldNotifyValue, PolicyEventBased)
	return n
}

func (n *FieldNotifyValue) fixPolicy(Policy) Policy { return PolicyEventBased }

func (n *FieldNotifyValue) initialize(ctx *Context) {
	n.get()
	n.produceAndWatch(ctx)
}

func (n *FieldNotifyValue) terminate(ctx *Context) {
	n.unsubscribe()
	n.destroy()
}

func (n *FieldNotifyValue) produce(ctx *Context) types.Cell {
	return n.produceAndWatch(ctx)
}

// produceAndWatch resolves the path and moves the subscriptions to the
// objects currently on it.
func (n *FieldNotifyValue) produceAndWatch(ctx *Context) types.Cell {
	root, _ := n.root(ctx)
	if !root.IsValid() || len(n.path) == 0 {
		n.unsubscribe()
		return types.Empty(n.leafType())
	}

	cell, container := n.get().ResolveContainer(root.Value)

	obj, ok := types.ObjectValue(root.Value)
	if ok {
		n.rootWatch.follow(obj, n.path[0].Name, n.changed)
	} else {
		n.rootWatch.stop()
	}

	leaf, ok := types.ObjectValue(container)
	if ok && len(n.path) > 1 && (!obj.IsValid() || leaf.Pointer() != obj.Pointer()) {
		n.leafWatch.follow(leaf, n.path[len(n.path)-1].Name, n.changed)
	} else {
		n.leafWatch.stop()
	}

	return cell
}

func (n *FieldNotifyValue) changed(string) { n.MarkDirty() }

func (n *FieldNotifyValue) unsubscribe() {
	n.rootWatch.stop()
	n.leafWatch.stop()
}

// Watching reports whether a change subscription is active.
func (n *FieldNotifyValue) Watching() bool {
	return n.rootWatch.active() || n.leafWatch.active()
}

// watch is one field change subscription, kept while the watched object
// stays the same.
type watch struct {
	notifier types.FieldNotifier
	identity reflect.Value
	field    string
	handle   types.DelegateHandle
}

func (w *watch) active() bool { return w.notifier != nil }

func (w *watch) follow(obj reflect.Value, field string, fn types.FieldChangedFunc) {
	if w.notifier != nil && w.field == field && w.identity.Pointer() == obj.Pointer() {
		return
	}
	w.stop()

	notifier, ok := obj.Interface().(types.FieldNotifier)
	if !ok {
		log.Debugf("%s does not notify field changes", obj.Type())
		return
	}

	w.notifier = notifier
	w.identity = obj
	w.field = field
	w.handle = notifier.AddFieldValueChangedDelegate(field, fn)
}

func (w *watch) stop() {
	if w.notifier == nil {
		return
	}
	w.notifier.RemoveFieldValueChangedDelegate(w.field, w.handle)
	*w = watch{}
}
