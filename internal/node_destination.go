package internal

import (
	"github.com/AnatoleLucet/bind/internal/types"
)

// DestinationProperty writes the value of its "Value Source" slot into a
// field path rooted at its "Path Root" slot.
type DestinationProperty struct {
	Object
	pathTarget
}

func NewDestinationProperty(path string) *DestinationProperty {
	n := &DestinationProperty{}
	n.pathTarget = pathTarget{o: &n.Object, slot: SlotPathRoot}
	n.setPath(path)
	n.init(n, KindDestinationProperty, PolicyIfUpdatesNeeded)
	return n
}

// SetPath changes the path. The "Value Source" slot takes the new leaf type.
func (n *DestinationProperty) SetPath(path string) {
	n.setPath(path)
	n.flags.set(flagDirty)
	n.SetupBindingItems()
}

func (n *DestinationProperty) itemSpecs() []ItemSpec {
	return []ItemSpec{
		{Name: SlotPathRoot, Optional: true, Self: true},
		{Name: SlotValueSource, Type: n.leafType()},
	}
}

func (n *DestinationProperty) initialize(*Context) { n.get() }

func (n *DestinationProperty) terminate(*Context) { n.destroy() }

func (n *DestinationProperty) consume(ctx *Context) {
	// the value is read first so its producers keep evaluating even when
	// the destination cannot be resolved
	v, _ := n.Item(SlotValueSource).GetValue(ctx)

	root, _ := n.root(ctx)
	if !root.IsValid() {
		log.Debugf("no root to write %s to", n.path)
		return
	}

	owner, prop, ok := n.get().ResolveOwner(root.Value)
	if !ok {
		log.Debugf("cannot resolve %s on %s", n.path, root.Type)
		return
	}
	if !v.IsValid() {
		// no value writes the zero value of the property
		v = types.NewCell(prop.Type())
	}

	if !ctx.conv.SetProperty(owner, prop, v) {
		log.Debugf("cannot write %s into %s", v.Type, n.path)
	}
}
