package internal

import (
	"github.com/AnatoleLucet/bind/internal/fieldpath"
	"github.com/AnatoleLucet/bind/internal/types"
)

const (
	SlotPathRoot      = "Path Root"
	SlotValueSource   = "Value Source"
	SlotTarget        = "Target"
	SlotFunctionOwner = "Function Owner"
	SlotObject        = "Object"
	SlotContainer     = "Container"
	SlotValue         = "Value"
	SlotDefault       = "Default"
)

// pathTarget is a field path rooted at a slot of its node, the source
// object while that slot is unwired.
type pathTarget struct {
	o    *Object
	slot string

	path     fieldpath.Path
	resolver *fieldpath.Resolver
}

func (p *pathTarget) Path() fieldpath.Path { return p.path }

func (p *pathTarget) setPath(path string) {
	p.path = fieldpath.Parse(path)
	p.destroy()
	p.resolver = nil
}

func (p *pathTarget) rootType() *types.Type {
	if it := p.o.Item(p.slot); it != nil && it.producer != nil {
		return it.producer.OutputType()
	}
	return p.o.sourceType()
}

// get returns the resolver, rebuilt when the root type or the registry
// changed.
func (p *pathTarget) get() *fieldpath.Resolver {
	root := p.rootType()
	reg := p.o.registry()
	switch {
	case p.resolver == nil || p.resolver.Registry() != reg:
		p.destroy()
		p.resolver = fieldpath.NewResolver(reg, root, p.path)
	case p.resolver.Root() != root:
		p.resolver.SetRoot(root)
	}
	return p.resolver
}

func (p *pathTarget) leafType() *types.Type {
	return p.get().LeafType()
}

// root reads the root slot.
func (p *pathTarget) root(ctx *Context) (types.Cell, bool) {
	it := p.o.Item(p.slot)
	if it == nil {
		return types.Unknown(), false
	}
	return it.GetValue(ctx)
}

func (p *pathTarget) destroy() {
	if p.resolver != nil {
		p.resolver.Destroy()
	}
}

func (p *pathTarget) validate() error {
	if p.rootType() == nil {
		return nil
	}
	if err := p.get().Rebuild(); err != nil {
		return errorf(ErrUnresolvedPath, "%v", err)
	}
	return nil
}

func (p *pathTarget) renameFirst(old, to string) bool {
	if len(p.path) == 0 || p.path[0].Name != old {
		return false
	}
	p.path[0].Name = to
	if p.resolver != nil {
		p.resolver.RenameFirst(old, to)
	}
	return true
}
