package document

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/AnatoleLucet/bind/internal"
	"github.com/AnatoleLucet/bind/internal/convert"
	"github.com/AnatoleLucet/bind/internal/types"
)

var ErrUnknownType = errors.New("unknown type")

// PathConfig configures PropertyValue, FieldNotifyValue and
// DestinationProperty nodes.
type PathConfig struct {
	Path string `mapstructure:"path"`
}

// FunctionConfig configures FunctionValue, StaticFunctionValue and
// DestinationFunction nodes.
type FunctionConfig struct {
	Class    string `mapstructure:"class"`
	Function string `mapstructure:"function"`
}

type CastConfig struct {
	Target string `mapstructure:"target"`
}

type FormatConfig struct {
	Template string `mapstructure:"template"`
}

type SelectConfig struct {
	ValueType string         `mapstructure:"value_type"`
	Options   []OptionConfig `mapstructure:"options"`
}

type OptionConfig struct {
	Name  string `mapstructure:"name"`
	Value any    `mapstructure:"value"`
}

func decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// Build creates a new container holding one instance per binding. Problems
// are collected and returned together; the bindings that could be built are
// in the container regardless.
func (d *Document) Build(reg *types.Registry, opts ...internal.Option) (*internal.Container, error) {
	if reg == nil {
		reg = types.Default()
	}

	var result *multierror.Error

	opts = append([]internal.Option{internal.WithRegistry(reg)}, opts...)
	if d.Source != "" {
		if t := reg.Lookup(d.Source); t != nil {
			opts = append(opts, internal.WithSourceType(t))
		} else {
			result = multierror.Append(result, fmt.Errorf("%w: source %q", ErrUnknownType, d.Source))
		}
	}

	c := internal.NewContainer(opts...)
	b := builder{reg: reg, conv: c.Converters()}

	for i, binding := range d.Bindings {
		inst, err := b.instance(i, binding)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("binding %d: %w", i, err))
		}
		if inst != nil {
			c.Add(inst)
		}
	}

	return c, result.ErrorOrNil()
}

type builder struct {
	reg  *types.Registry
	conv *convert.Registry
}

func (b builder) instance(idx int, binding Binding) (*internal.Instance, error) {
	var result *multierror.Error

	nodes := make(map[string]internal.Node, len(binding.Nodes))
	for _, n := range binding.Nodes {
		if _, dup := nodes[n.ID]; dup {
			result = multierror.Append(result, fmt.Errorf("duplicate node id %q", n.ID))
			continue
		}

		node, err := b.node(n)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("node %q: %w", n.ID, err))
			continue
		}
		node.Base().SetID(nodeID(idx, n.ID))
		nodes[n.ID] = node
	}

	for _, n := range binding.Nodes {
		node, ok := nodes[n.ID]
		if !ok {
			continue
		}

		for _, slot := range slices.Sorted(maps.Keys(n.Defaults)) {
			if err := node.Base().SetDefault(slot, n.Defaults[slot]); err != nil {
				result = multierror.Append(result, fmt.Errorf("node %q: %w", n.ID, err))
			}
		}

		for _, slot := range slices.Sorted(maps.Keys(n.Inputs)) {
			from := n.Inputs[slot]
			producer, ok := nodes[from].(internal.ValueNode)
			if !ok {
				result = multierror.Append(result, fmt.Errorf("node %q: %w: slot %q wired to %q, not a value node", n.ID, internal.ErrMissingInput, slot, from))
				continue
			}
			if err := node.Base().Connect(slot, producer); err != nil {
				result = multierror.Append(result, fmt.Errorf("node %q: %w", n.ID, err))
			}
		}
	}

	dest, ok := nodes[binding.Destination].(internal.DestinationNode)
	if !ok {
		result = multierror.Append(result, fmt.Errorf("%w: destination %q is not a destination node", internal.ErrMissingInput, binding.Destination))
		return nil, result.ErrorOrNil()
	}

	inst := internal.NewInstance(dest)

	reached := make(map[internal.Node]bool)
	for n := range inst.Nodes() {
		reached[n] = true
	}
	for id, n := range nodes {
		if !reached[n] {
			log.Warningf("node %q is not connected to destination %q", id, binding.Destination)
		}
	}

	return inst, result.ErrorOrNil()
}

// nodeID keeps ids that already are UUIDs and derives a stable one from the
// others.
func nodeID(binding int, id string) uuid.UUID {
	if u, err := uuid.Parse(id); err == nil {
		return u
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%d/%s", binding, id))
}

func (b builder) lookup(name string) (*types.Type, error) {
	if t := b.reg.Lookup(name); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownType, name)
}

func (b builder) node(n Node) (internal.Node, error) {
	kind, err := internal.ParseKind(n.Kind)
	if err != nil {
		return nil, err
	}

	node, err := b.create(kind, n.Config)
	if err != nil {
		return nil, err
	}

	if n.Policy != "" {
		p, err := internal.ParsePolicy(n.Policy)
		if err != nil {
			return nil, err
		}
		node.Base().SetPolicy(p)
	}

	return node, nil
}

func (b builder) create(kind internal.Kind, config map[string]any) (internal.Node, error) {
	switch kind {
	case internal.KindPropertyValue, internal.KindFieldNotifyValue, internal.KindDestinationProperty:
		var cfg PathConfig
		if err := decode(config, &cfg); err != nil {
			return nil, err
		}
		switch kind {
		case internal.KindPropertyValue:
			return internal.NewPropertyValue(cfg.Path), nil
		case internal.KindFieldNotifyValue:
			return internal.NewFieldNotifyValue(cfg.Path), nil
		}
		return internal.NewDestinationProperty(cfg.Path), nil

	case internal.KindFunctionValue, internal.KindStaticFunctionValue, internal.KindDestinationFunction:
		var cfg FunctionConfig
		if err := decode(config, &cfg); err != nil {
			return nil, err
		}
		class, err := b.lookup(cfg.Class)
		if err != nil {
			return nil, err
		}
		switch kind {
		case internal.KindFunctionValue:
			return internal.NewFunctionValue(class, cfg.Function), nil
		case internal.KindStaticFunctionValue:
			return internal.NewStaticFunctionValue(class, cfg.Function), nil
		}
		return internal.NewDestinationFunction(class, cfg.Function), nil

	case internal.KindCastObjectValue:
		var cfg CastConfig
		if err := decode(config, &cfg); err != nil {
			return nil, err
		}
		target, err := b.lookup(cfg.Target)
		if err != nil {
			return nil, err
		}
		return internal.NewCastObjectValue(target), nil

	case internal.KindContainerLengthValue:
		if err := decode(config, &struct{}{}); err != nil {
			return nil, err
		}
		return internal.NewContainerLengthValue(), nil

	case internal.KindFormatTextValue:
		var cfg FormatConfig
		if err := decode(config, &cfg); err != nil {
			return nil, err
		}
		return internal.NewFormatTextValue(cfg.Template), nil

	case internal.KindSelectValue:
		var cfg SelectConfig
		if err := decode(config, &cfg); err != nil {
			return nil, err
		}
		vt, err := b.lookup(cfg.ValueType)
		if err != nil {
			return nil, err
		}

		sel := internal.NewSelectValue(vt)
		for _, o := range cfg.Options {
			v, err := b.value(vt, o.Value)
			if err != nil {
				return nil, err
			}
			sel.AddOption(v, o.Name)
		}
		return sel, nil
	}

	return nil, fmt.Errorf("%w: %s", internal.ErrUnknownNodeKind, kind)
}

// value converts a document value into t.
func (b builder) value(t *types.Type, v any) (types.Cell, error) {
	src := reflect.ValueOf(v)
	if !src.IsValid() {
		return types.NewCell(t), nil
	}

	cell := types.NewCell(t)
	if !b.conv.ConvertValue(t, cell.Value, b.reg.TypeOf(src.Type()), src) {
		return types.Cell{}, fmt.Errorf("%w: %v is not a %s", internal.ErrTypeMismatch, v, t)
	}
	return cell, nil
}
