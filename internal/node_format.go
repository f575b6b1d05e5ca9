package internal

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AnatoleLucet/bind/internal/types"
)

type segment struct {
	text  string
	isArg bool
}

// parseTemplate splits a template into literal text and {name} arguments.
// A backtick makes the next character literal.
func parseTemplate(template string) ([]segment, []string) {
	var segments []segment
	var names []string
	seen := make(map[string]bool)

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			segments = append(segments, segment{text: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(template)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '`':
			if i+1 < len(runes) {
				i++
				lit.WriteRune(runes[i])
			}
		case '{':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '}' {
					end = j
					break
				}
			}
			if end < 0 {
				lit.WriteRune(r)
				continue
			}

			name := strings.TrimSpace(string(runes[i+1 : end]))
			flush()
			segments = append(segments, segment{text: name, isArg: true})
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			i = end
		default:
			lit.WriteRune(r)
		}
	}
	flush()

	return segments, names
}

// FormatTextValue renders a template, substituting each {name} with the
// display text of the slot of the same name.
type FormatTextValue struct {
	Object

	template string
	segments []segment
	names    []string

	args map[string]string
	out  types.Cell
}

func NewFormatTextValue(template string) *FormatTextValue {
	n := &FormatTextValue{args: make(map[string]string)}
	n.setTemplate(template)
	n.init(n, KindFormatTextValue, PolicyIfUpdatesNeeded)
	return n
}

func (n *FormatTextValue) setTemplate(template string) {
	n.template = template
	n.segments, n.names = parseTemplate(template)
	clear(n.args)
}

func (n *FormatTextValue) Template() string { return n.template }

// SetTemplate changes the template and reshapes the argument slots.
func (n *FormatTextValue) SetTemplate(template string) {
	n.setTemplate(template)
	n.flags.set(flagDirty)
	n.SetupBindingItems()
}

// Arguments lists the argument names in order of first appearance.
func (n *FormatTextValue) Arguments() []string { return n.names }

func (n *FormatTextValue) itemSpecs() []ItemSpec {
	specs := make([]ItemSpec, 0, len(n.names))
	for _, name := range n.names {
		specs = append(specs, ItemSpec{Name: name})
	}
	return specs
}

func (n *FormatTextValue) OutputType() *types.Type {
	return types.TypeFor[types.Text](n.registry())
}

func (n *FormatTextValue) produce(ctx *Context) types.Cell {
	dirty := !n.flags.has(flagProduced) || n.flags.has(flagDirty) || !n.out.IsValid()

	for _, name := range n.names {
		it := n.Item(name)
		if it == nil {
			continue
		}

		cell, changed := it.GetValue(ctx)
		if !changed && n.policy != PolicyAlways && !dirty {
			continue
		}

		text := display(ctx, cell)
		if prev, ok := n.args[name]; !ok || prev != text {
			n.args[name] = text
			dirty = true
		}
	}

	if !dirty {
		return n.out
	}

	if !n.out.IsValid() {
		n.out = types.NewCell(n.OutputType())
	}
	n.out.Value.SetString(n.render())
	return n.out
}

func (n *FormatTextValue) render() string {
	var b strings.Builder
	for _, s := range n.segments {
		if s.isArg {
			b.WriteString(n.args[s.text])
			continue
		}
		b.WriteString(s.text)
	}
	return b.String()
}

var fallbackPrinter = message.NewPrinter(language.English)

// display converts a value to the text shown to users. Numbers follow the
// context's language.
func display(ctx *Context, c types.Cell) string {
	if !c.IsValid() {
		return ""
	}

	p := ctx.printer
	if p == nil {
		p = fallbackPrinter
	}

	v := c.Value
	switch c.Type.Kind() {
	case types.KindString, types.KindText:
		return v.String()
	case types.KindBool:
		return strconv.FormatBool(v.Bool())
	case types.KindEnum:
		if i, ok := types.IntValue(v); ok {
			if entry, ok := c.Type.Enum().ByValue(i); ok {
				return entry.Label()
			}
			return p.Sprintf("%d", i)
		}
	case types.KindInt:
		return p.Sprintf("%d", v.Int())
	case types.KindUint:
		return p.Sprintf("%d", v.Uint())
	case types.KindFloat:
		return p.Sprintf("%v", v.Float())
	case types.KindObject, types.KindInterface:
		obj, ok := c.Object()
		if !ok {
			return ""
		}
		if s, ok := obj.Interface().(fmt.Stringer); ok {
			return s.String()
		}
		return obj.Type().Elem().Name()
	}

	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v.Interface())
}
