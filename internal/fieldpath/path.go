package fieldpath

import "strings"

type StepKind uint8

const (
	StepProperty StepKind = iota
	StepFunction
)

// Step is one element of a field path: a property read or a call to a
// function without parameters.
type Step struct {
	Kind StepKind
	Name string
}

type Path []Step

// Parse reads a dotted path. Elements ending in "()" are function calls.
//
//	Parse("Player.Stats.GetLevel()")
func Parse(s string) Path {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ".")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if name, ok := strings.CutSuffix(part, "()"); ok {
			path = append(path, Step{Kind: StepFunction, Name: name})
			continue
		}
		path = append(path, Step{Kind: StepProperty, Name: part})
	}
	return path
}

func (p Path) String() string {
	var b strings.Builder
	for i, step := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(step.Name)
		if step.Kind == StepFunction {
			b.WriteString("()")
		}
	}
	return b.String()
}

// Clone returns a copy that can be edited independently.
func (p Path) Clone() Path {
	return append(Path(nil), p...)
}
