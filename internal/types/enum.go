package types

import "reflect"

type EnumEntry struct {
	Name    string
	Display string
	Value   int64
	Hidden  bool // spacer or editor-only entries
}

// Label is the display name, falling back to the entry name.
func (e EnumEntry) Label() string {
	if e.Display != "" {
		return e.Display
	}
	return e.Name
}

type Enum struct {
	rt      reflect.Type
	entries []EnumEntry
}

func (e *Enum) Entries() []EnumEntry { return e.entries }

// Visible lists the entries that are not hidden, in declaration order.
func (e *Enum) Visible() []EnumEntry {
	out := make([]EnumEntry, 0, len(e.entries))
	for _, entry := range e.entries {
		if !entry.Hidden {
			out = append(out, entry)
		}
	}
	return out
}

func (e *Enum) ByValue(v int64) (EnumEntry, bool) {
	for _, entry := range e.entries {
		if entry.Value == v {
			return entry, true
		}
	}
	return EnumEntry{}, false
}

func (e *Enum) ByName(name string) (EnumEntry, bool) {
	for _, entry := range e.entries {
		if entry.Name == name || entry.Display == name {
			return entry, true
		}
	}
	return EnumEntry{}, false
}

// IntValue reads an enum or integer value as int64.
func IntValue(v reflect.Value) (int64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(v.Uint()), true
	}
	return 0, false
}
