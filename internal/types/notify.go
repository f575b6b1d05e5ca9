package types

// Text is display text, as produced by text formatting.
type Text string

func (t Text) String() string { return string(t) }

type DelegateHandle uint64

type FieldChangedFunc func(field string)

// FieldNotifier is implemented by objects that broadcast when one of their
// fields changes.
type FieldNotifier interface {
	AddFieldValueChangedDelegate(field string, fn FieldChangedFunc) DelegateHandle
	RemoveFieldValueChangedDelegate(field string, h DelegateHandle) bool
}

type delegate struct {
	handle DelegateHandle
	fn     FieldChangedFunc
}

// FieldNotifications is an embeddable FieldNotifier.
//
//	type Player struct {
//		types.FieldNotifications
//		Health int `bind:"notify"`
//	}
type FieldNotifications struct {
	next      DelegateHandle
	delegates map[string][]delegate
}

func (n *FieldNotifications) AddFieldValueChangedDelegate(field string, fn FieldChangedFunc) DelegateHandle {
	if n.delegates == nil {
		n.delegates = make(map[string][]delegate)
	}
	n.next++
	n.delegates[field] = append(n.delegates[field], delegate{n.next, fn})
	return n.next
}

func (n *FieldNotifications) RemoveFieldValueChangedDelegate(field string, h DelegateHandle) bool {
	list := n.delegates[field]
	for i, d := range list {
		if d.handle == h {
			n.delegates[field] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Broadcast notifies every delegate listening on field.
func (n *FieldNotifications) Broadcast(field string) {
	// copy, delegates may unsubscribe while running
	list := append([]delegate(nil), n.delegates[field]...)
	for _, d := range list {
		d.fn(field)
	}
}

// Listeners returns how many delegates listen on field.
func (n *FieldNotifications) Listeners(field string) int {
	return len(n.delegates[field])
}
