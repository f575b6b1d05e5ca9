package bind

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("bind.host")

// Host drives a container from the lifecycle of a UI object: Construct when
// the object is built, Tick every frame, Destruct when it goes away.
//
// The host keeps track of whether the container wants ticks at all, so an
// object whose bindings are all settled can drop out of the frame loop.
type Host struct {
	container *Container
	source    any
	ticking   bool
	listeners []func(bool)
}

func NewHost(c *Container) *Host {
	h := &Host{container: c}
	c.SetOnTickEnabled(h.setTicking)
	return h
}

func (h *Host) Container() *Container { return h.container }

// Source is the object passed to Construct, nil before and after.
func (h *Host) Source() any { return h.source }

// Construct initializes every binding against source.
func (h *Host) Construct(source any) {
	if h.source != nil {
		log.Warning("construct called twice, destructing first")
		h.Destruct()
	}

	h.source = source
	h.container.InitializeBindings(source)
}

// Tick updates the bindings that need it and reports whether any work was
// done.
func (h *Host) Tick() bool {
	if h.source == nil || !h.container.NeedsTick() {
		return false
	}

	h.container.UpdateBindings(h.source)
	return true
}

func (h *Host) Destruct() {
	if h.source == nil {
		return
	}

	h.container.TerminateBindings(h.source)
	h.source = nil
	h.setTicking(false)
}

// Ticking reports whether the host currently wants Tick to be called.
func (h *Host) Ticking() bool { return h.ticking }

// OnTickEnabled registers fn to be called when the host starts or stops
// wanting ticks.
func (h *Host) OnTickEnabled(fn func(bool)) {
	h.listeners = append(h.listeners, fn)
}

func (h *Host) setTicking(on bool) {
	if h.ticking == on {
		return
	}

	h.ticking = on
	for _, fn := range h.listeners {
		fn(on)
	}
}
