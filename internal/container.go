package internal

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/tliron/commonlog"
	"golang.org/x/text/message"

	"github.com/AnatoleLucet/bind/internal/convert"
	"github.com/AnatoleLucet/bind/internal/types"
)

// Stats counts the work done by a container.
type Stats struct {
	// instances updated
	Updates int
	// instances skipped because they did not need a tick
	Skips int
	// completed passes
	Passes int
	Frame  uint64
}

// Container holds the binding instances of one source object and drives
// their lifecycle. It keeps one tick entry per instance: only instances
// whose entry is set are updated.
type Container struct {
	reg    *types.Registry
	conv   *convert.Registry
	ctx    *Context
	logger commonlog.Logger

	sourceType *types.Type

	instances []*Instance
	ticks     []bool

	sched    *Scheduler
	batcher  *Batcher
	affinity affinity

	initialized bool
	stats       Stats

	// edits made during an update pass, applied once it completes
	deferred []func()
}

func NewContainer(opts ...Option) *Container {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	reg := o.Registry
	if reg == nil {
		reg = types.Default()
	}
	conv := convert.New(o.Converters...)

	return &Container{
		reg:        reg,
		conv:       conv,
		ctx:        NewContext(reg, conv, message.NewPrinter(o.Language), o.CycleGuard),
		logger:     commonlog.GetLogger(o.Logger),
		sourceType: o.SourceType,
		sched:      NewScheduler(o.OnTickEnabled),
		batcher:    NewBatcher(),
	}
}

func (c *Container) Registry() *types.Registry { return c.reg }

func (c *Container) Converters() *convert.Registry { return c.conv }

func (c *Container) Context() *Context { return c.ctx }

func (c *Container) SourceType() *types.Type { return c.sourceType }

// SetSourceType declares the type of the source object, against which the
// paths of every instance resolve.
func (c *Container) SetSourceType(t *types.Type) {
	c.sourceType = t
	for _, inst := range c.instances {
		inst.refresh()
	}
}

// SetOnTickEnabled replaces the tick enablement callback.
func (c *Container) SetOnTickEnabled(fn func(bool)) {
	c.sched.onChange = fn
}

func (c *Container) IsInitialized() bool { return c.initialized }

func (c *Container) Instances() []*Instance { return c.instances }

func (c *Container) Len() int { return len(c.instances) }

func (c *Container) Index(inst *Instance) int {
	return slices.Index(c.instances, inst)
}

// Add appends an instance and returns its index, -1 while it waits for an
// update pass to complete. Added to an initialized container, it is
// initialized right away.
func (c *Container) Add(inst *Instance) int {
	c.Insert(len(c.instances), inst)
	return c.Index(inst)
}

// Insert places an instance at idx. During an update pass the insertion
// waits for the pass to complete.
func (c *Container) Insert(idx int, inst *Instance) {
	if c.sched.Running() {
		c.deferred = append(c.deferred, func() { c.Insert(idx, inst) })
		return
	}

	if inst.container != nil {
		inst.container.Remove(inst)
	}
	idx = min(max(idx, 0), len(c.instances))

	c.instances = slices.Insert(c.instances, idx, inst)
	c.ticks = slices.Insert(c.ticks, idx, true)
	inst.attach(c)

	if c.initialized {
		c.start(idx)
		c.syncTickEnabled()
	}
}

// Remove takes an instance out of the container, terminating it if the
// container was initialized.
func (c *Container) Remove(inst *Instance) bool {
	idx := c.Index(inst)
	if idx < 0 {
		return false
	}
	if c.sched.Running() {
		c.deferred = append(c.deferred, func() { c.Remove(inst) })
		return true
	}

	if c.initialized {
		c.ctx.Advance()
		inst.Terminate(c.ctx)
	}

	c.instances = slices.Delete(c.instances, idx, idx+1)
	c.ticks = slices.Delete(c.ticks, idx, idx+1)
	inst.container = nil

	c.syncTickEnabled()
	return true
}

// Move changes the position of an instance, and so its update order.
func (c *Container) Move(from, to int) {
	if from < 0 || from >= len(c.instances) || to < 0 || to >= len(c.instances) || from == to {
		return
	}
	if c.sched.Running() {
		c.deferred = append(c.deferred, func() { c.Move(from, to) })
		return
	}

	inst, tick := c.instances[from], c.ticks[from]
	c.instances = slices.Delete(c.instances, from, from+1)
	c.ticks = slices.Delete(c.ticks, from, from+1)
	c.instances = slices.Insert(c.instances, to, inst)
	c.ticks = slices.Insert(c.ticks, to, tick)
}

// InitializeBindings initializes every instance against source and runs
// their first update.
func (c *Container) InitializeBindings(source any) {
	c.affinity.bind()
	c.setSource(source)

	c.sched.Run(func() {
		for idx := range c.instances {
			c.start(idx)
		}
	})

	c.initialized = true
	c.flushDeferred()
	c.syncTickEnabled()
	c.logger.Infof("initialized %d bindings", len(c.instances))
}

func (c *Container) start(idx int) {
	inst := c.instances[idx]

	c.ctx.Advance()
	inst.Initialize(c.ctx)
	inst.Update(c.ctx)
	c.stats.Updates++

	c.ctx.Advance()
	c.ticks[idx] = inst.ShouldBindingTick(c.ctx)
}

// UpdateBindings updates the instances whose tick entry is set, refreshing
// the entries as it goes.
func (c *Container) UpdateBindings(source any) {
	c.affinity.check("UpdateBindings")
	c.setSource(source)

	c.sched.Run(func() {
		for idx, inst := range c.instances {
			if !c.ticks[idx] {
				c.stats.Skips++
				continue
			}

			c.ctx.Advance()
			inst.Update(c.ctx)
			c.stats.Updates++

			c.ctx.Advance()
			c.ticks[idx] = inst.ShouldBindingTick(c.ctx)
		}
	})

	c.flushDeferred()
	c.syncTickEnabled()
}

// TerminateBindings tears every instance down.
func (c *Container) TerminateBindings(source any) {
	c.affinity.check("TerminateBindings")
	c.setSource(source)

	c.sched.Run(func() {
		for idx, inst := range c.instances {
			c.ctx.Advance()
			inst.Terminate(c.ctx)
			c.ticks[idx] = false
		}
	})

	c.initialized = false
	c.flushDeferred()
	c.syncTickEnabled()
	c.logger.Infof("terminated %d bindings", len(c.instances))
}

// setSource points the context at source. A different source object makes
// every node reading it re-evaluate.
func (c *Container) setSource(source any) {
	prev := c.ctx.source
	c.ctx.SetSource(source)

	if c.sourceType == nil && c.ctx.sourceType != nil {
		c.logger.Debugf("source type inferred as %s", c.ctx.sourceType)
		c.SetSourceType(c.ctx.sourceType)
	}

	if !sameSource(prev, c.ctx.source) {
		for _, inst := range c.instances {
			inst.sourceChanged()
		}
	}
}

func sameSource(a, b reflect.Value) bool {
	if a.IsValid() != b.IsValid() {
		return false
	}
	if !a.IsValid() {
		return true
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	}
	if a.Comparable() {
		return a.Equal(b)
	}
	return false
}

func (c *Container) flushDeferred() {
	for len(c.deferred) > 0 {
		edits := c.deferred
		c.deferred = nil
		for _, edit := range edits {
			edit()
		}
	}
}

// TickBitmap returns a copy of the tick entries, one per instance.
func (c *Container) TickBitmap() []bool {
	return slices.Clone(c.ticks)
}

// NeedsTick reports whether any instance wants to be updated.
func (c *Container) NeedsTick() bool {
	return slices.Contains(c.ticks, true)
}

func (c *Container) markDirty(inst *Instance) {
	idx := c.Index(inst)
	if idx < 0 {
		return
	}
	c.ticks[idx] = true
	c.syncTickEnabled()
}

func (c *Container) syncTickEnabled() {
	if c.batcher.Hold() {
		return
	}
	c.sched.SetEnabled(c.initialized && c.NeedsTick())
}

// TickEnabled reports the last tick enablement notified.
func (c *Container) TickEnabled() bool { return c.sched.Enabled() }

func (c *Container) Stats() Stats {
	s := c.stats
	s.Passes = c.sched.Time()
	s.Frame = c.ctx.Frame()
	return s
}

// Validate checks the wiring of every instance.
func (c *Container) Validate() error {
	var result *multierror.Error
	for idx, inst := range c.instances {
		if err := inst.Validate(c.conv); err != nil {
			result = multierror.Append(result, fmt.Errorf("binding %d: %w", idx, err))
		}
	}
	return result.ErrorOrNil()
}
