package internal

import (
	"reflect"

	"golang.org/x/text/message"

	"github.com/AnatoleLucet/bind/internal/convert"
	"github.com/AnatoleLucet/bind/internal/types"
)

// Context is passed to every evaluation. It carries the source object of the
// update, the frame counter and the per-frame "needs update" memo.
type Context struct {
	source     reflect.Value
	sourceType *types.Type

	reg     *types.Registry
	conv    *convert.Registry
	printer *message.Printer

	frame uint64
	needs map[*Object]bool

	tracker *Tracker
}

func NewContext(reg *types.Registry, conv *convert.Registry, printer *message.Printer, guard bool) *Context {
	return &Context{
		reg:     reg,
		conv:    conv,
		printer: printer,
		needs:   make(map[*Object]bool),
		tracker: NewTracker(guard),
	}
}

// SetSource sets the object bindings read from when a "self" input is
// left unwired.
func (ctx *Context) SetSource(source any) {
	if v, ok := source.(reflect.Value); ok {
		ctx.source = v
	} else {
		ctx.source = reflect.ValueOf(source)
	}

	ctx.sourceType = nil
	if ctx.source.IsValid() {
		ctx.sourceType = ctx.reg.TypeOf(ctx.source.Type())
	}
}

func (ctx *Context) Source() types.Cell {
	return types.CellOf(ctx.sourceType, ctx.source)
}

func (ctx *Context) Registry() *types.Registry { return ctx.reg }

func (ctx *Context) Converters() *convert.Registry { return ctx.conv }

func (ctx *Context) Printer() *message.Printer { return ctx.printer }

// Frame returns the current evaluation frame.
func (ctx *Context) Frame() uint64 { return ctx.frame }

// Advance starts a new frame, dropping the memoised "needs update" results.
func (ctx *Context) Advance() {
	ctx.frame++
	clear(ctx.needs)
}

func (ctx *Context) enter(o *Object) bool {
	if !ctx.tracker.Enter(o) {
		log.Warningf("cycle through %s %s, evaluation skipped", o.kind, o.id)
		return false
	}
	return true
}

func (ctx *Context) leave(o *Object) {
	ctx.tracker.Leave(o)
}
