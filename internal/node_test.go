package internal

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/bind/internal/types"
)

type tint uint8

const (
	red tint = iota
	green
	blue
)

type model struct {
	types.FieldNotifications

	Name  string `bind:"notify"`
	Age   int32
	Tint  tint
	Items []string

	greetings int
}

func (m *model) Greeting(prefix string) string {
	m.greetings++
	return prefix + " " + m.Name
}

type other struct {
	Name string
}

type label struct {
	Text    types.Text
	Visible bool
}

type widget struct {
	Model   *model
	Status  string
	Caption string
	Length  int32
	Ratio   float64
	Title   label

	sets int
}

func (w *widget) SetStatus(status string) {
	w.sets++
	w.Status = status
}

type stats struct {
	Level int32
}

type board struct {
	types.FieldNotifications

	Stats stats `bind:"notify"`
	Out   int32
}

func newRegistry() *types.Registry {
	r := types.NewRegistry()
	r.DefineEnum(reflect.TypeFor[tint](),
		types.EnumEntry{Name: "Red", Value: 0},
		types.EnumEntry{Name: "Green", Value: 1},
		types.EnumEntry{Name: "Blue", Value: 2},
	)
	types.ClassFor[*model](r).DefineFunction("Greeting", "Prefix")
	types.ClassFor[*widget](r).
		DefineFunction("SetStatus", "Status").
		DefineStatic("Double", func(v int32) int32 { return v * 2 }, "Value")
	return r
}

// bindOne builds a container with one instance around dst.
func bindOne(r *types.Registry, dst DestinationNode, opts ...Option) (*Container, *Instance) {
	opts = append([]Option{WithRegistry(r), WithSourceType(types.TypeFor[*widget](r))}, opts...)
	c := NewContainer(opts...)
	inst := NewInstance(dst)
	c.Add(inst)
	return c, inst
}

func TestPropertyValue(t *testing.T) {
	t.Run("copies a property into a destination", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Name: "Ann"}}

		dst := NewDestinationProperty("Status")
		require.NoError(t, dst.Connect(SlotValueSource, NewPropertyValue("Model.Name")))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)
		assert.Equal(t, "Ann", w.Status)

		w.Model.Name = "Bob"
		c.UpdateBindings(w)
		assert.Equal(t, "Bob", w.Status)
	})

	t.Run("always policy is forced", func(t *testing.T) {
		n := NewPropertyValue("Model.Name")
		n.SetPolicy(PolicyOnce)
		assert.Equal(t, PolicyAlways, n.Policy())
	})

	t.Run("missing root writes the zero value", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Status: "stale"}

		dst := NewDestinationProperty("Status")
		require.NoError(t, dst.Connect(SlotValueSource, NewPropertyValue("Model.Name")))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)
		assert.Equal(t, "", w.Status)
	})

	t.Run("evaluates once per frame when fanned out", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Name: "Ann"}}

		src := NewPropertyValue("Model.Name")
		format := NewFormatTextValue("{A}/{B}")
		require.NoError(t, format.Connect("A", src))
		require.NoError(t, format.Connect("B", src))

		dst := NewDestinationProperty("Title.Text")
		require.NoError(t, dst.Connect(SlotValueSource, format))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)

		assert.Equal(t, types.Text("Ann/Ann"), w.Title.Text)
		assert.Equal(t, 1, src.Evaluations())
	})
}

func TestChain(t *testing.T) {
	t.Run("propagates through every node", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Items: []string{"a", "b", "c"}}}

		length := NewContainerLengthValue()
		require.NoError(t, length.Connect(SlotContainer, NewPropertyValue("Model.Items")))
		dst := NewDestinationProperty("Length")
		require.NoError(t, dst.Connect(SlotValueSource, length))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)
		assert.Equal(t, int32(3), w.Length)

		w.Model.Items = append(w.Model.Items, "d")
		c.UpdateBindings(w)
		assert.Equal(t, int32(4), w.Length)

		c.UpdateBindings(w)
		assert.Equal(t, int32(4), w.Length)
	})

	t.Run("converts between slot types", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Name: "Ann", Age: 30}}

		ratio := NewDestinationProperty("Ratio")
		require.NoError(t, ratio.Connect(SlotValueSource, NewPropertyValue("Model.Age")))
		title := NewDestinationProperty("Title.Text")
		require.NoError(t, title.Connect(SlotValueSource, NewPropertyValue("Model.Name")))

		c := NewContainer(WithRegistry(r), WithSourceType(types.TypeFor[*widget](r)))
		c.Add(NewInstance(ratio))
		c.Add(NewInstance(title))
		c.InitializeBindings(w)

		assert.Equal(t, 30.0, w.Ratio)
		assert.Equal(t, types.Text("Ann"), w.Title.Text)
	})

	t.Run("once stops after the first value", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Name: "Ann"}}

		format := NewFormatTextValue("hello {Name}")
		format.SetPolicy(PolicyOnce)
		require.NoError(t, format.Connect("Name", NewPropertyValue("Model.Name")))
		dst := NewDestinationProperty("Title.Text")
		require.NoError(t, dst.Connect(SlotValueSource, format))

		c, inst := bindOne(r, dst)
		c.InitializeBindings(w)
		assert.Equal(t, types.Text("hello Ann"), w.Title.Text)
		assert.True(t, inst.IsPerformant())
		assert.Equal(t, []bool{false}, c.TickBitmap())

		w.Model.Name = "Bob"
		c.UpdateBindings(w)
		assert.Equal(t, types.Text("hello Ann"), w.Title.Text)
		assert.Equal(t, 1, format.Evaluations())
	})
}

func TestFieldNotifyValue(t *testing.T) {
	t.Run("re-evaluates on broadcast only", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Name: "Ann"}}

		src := NewFieldNotifyValue("Model.Name")
		dst := NewDestinationFunction(types.TypeFor[*widget](r), "SetStatus")
		require.NoError(t, dst.Connect("Status", src))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)
		assert.Equal(t, "Ann", w.Status)
		assert.Equal(t, 1, w.sets)
		assert.True(t, src.Watching())
		assert.Equal(t, []bool{false}, c.TickBitmap())

		w.Model.Name = "Bob"
		c.UpdateBindings(w)
		assert.Equal(t, "Ann", w.Status)
		assert.Equal(t, 1, c.Stats().Skips)

		w.Model.Broadcast("Name")
		assert.Equal(t, []bool{true}, c.TickBitmap())

		c.UpdateBindings(w)
		assert.Equal(t, "Bob", w.Status)
		assert.Equal(t, 2, w.sets)
		assert.Equal(t, []bool{false}, c.TickBitmap())
	})

	t.Run("unsubscribes on terminate", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Name: "Ann"}}

		src := NewFieldNotifyValue("Model.Name")
		dst := NewDestinationProperty("Status")
		require.NoError(t, dst.Connect(SlotValueSource, src))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)
		assert.Equal(t, 1, w.Model.Listeners("Name"))

		c.TerminateBindings(w)
		assert.Equal(t, 0, w.Model.Listeners("Name"))
		assert.False(t, src.Watching())
		assert.True(t, src.IsTerminated())
	})

	t.Run("watches the root for struct fields", func(t *testing.T) {
		r := newRegistry()
		b := &board{Stats: stats{Level: 1}}

		src := NewFieldNotifyValue("Stats.Level")
		dst := NewDestinationProperty("Out")
		require.NoError(t, dst.Connect(SlotValueSource, src))

		c := NewContainer(WithRegistry(r))
		c.Add(NewInstance(dst))
		c.InitializeBindings(b)
		assert.Equal(t, int32(1), b.Out)
		assert.True(t, src.Watching())
		assert.Equal(t, 1, b.Listeners("Stats"))
		assert.Equal(t, []bool{false}, c.TickBitmap())

		b.Stats.Level = 5
		b.Broadcast("Stats")
		assert.Equal(t, []bool{true}, c.TickBitmap())

		c.UpdateBindings(b)
		assert.Equal(t, int32(5), b.Out)

		c.TerminateBindings(b)
		assert.Equal(t, 0, b.Listeners("Stats"))
	})

	t.Run("moves to a new root object", func(t *testing.T) {
		r := newRegistry()
		a := &board{Stats: stats{Level: 1}}
		b := &board{Stats: stats{Level: 2}}

		src := NewFieldNotifyValue("Stats.Level")
		dst := NewDestinationProperty("Out")
		require.NoError(t, dst.Connect(SlotValueSource, src))

		c := NewContainer(WithRegistry(r))
		c.Add(NewInstance(dst))
		c.InitializeBindings(a)

		c.UpdateBindings(b)
		assert.Equal(t, int32(2), b.Out)
		assert.Equal(t, 0, a.Listeners("Stats"))
		assert.Equal(t, 1, b.Listeners("Stats"))
	})

	t.Run("event based policy is forced", func(t *testing.T) {
		n := NewFieldNotifyValue("Model.Name")
		n.SetPolicy(PolicyAlways)
		assert.Equal(t, PolicyEventBased, n.Policy())
	})
}

func TestFunctionValue(t *testing.T) {
	t.Run("calls on the target with slot parameters", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Name: "Ann"}}

		fn := NewFunctionValue(types.TypeFor[*model](r), "Greeting")
		require.NoError(t, fn.Connect(SlotTarget, NewPropertyValue("Model")))
		require.NoError(t, fn.SetDefault("Prefix", "Hi"))

		dst := NewDestinationProperty("Status")
		require.NoError(t, dst.Connect(SlotValueSource, fn))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)
		assert.Equal(t, "Hi Ann", w.Status)

		c.UpdateBindings(w)
		assert.Equal(t, 2, w.Model.greetings)
	})

	t.Run("skips the call when nothing changed", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Name: "Ann"}}

		fn := NewFunctionValue(types.TypeFor[*model](r), "Greeting")
		fn.SetPolicy(PolicyIfUpdatesNeeded)
		require.NoError(t, fn.Connect(SlotTarget, NewPropertyValue("Model")))
		require.NoError(t, fn.SetDefault("Prefix", "Hi"))

		dst := NewDestinationProperty("Status")
		require.NoError(t, dst.Connect(SlotValueSource, fn))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)
		c.UpdateBindings(w)
		c.UpdateBindings(w)

		assert.Equal(t, "Hi Ann", w.Status)
		assert.Equal(t, 1, w.Model.greetings)
	})

	t.Run("static functions", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Age: 21}}

		fn := NewStaticFunctionValue(types.TypeFor[*widget](r), "Double")
		require.NoError(t, fn.Connect("Value", NewPropertyValue("Model.Age")))
		dst := NewDestinationProperty("Length")
		require.NoError(t, dst.Connect(SlotValueSource, fn))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)
		assert.Equal(t, int32(42), w.Length)
	})

	t.Run("unknown functions produce nothing", func(t *testing.T) {
		r := newRegistry()
		fn := NewFunctionValue(types.TypeFor[*model](r), "Nope")

		assert.Nil(t, fn.OutputType())
		assert.ErrorIs(t, fn.validate(), ErrUnresolvedPath)
	})
}

func TestCastObjectValue(t *testing.T) {
	r := newRegistry()

	run := func(target *types.Type, w *widget) {
		cast := NewCastObjectValue(target)
		require.NoError(t, cast.Connect(SlotObject, NewPropertyValue("Model")))
		name := NewPropertyValue("Name")
		require.NoError(t, name.Connect(SlotPathRoot, cast))
		dst := NewDestinationProperty("Status")
		require.NoError(t, dst.Connect(SlotValueSource, name))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)
	}

	t.Run("passes matching objects", func(t *testing.T) {
		w := &widget{Model: &model{Name: "Ann"}}
		run(types.TypeFor[*model](r), w)
		assert.Equal(t, "Ann", w.Status)
	})

	t.Run("other classes become nil", func(t *testing.T) {
		w := &widget{Model: &model{Name: "Ann"}, Status: "stale"}
		run(types.TypeFor[*other](r), w)
		assert.Equal(t, "", w.Status)
	})

	t.Run("output type follows the target", func(t *testing.T) {
		cast := NewCastObjectValue(types.TypeFor[*model](r))
		assert.Same(t, types.TypeFor[*model](r), cast.OutputType())

		cast.SetTarget(types.TypeFor[*other](r))
		assert.Same(t, types.TypeFor[*other](r), cast.OutputType())
	})
}

func TestFormatTextValue(t *testing.T) {
	t.Run("parses arguments and escapes", func(t *testing.T) {
		segments, names := parseTemplate("`{Name`} is {Name}, {Age}{")

		assert.Equal(t, []string{"Name", "Age"}, names)
		assert.Equal(t, []segment{
			{text: "{Name} is "},
			{text: "Name", isArg: true},
			{text: ", "},
			{text: "Age", isArg: true},
			{text: "{"},
		}, segments)
	})

	t.Run("renders slot values", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Name: "Ann", Age: 30}}

		format := NewFormatTextValue("{Name} is {Age}")
		require.NoError(t, format.Connect("Name", NewPropertyValue("Model.Name")))
		require.NoError(t, format.Connect("Age", NewPropertyValue("Model.Age")))
		dst := NewDestinationProperty("Title.Text")
		require.NoError(t, dst.Connect(SlotValueSource, format))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)
		assert.Equal(t, types.Text("Ann is 30"), w.Title.Text)

		w.Model.Age = 31
		c.UpdateBindings(w)
		assert.Equal(t, types.Text("Ann is 31"), w.Title.Text)
	})

	t.Run("enums show their label", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Tint: blue}}

		format := NewFormatTextValue("tint: {Tint}")
		require.NoError(t, format.Connect("Tint", NewPropertyValue("Model.Tint")))
		dst := NewDestinationProperty("Title.Text")
		require.NoError(t, dst.Connect(SlotValueSource, format))

		c, _ := bindOne(r, dst)
		c.InitializeBindings(w)
		assert.Equal(t, types.Text("tint: Blue"), w.Title.Text)
	})

	t.Run("reshapes slots with the template", func(t *testing.T) {
		format := NewFormatTextValue("{A} {B}")
		b := NewPropertyValue("Model.Name")
		require.NoError(t, format.Connect("B", b))

		inst := NewInstance(NewDestinationProperty("Title.Text"))
		require.NoError(t, inst.Destination().Base().Connect(SlotValueSource, format))

		format.SetTemplate("{A} {C}")
		names := []string{}
		for _, it := range format.Items() {
			names = append(names, it.Name())
		}

		assert.Equal(t, []string{"A", "C"}, names)
		assert.Equal(t, []ValueNode{b}, inst.Orphans())
	})
}

func TestSelectValue(t *testing.T) {
	build := func(r *types.Registry, withDefault bool) (*Container, *SelectValue) {
		sel := NewSelectValue(types.TypeFor[tint](r))
		require.NoError(t, sel.Connect(SlotValue, NewPropertyValue("Model.Tint")))
		require.NoError(t, sel.SetDefault("Red", "#f00"))
		require.NoError(t, sel.SetDefault("Green", "#0f0"))
		require.NoError(t, sel.SetDefault("Blue", "#00f"))
		if withDefault {
			require.NoError(t, sel.SetDefault(SlotDefault, "none"))
		}

		dst := NewDestinationProperty("Status")
		require.NoError(t, dst.Connect(SlotValueSource, sel))

		c, _ := bindOne(r, dst)
		return c, sel
	}

	t.Run("enum branches", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Tint: green}}

		c, sel := build(r, true)
		assert.Equal(t, []string{"Red", "Green", "Blue"}, sel.Branches())

		c.InitializeBindings(w)
		assert.Equal(t, "#0f0", w.Status)

		w.Model.Tint = blue
		c.UpdateBindings(w)
		assert.Equal(t, "#00f", w.Status)

		w.Model.Tint = 7
		c.UpdateBindings(w)
		assert.Equal(t, "none", w.Status)
	})

	t.Run("unmapped without default produces nothing", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Tint: 7}, Status: "stale"}

		c, _ := build(r, false)
		c.InitializeBindings(w)
		assert.Equal(t, "", w.Status)
	})

	t.Run("bool branches", func(t *testing.T) {
		sel := NewSelectValue(types.TypeFor[bool](types.NewRegistry()))
		assert.Equal(t, []string{SlotTrue, SlotFalse}, sel.Branches())
		assert.NotNil(t, sel.Item(SlotDefault))
	})

	t.Run("option branches", func(t *testing.T) {
		r := newRegistry()
		w := &widget{Model: &model{Age: 18}}

		sel := NewSelectValue(types.TypeFor[int32](r))
		require.NoError(t, sel.Connect(SlotValue, NewPropertyValue("Model.Age")))
		sel.AddOption(int32(18)).SetDefault("adult")
		sel.AddOption(int32(12), "child").SetDefault("child")
		assert.Equal(t, []string{"18", "child"}, sel.Branches())

		dst := NewDestinationProperty("Status")
		require.NoError(t, dst.Connect(SlotValueSource, sel))
		c, _ := bindOne(r, dst)

		c.InitializeBindings(w)
		assert.Equal(t, "adult", w.Status)

		w.Model.Age = 12
		c.UpdateBindings(w)
		assert.Equal(t, "child", w.Status)

		assert.True(t, sel.RemoveOption("child"))
		assert.Equal(t, []string{"18"}, sel.Branches())
	})
}

func TestCycle(t *testing.T) {
	t.Run("guard breaks the loop", func(t *testing.T) {
		r := newRegistry()
		w := &widget{}

		a := NewFormatTextValue("a{X}")
		b := NewFormatTextValue("b{Y}")
		require.NoError(t, a.Connect("X", b))
		require.NoError(t, b.Connect("Y", a))

		dst := NewDestinationProperty("Title.Text")
		require.NoError(t, dst.Connect(SlotValueSource, a))

		c, _ := bindOne(r, dst)
		assert.NotPanics(t, func() {
			c.InitializeBindings(w)
			c.UpdateBindings(w)
		})
		assert.True(t, strings.HasPrefix(string(w.Title.Text), "ab"))
	})

	t.Run("tracker refuses re-entry", func(t *testing.T) {
		tr := NewTracker(true)
		o := &Object{}

		assert.True(t, tr.Enter(o))
		assert.False(t, tr.Enter(o))
		assert.Equal(t, 1, tr.Depth())

		tr.Leave(o)
		assert.Nil(t, tr.Current())
		assert.True(t, NewTracker(false).Enter(o))
	})
}

func TestPolicy(t *testing.T) {
	p, err := ParsePolicy("ifupdatesneeded")
	require.NoError(t, err)
	assert.Equal(t, PolicyIfUpdatesNeeded, p)

	_, err = ParsePolicy("sometimes")
	assert.Error(t, err)

	k, err := ParseKind("SelectValue")
	require.NoError(t, err)
	assert.Equal(t, KindSelectValue, k)
	assert.False(t, k.IsDestination())
	assert.True(t, KindDestinationFunction.IsDestination())

	_, err = ParseKind("Teleport")
	assert.ErrorIs(t, err, ErrUnknownNodeKind)
}
