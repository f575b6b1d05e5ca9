package convert

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/bind/internal/types"
)

type widget interface{ Name() string }

type base struct{ name string }

func (b *base) Name() string { return b.name }

type label struct {
	Text    string
	Visible bool `bind:"setter=SetVisible"`

	sets int
}

func (l *label) SetVisible(v bool) {
	l.sets++
	l.Visible = v
}

func cellOf[T any](r *types.Registry, v T) types.Cell {
	c := types.NewCell(types.TypeFor[T](r))
	c.Value.Set(reflect.ValueOf(&v).Elem())
	return c
}

func convert[D any](t *testing.T, conv *Registry, r *types.Registry, src types.Cell) D {
	t.Helper()

	dst := types.NewCell(types.TypeFor[D](r))
	require.True(t, conv.Convert(dst, src))
	return dst.Value.Interface().(D)
}

func TestNumeric(t *testing.T) {
	r := types.NewRegistry()
	conv := New()

	t.Run("widens exactly", func(t *testing.T) {
		assert.Equal(t, int32(200), convert[int32](t, conv, r, cellOf(r, uint8(200))))
		assert.Equal(t, int64(-7), convert[int64](t, conv, r, cellOf(r, int8(-7))))
	})

	t.Run("converts to float", func(t *testing.T) {
		assert.Equal(t, float32(-5), convert[float32](t, conv, r, cellOf(r, int32(-5))))
		assert.Equal(t, 3.0, convert[float64](t, conv, r, cellOf(r, uint16(3))))
	})

	t.Run("truncates floats", func(t *testing.T) {
		assert.Equal(t, int32(2), convert[int32](t, conv, r, cellOf(r, 2.9)))
		assert.Equal(t, int32(-2), convert[int32](t, conv, r, cellOf(r, -2.9)))
	})

	t.Run("narrowing wraps", func(t *testing.T) {
		assert.Equal(t, int8(44), convert[int8](t, conv, r, cellOf(r, int32(300))))
		assert.Equal(t, int8(56), convert[int8](t, conv, r, cellOf(r, int32(-200))))
		assert.Equal(t, uint8(255), convert[uint8](t, conv, r, cellOf(r, int32(-1))))
		assert.Equal(t, int8(-1), convert[int8](t, conv, r, cellOf(r, uint32(255))))
	})

	t.Run("converts enums", func(t *testing.T) {
		type level uint8
		r.DefineEnum(reflect.TypeFor[level](), types.EnumEntry{Name: "Low", Value: 0}, types.EnumEntry{Name: "High", Value: 1})

		assert.Equal(t, level(1), convert[level](t, conv, r, cellOf(r, int32(1))))
		assert.Equal(t, int32(1), convert[int32](t, conv, r, cellOf(r, level(1))))
	})
}

func TestContainer(t *testing.T) {
	r := types.NewRegistry()
	conv := New()

	t.Run("re-types arrays", func(t *testing.T) {
		got := convert[[]int32](t, conv, r, cellOf(r, []uint8{1, 2, 250}))
		assert.Empty(t, cmp.Diff([]int32{1, 2, 250}, got))
	})

	t.Run("re-types arrays of float", func(t *testing.T) {
		got := convert[[]float64](t, conv, r, cellOf(r, []int{1, -2}))
		assert.Empty(t, cmp.Diff([]float64{1, -2}, got))
	})

	t.Run("re-types maps and sets", func(t *testing.T) {
		m := convert[map[string]int64](t, conv, r, cellOf(r, map[string]int8{"a": 1}))
		assert.Empty(t, cmp.Diff(map[string]int64{"a": 1}, m))

		s := convert[map[int64]struct{}](t, conv, r, cellOf(r, map[int8]struct{}{3: {}}))
		assert.Empty(t, cmp.Diff(map[int64]struct{}{3: {}}, s))
	})

	t.Run("refuses unconvertible elements", func(t *testing.T) {
		assert.False(t, conv.CanConvert(types.TypeFor[[]int](r), types.TypeFor[[]string](r)))
	})
}

func TestColor(t *testing.T) {
	r := types.NewRegistry()
	conv := New()

	src := cellOf(r, types.Color{R: 128, G: 0, B: 255, A: 255})

	lin := convert[types.LinearColor](t, conv, r, src)
	assert.InDelta(t, 0.2159, lin.R, 0.001)
	assert.InDelta(t, 1.0, lin.B, 0.0001)

	back := convert[types.Color](t, conv, r, cellOf(r, lin))
	assert.Equal(t, types.Color{R: 55, G: 0, B: 255, A: 255}, back)

	again := convert[types.Color](t, conv, r, cellOf(r, convert[types.LinearColor](t, conv, r, src)))
	assert.Equal(t, back, again)

	slate := convert[types.SlateColor](t, conv, r, src)
	assert.Equal(t, types.ColorSpecified, slate.Rule)
	assert.Equal(t, lin, slate.Specified)

	r.SetThemeColor(types.ColorSelection, types.LinearColor{R: 1, A: 1})
	themed := convert[types.LinearColor](t, conv, r, cellOf(r, types.SlateColor{Rule: types.ColorSelection}))
	assert.Equal(t, types.LinearColor{R: 1, A: 1}, themed)
}

func TestObject(t *testing.T) {
	r := types.NewRegistry()
	conv := New()

	t.Run("upcasts to interfaces", func(t *testing.T) {
		b := &base{name: "derived"}
		got := convert[widget](t, conv, r, cellOf(r, b))
		assert.Same(t, b, got)
	})

	t.Run("falls back to the runtime type", func(t *testing.T) {
		b := &base{}
		got := convert[*base](t, conv, r, cellOf[widget](r, b))
		assert.Same(t, b, got)
	})

	t.Run("writes nil on mismatch", func(t *testing.T) {
		dst := cellOf(r, &label{})
		require.True(t, conv.Convert(dst, cellOf[widget](r, &base{})))
		assert.True(t, dst.Value.IsNil())
	})
}

func TestConvert(t *testing.T) {
	r := types.NewRegistry()

	t.Run("identical types are copied", func(t *testing.T) {
		conv := New(Between(func(v int) int { return v * 100 }))

		src := cellOf(r, []int{1, 2})
		dst := types.NewCell(src.Type)
		require.True(t, conv.Convert(dst, src))

		assert.Equal(t, []int{1, 2}, dst.Value.Interface())
		assert.Equal(t, 5, convert[int](t, conv, r, cellOf(r, 5)))
	})

	t.Run("custom converters win", func(t *testing.T) {
		conv := New()
		conv.Register(Between(func(v int) string { return "#" + strconv.Itoa(v) }))

		assert.Equal(t, "#7", convert[string](t, conv, r, cellOf(r, 7)))
	})

	t.Run("missing conversion leaves the destination", func(t *testing.T) {
		conv := New()

		dst := cellOf(r, true)
		assert.False(t, conv.Convert(dst, cellOf(r, "x")))
		assert.Equal(t, true, dst.Value.Bool())
	})

	t.Run("converts text", func(t *testing.T) {
		assert.Equal(t, types.Text("hi"), convert[types.Text](t, New(), r, cellOf(r, "hi")))
	})
}

func TestSetProperty(t *testing.T) {
	r := types.NewRegistry()
	conv := New()
	class := types.ClassFor[*label](r)

	l := &label{}
	owner := reflect.ValueOf(l)

	require.True(t, conv.SetProperty(owner, class.FindProperty("Text"), cellOf(r, types.Text("hello"))))
	require.True(t, conv.SetProperty(owner, class.FindProperty("Visible"), cellOf(r, true)))

	assert.Equal(t, "hello", l.Text)
	assert.True(t, l.Visible)
	assert.Equal(t, 1, l.sets)

	assert.False(t, conv.SetProperty(owner, class.FindProperty("Visible"), cellOf(r, "nope")))
	assert.Equal(t, 1, l.sets)
}

func TestEqual(t *testing.T) {
	r := types.NewRegistry()
	conv := New()

	assert.True(t, conv.Equal(cellOf(r, int32(3)), cellOf(r, uint8(3))))
	assert.True(t, conv.Equal(cellOf(r, "a"), cellOf(r, types.Text("a"))))
	assert.False(t, conv.Equal(cellOf(r, 1), cellOf(r, 2)))
	assert.False(t, conv.Equal(cellOf(r, 1), cellOf(r, "1")))
	assert.True(t, conv.Equal(types.Unknown(), types.Empty(types.TypeFor[int](r))))
}
