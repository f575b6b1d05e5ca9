package bind

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHost(t *testing.T) {
	t.Run("ticks only while bindings can change", func(t *testing.T) {
		log := []string{}

		dst := NewDestinationProperty("Title")
		dst.Connect(SlotValueSource, NewFieldNotifyValue("Profile.Name"))
		c := NewContainer(WithRegistry(NewRegistry()))
		c.Add(NewInstance(dst))

		h := NewHost(c)
		h.OnTickEnabled(func(on bool) {
			log = append(log, fmt.Sprintf("ticking %v", on))
		})

		b := &badge{Profile: &profile{Name: "Ann"}}
		h.Construct(b)
		assert.Equal(t, Text("Ann"), b.Title)
		assert.False(t, h.Ticking())
		assert.False(t, h.Tick())

		b.Profile.Name = "Bob"
		b.Profile.Broadcast("Name")
		assert.True(t, h.Ticking())
		assert.True(t, h.Tick())
		assert.Equal(t, Text("Bob"), b.Title)

		assert.Equal(t, []string{
			"ticking true",
			"ticking false",
		}, log)
	})

	t.Run("always policies keep ticking", func(t *testing.T) {
		log := []string{}

		dst := NewDestinationProperty("Title")
		dst.Connect(SlotValueSource, NewPropertyValue("Profile.Name"))
		c := NewContainer(WithRegistry(NewRegistry()))
		c.Add(NewInstance(dst))

		h := NewHost(c)
		h.OnTickEnabled(func(on bool) {
			log = append(log, fmt.Sprintf("ticking %v", on))
		})

		b := &badge{Profile: &profile{Name: "Ann"}}
		h.Construct(b)
		for range 3 {
			assert.True(t, h.Tick())
		}

		h.Destruct()
		assert.False(t, h.Tick())
		assert.Nil(t, h.Source())
		assert.True(t, dst.IsTerminated())

		assert.Equal(t, []string{
			"ticking true",
			"ticking false",
		}, log)
	})

	t.Run("construct twice destructs first", func(t *testing.T) {
		src := NewFieldNotifyValue("Profile.Name")
		dst := NewDestinationProperty("Title")
		dst.Connect(SlotValueSource, src)
		c := NewContainer(WithRegistry(NewRegistry()))
		c.Add(NewInstance(dst))
		h := NewHost(c)

		a := &badge{Profile: &profile{Name: "Ann"}}
		b := &badge{Profile: &profile{Name: "Bob"}}
		h.Construct(a)
		h.Construct(b)

		assert.Same(t, b, h.Source())
		assert.Equal(t, Text("Bob"), b.Title)
		assert.Equal(t, 0, a.Profile.Listeners("Name"))
		assert.Equal(t, 1, b.Profile.Listeners("Name"))
	})
}

const badgeYAML = `
source: Badge
bindings:
  - destination: title
    nodes:
      - id: name
        kind: PropertyValue
        config: {path: Profile.Name}
      - id: text
        kind: FormatTextValue
        config: {template: "{Name}!"}
        inputs: {Name: name}
      - id: title
        kind: DestinationProperty
        config: {path: Title}
        inputs: {Value Source: text}
`

func TestDocument(t *testing.T) {
	t.Run("loads and hosts a document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "badge.yaml")
		require.NoError(t, os.WriteFile(path, []byte(badgeYAML), 0o644))

		doc, err := LoadDocument(path)
		require.NoError(t, err)

		r := NewRegistry()
		r.Register("Badge", &badge{})
		c, err := doc.Build(r)
		require.NoError(t, err)
		assert.Same(t, TypeOf[*badge](r), c.SourceType())

		h := NewHost(c)
		b := &badge{Profile: &profile{Name: "Ann"}}
		h.Construct(b)
		assert.Equal(t, Text("Ann!"), b.Title)
	})

	t.Run("reports unknown source types", func(t *testing.T) {
		doc, err := ParseDocument([]byte(badgeYAML), FormatYAML)
		require.NoError(t, err)

		_, err = doc.Build(NewRegistry())
		assert.ErrorIs(t, err, ErrUnknownType)
	})
}
