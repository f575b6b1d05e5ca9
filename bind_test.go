package bind

import (
	"fmt"
)

type profile struct {
	FieldNotifications

	Name  string `bind:"notify"`
	Level int32
	Tags  []string
}

type badge struct {
	Profile *profile
	Title   Text
	Tags    int32
}

func ExampleNewFormatTextValue() {
	text := NewFormatTextValue("{Name} is level {Level}")
	text.Connect("Name", NewPropertyValue("Profile.Name"))
	text.Connect("Level", NewPropertyValue("Profile.Level"))

	dst := NewDestinationProperty("Title")
	dst.Connect(SlotValueSource, text)

	c := NewContainer(WithRegistry(NewRegistry()))
	c.Add(NewInstance(dst))

	b := &badge{Profile: &profile{Name: "Ann", Level: 3}}
	c.InitializeBindings(b)
	fmt.Println(b.Title)

	b.Profile.Level = 4
	c.UpdateBindings(b)
	fmt.Println(b.Title)

	// Output:
	// Ann is level 3
	// Ann is level 4
}

func ExampleNewContainerLengthValue() {
	length := NewContainerLengthValue()
	length.Connect(SlotContainer, NewPropertyValue("Profile.Tags"))

	dst := NewDestinationProperty("Tags")
	dst.Connect(SlotValueSource, length)

	c := NewContainer(WithRegistry(NewRegistry()))
	c.Add(NewInstance(dst))

	b := &badge{Profile: &profile{Tags: []string{"new"}}}
	c.InitializeBindings(b)
	fmt.Println(b.Tags)

	b.Profile.Tags = append(b.Profile.Tags, "fast", "loud")
	c.UpdateBindings(b)
	fmt.Println(b.Tags)

	// Output:
	// 1
	// 3
}

func ExampleRead() {
	name := NewPropertyValue("Profile.Name")
	dst := NewDestinationProperty("Title")
	dst.Connect(SlotValueSource, name)

	c := NewContainer(WithRegistry(NewRegistry()))
	c.Add(NewInstance(dst))
	c.InitializeBindings(&badge{Profile: &profile{Name: "Ann"}})

	fmt.Println(Read[string](name))

	// Output:
	// Ann true
}

func ExampleHost() {
	text := NewFormatTextValue("hello {Name}")
	text.Connect("Name", NewFieldNotifyValue("Profile.Name"))
	dst := NewDestinationProperty("Title")
	dst.Connect(SlotValueSource, text)

	c := NewContainer(WithRegistry(NewRegistry()))
	c.Add(NewInstance(dst))

	h := NewHost(c)
	h.OnTickEnabled(func(on bool) {
		fmt.Println("ticking", on)
	})

	b := &badge{Profile: &profile{Name: "Ann"}}
	h.Construct(b)
	fmt.Println(b.Title)

	b.Profile.Name = "Bob"
	b.Profile.Broadcast("Name")
	h.Tick()
	fmt.Println(b.Title)

	h.Destruct()

	// Output:
	// hello Ann
	// ticking true
	// ticking false
	// hello Bob
}
