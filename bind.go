package bind

import (
	"golang.org/x/text/language"

	"github.com/AnatoleLucet/bind/internal"
	"github.com/AnatoleLucet/bind/internal/convert"
	"github.com/AnatoleLucet/bind/internal/document"
	"github.com/AnatoleLucet/bind/internal/types"
)

type (
	Container       = internal.Container
	Instance        = internal.Instance
	Node            = internal.Node
	ValueNode       = internal.ValueNode
	DestinationNode = internal.DestinationNode
	Item            = internal.Item
	Context         = internal.Context
	Stats           = internal.Stats
	Policy          = internal.Policy
	Kind            = internal.Kind
	Option          = internal.Option
	Options         = internal.Options

	PropertyValue        = internal.PropertyValue
	FieldNotifyValue     = internal.FieldNotifyValue
	FunctionValue        = internal.FunctionValue
	StaticFunctionValue  = internal.StaticFunctionValue
	CastObjectValue      = internal.CastObjectValue
	ContainerLengthValue = internal.ContainerLengthValue
	FormatTextValue      = internal.FormatTextValue
	SelectValue          = internal.SelectValue
	DestinationProperty  = internal.DestinationProperty
	DestinationFunction  = internal.DestinationFunction

	Registry           = types.Registry
	Type               = types.Type
	Class              = types.Class
	Cell               = types.Cell
	EnumEntry          = types.EnumEntry
	Text               = types.Text
	Color              = types.Color
	LinearColor        = types.LinearColor
	SlateColor         = types.SlateColor
	FieldNotifications = types.FieldNotifications

	Converter = convert.Converter

	Document       = document.Document
	DocumentFormat = document.Format
)

const (
	PolicyAlways          = internal.PolicyAlways
	PolicyIfUpdatesNeeded = internal.PolicyIfUpdatesNeeded
	PolicyEventBased      = internal.PolicyEventBased
	PolicyOnce            = internal.PolicyOnce

	FormatYAML = document.FormatYAML
	FormatTOML = document.FormatTOML
)

// Names of the fixed slots of the node kinds.
const (
	SlotPathRoot      = internal.SlotPathRoot
	SlotValueSource   = internal.SlotValueSource
	SlotTarget        = internal.SlotTarget
	SlotFunctionOwner = internal.SlotFunctionOwner
	SlotObject        = internal.SlotObject
	SlotContainer     = internal.SlotContainer
	SlotValue         = internal.SlotValue
	SlotDefault       = internal.SlotDefault
	SlotTrue          = internal.SlotTrue
	SlotFalse         = internal.SlotFalse
)

var (
	ErrUnknownNodeKind = internal.ErrUnknownNodeKind
	ErrUnknownSlot     = internal.ErrUnknownSlot
	ErrTypeMismatch    = internal.ErrTypeMismatch
	ErrUnresolvedPath  = internal.ErrUnresolvedPath
	ErrMissingInput    = internal.ErrMissingInput
	ErrUnknownType     = document.ErrUnknownType
)

// NewRegistry creates an empty type registry. Most programs use
// DefaultRegistry.
func NewRegistry() *Registry { return types.NewRegistry() }

func DefaultRegistry() *Registry { return types.Default() }

// TypeOf returns the descriptor of T in r, the default registry when r is nil.
func TypeOf[T any](r *Registry) *Type {
	if r == nil {
		r = types.Default()
	}
	return types.TypeFor[T](r)
}

// ClassOf returns the class of T, a pointer to struct or an interface, to
// declare functions, properties and notifications on it.
func ClassOf[T any](r *Registry) *Class {
	if r == nil {
		r = types.Default()
	}
	return types.ClassFor[T](r)
}

// NewContainer creates an empty container. Instances are added with Add.
func NewContainer(opts ...Option) *Container {
	return internal.NewContainer(opts...)
}

// NewInstance creates a binding instance owning dest and every node wired
// into it.
func NewInstance(dest DestinationNode) *Instance {
	return internal.NewInstance(dest)
}

// NewPropertyValue reads a dotted field path, such as "Model.Stats.Level"
// or "Best().Name", from the source object or from its "Path Root" slot.
func NewPropertyValue(path string) *PropertyValue {
	return internal.NewPropertyValue(path)
}

// NewFieldNotifyValue reads a field path and only re-evaluates when the
// owner of the last field broadcasts a change of it.
func NewFieldNotifyValue(path string) *FieldNotifyValue {
	return internal.NewFieldNotifyValue(path)
}

// NewFunctionValue calls function on the object of its "Target" slot, the
// source object when unwired. Parameters are read from slots named after
// them.
func NewFunctionValue(class *Type, function string) *FunctionValue {
	return internal.NewFunctionValue(class, function)
}

// NewStaticFunctionValue calls a static function of class.
func NewStaticFunctionValue(class *Type, function string) *StaticFunctionValue {
	return internal.NewStaticFunctionValue(class, function)
}

// NewCastObjectValue passes objects of class target through, nil otherwise.
func NewCastObjectValue(target *Type) *CastObjectValue {
	return internal.NewCastObjectValue(target)
}

// NewContainerLengthValue produces the length of its "Container" slot.
func NewContainerLengthValue() *ContainerLengthValue {
	return internal.NewContainerLengthValue()
}

// NewFormatTextValue renders template, replacing each {name} with the slot
// of the same name. A backtick escapes the next character.
func NewFormatTextValue(template string) *FormatTextValue {
	return internal.NewFormatTextValue(template)
}

// NewSelectValue picks a branch slot depending on the "Value" slot.
func NewSelectValue(valueType *Type) *SelectValue {
	return internal.NewSelectValue(valueType)
}

// NewDestinationProperty writes its "Value Source" slot into path.
func NewDestinationProperty(path string) *DestinationProperty {
	return internal.NewDestinationProperty(path)
}

// NewDestinationFunction calls function with the values of its parameter
// slots.
func NewDestinationFunction(class *Type, function string) *DestinationFunction {
	return internal.NewDestinationFunction(class, function)
}

// Read returns the last value produced by a node as T.
func Read[T any](n ValueNode) (T, bool) {
	return types.As[T](n.Base().Cached())
}

// Between builds a converter out of a plain function.
func Between[D, S any](fn func(S) D) Converter {
	return convert.Between(fn)
}

func ParsePolicy(s string) (Policy, error) { return internal.ParsePolicy(s) }

// WithLogger names the logger of the container.
func WithLogger(name string) Option { return internal.WithLogger(name) }

// WithCycleGuard turns the protection against wiring loops on or off. It is
// on by default.
func WithCycleGuard(on bool) Option { return internal.WithCycleGuard(on) }

// WithConverter adds a converter, tried before the built-in ones.
func WithConverter(c Converter) Option { return internal.WithConverter(c) }

// WithLanguage sets the culture numbers are displayed in.
func WithLanguage(tag language.Tag) Option { return internal.WithLanguage(tag) }

func WithRegistry(r *Registry) Option { return internal.WithRegistry(r) }

// WithSourceType declares the type of the source object. Without it the
// type of the first source object is used.
func WithSourceType(t *Type) Option { return internal.WithSourceType(t) }

// WithOnTickEnabled is called when the container starts or stops needing
// updates.
func WithOnTickEnabled(fn func(bool)) Option { return internal.WithOnTickEnabled(fn) }

// ParseDocument reads a graph document.
func ParseDocument(data []byte, format DocumentFormat) (*Document, error) {
	return document.Parse(data, format)
}

// LoadDocument reads a graph document from a .yaml or .toml file.
func LoadDocument(path string) (*Document, error) {
	return document.Load(path)
}
