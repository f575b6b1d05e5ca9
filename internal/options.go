package internal

import (
	"golang.org/x/text/language"

	"github.com/AnatoleLucet/bind/internal/convert"
	"github.com/AnatoleLucet/bind/internal/types"
)

type Options struct {
	// name of the container's logger
	Logger string
	// refuse to re-enter a node already being evaluated
	CycleGuard bool
	// converters tried before the built-in ones
	Converters []convert.Converter
	// culture of display text
	Language language.Tag
	Registry *types.Registry
	// declared type of the source object
	SourceType *types.Type
	// called when the container starts or stops wanting ticks
	OnTickEnabled func(bool)
}

type Option func(*Options)

func DefaultOptions() Options {
	return Options{
		Logger:     "bind.container",
		CycleGuard: true,
		Language:   language.English,
	}
}

func WithLogger(name string) Option {
	return func(o *Options) { o.Logger = name }
}

func WithCycleGuard(on bool) Option {
	return func(o *Options) { o.CycleGuard = on }
}

func WithConverter(c convert.Converter) Option {
	return func(o *Options) { o.Converters = append(o.Converters, c) }
}

func WithLanguage(tag language.Tag) Option {
	return func(o *Options) { o.Language = tag }
}

func WithRegistry(r *types.Registry) Option {
	return func(o *Options) { o.Registry = r }
}

func WithSourceType(t *types.Type) Option {
	return func(o *Options) { o.SourceType = t }
}

func WithOnTickEnabled(fn func(bool)) Option {
	return func(o *Options) { o.OnTickEnabled = fn }
}
