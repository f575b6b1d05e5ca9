package internal

// flags represents the lifecycle state of a binding node
type flags uint8

const (
	flagNone        flags = 0
	flagInitialized flags = 1 << iota // Initialize ran
	flagTerminated                    // Terminate ran
	flagProduced                      // produced a value or updated its destination at least once
	flagHasValue                      // produced a non-null value at least once
	flagDirty                         // marked by an event source, cleared by the next evaluation
)

func (f flags) has(flag flags) bool {
	return f&flag != 0
}

func (f *flags) set(flag flags) {
	*f |= flag
}

func (f *flags) clear(flag flags) {
	*f &^= flag
}
