package internal

// Scheduler paces the update passes of a container and tracks whether the
// container wants to be ticked.
type Scheduler struct {
	// incremented each time an update pass completes
	clock int

	running bool

	// whether any instance wants a tick, reported through onChange
	enabled  bool
	onChange func(bool)
}

func NewScheduler(onChange func(bool)) *Scheduler {
	return &Scheduler{
		clock:    0,
		running:  false,
		enabled:  false,
		onChange: onChange,
	}
}

// Run runs one pass. Passes started from within a pass are refused.
func (s *Scheduler) Run(fn func()) bool {
	if s.running {
		log.Warningf("update pass requested while one is running, ignored")
		return false
	}

	s.running = true
	defer func() {
		s.clock++
		s.running = false
	}()

	fn()
	return true
}

func (s *Scheduler) Running() bool { return s.running }

func (s *Scheduler) Time() int {
	return s.clock
}

// SetEnabled records whether ticking is wanted, notifying on change.
func (s *Scheduler) SetEnabled(enabled bool) {
	if s.enabled == enabled {
		return
	}
	s.enabled = enabled
	if s.onChange != nil {
		s.onChange(enabled)
	}
}

func (s *Scheduler) Enabled() bool { return s.enabled }
