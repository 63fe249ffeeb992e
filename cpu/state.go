package cpu

// StateKind is the execution state of the processor.
type StateKind int

//go:generate go tool stringer -linecomment -type=StateKind,Pause,InputKind
const (
	STATE_RUNNING = StateKind(0) // running
	STATE_PAUSED  = StateKind(1) // paused
	STATE_WAITING = StateKind(2) // waiting for input
	STATE_STOPPED = StateKind(3) // stopped
	STATE_FAULT   = StateKind(4) // fault
)

// Pause is the reason execution paused.
type Pause int

const (
	PAUSE_NONE       = Pause(0) // none
	PAUSE_EBREAK     = Pause(1) // ebreak
	PAUSE_BREAKPOINT = Pause(2) // breakpoint
	PAUSE_INTERRUPT  = Pause(3) // interrupt
)

// InputKind is the kind of value an input syscall waits for.
type InputKind int

const (
	INPUT_NONE   = InputKind(0) // none
	INPUT_INT    = InputKind(1) // int
	INPUT_STRING = InputKind(2) // string
	INPUT_CHAR   = InputKind(3) // char
)

// EXIT_STOPPED is the exit code of a program ended by Stop.
const EXIT_STOPPED = -1

// State is the processor state after a cycle.
type State struct {
	Kind     StateKind
	Pause    Pause     // Set when Kind is STATE_PAUSED.
	Input    InputKind // Set when Kind is STATE_WAITING.
	ExitCode int32     // Set when Kind is STATE_STOPPED.
}

func Running() State {
	return State{Kind: STATE_RUNNING}
}

func Paused(pause Pause) State {
	return State{Kind: STATE_PAUSED, Pause: pause}
}

func Waiting(input InputKind) State {
	return State{Kind: STATE_WAITING, Input: input}
}

func Stopped(code int32) State {
	return State{Kind: STATE_STOPPED, ExitCode: code}
}

func Faulted() State {
	return State{Kind: STATE_FAULT}
}

// Done is true when no further cycles can execute without a Reset.
func (state State) Done() bool {
	return state.Kind == STATE_STOPPED || state.Kind == STATE_FAULT
}

func (state State) String() string {
	switch state.Kind {
	case STATE_PAUSED:
		return f("%v (%v)", state.Kind, state.Pause)
	case STATE_WAITING:
		return f("%v (%v)", state.Kind, state.Input)
	case STATE_STOPPED:
		return f("%v (exit %d)", state.Kind, state.ExitCode)
	}
	return state.Kind.String()
}
