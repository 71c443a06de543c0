package capture

// State is the lifecycle state of a Device.
type State int32

const (
	Stopped State = iota
	Starting
	Running
	Paused
	Failed
	NoDevice
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Failed:
		return "failed"
	case NoDevice:
		return "no-device"
	}
	return "unknown"
}

var transitions = map[State][]State{
	Stopped:  {Starting},
	Starting: {Running, Failed, NoDevice},
	Running:  {Stopped, Paused},
	Paused:   {Running, Stopped},
	Failed:   {Stopped, Starting},
	NoDevice: {Stopped, Starting},
}

// CanTransition reports whether the state machine allows moving from s to next.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Active reports whether a capture session holds a current format.
func (s State) Active() bool {
	return s == Starting || s == Running || s == Paused
}
