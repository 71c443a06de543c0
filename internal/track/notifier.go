package track

// Observer is notified when a property of a track changes.
type Observer interface {
	OnChanged()
}

type funcObserver struct {
	fn func()
}

func (o *funcObserver) OnChanged() {
	o.fn()
}

// NewObserver adapts a function. Each call returns a distinct Observer.
func NewObserver(fn func()) Observer {
	return &funcObserver{fn: fn}
}

// Notifier keeps a list of observers. Observers must be comparable.
type Notifier struct {
	observers []Observer
}

// RegisterObserver adds o. Registering the same observer twice has no effect.
func (n *Notifier) RegisterObserver(o Observer) {
	for _, x := range n.observers {
		if x == o {
			return
		}
	}
	n.observers = append(n.observers, o)
}

func (n *Notifier) UnregisterObserver(o Observer) {
	for i, x := range n.observers {
		if x == o {
			n.observers = append(n.observers[:i:i], n.observers[i+1:]...)
			return
		}
	}
}

// FireOnChanged notifies the observers registered when it was called.
func (n *Notifier) FireOnChanged() {
	for _, o := range n.observers {
		o.OnChanged()
	}
}
