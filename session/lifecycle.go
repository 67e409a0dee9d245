package session

type ExecState int

const (
	NotRun ExecState = iota
	Running
	Executed
)

func (s ExecState) String() string {
	switch s {
	case Running:
		return "running"
	case Executed:
		return "executed"
	default:
		return "not_run"
	}
}

// Status is the per-response lifecycle view handed to readers.
type Status struct {
	State     ExecState `json:"-"`
	StateName string    `json:"state"`
	Executed  bool      `json:"executed"`
	Running   bool      `json:"running"`
	Confirmed bool      `json:"confirmed"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error,omitempty"`
}

type lifecycleEntry struct {
	state     ExecState
	inFlight  int
	attempts  int
	confirmed bool
	lastErr   string
}

// LifecycleTracker keeps execution and confirmation state per response turn
// id. Callers serialize access.
type LifecycleTracker struct {
	entries map[uint64]*lifecycleEntry
}

func NewLifecycleTracker() *LifecycleTracker {
	return &LifecycleTracker{entries: make(map[uint64]*lifecycleEntry)}
}

func (l *LifecycleTracker) entry(id uint64) *lifecycleEntry {
	e, ok := l.entries[id]
	if !ok {
		e = &lifecycleEntry{}
		l.entries[id] = e
	}
	return e
}

// Attempt identifies one execution started with Begin.
type Attempt struct {
	ID    uint64
	N     int
	entry *lifecycleEntry
}

// Begin records an execution attempt.
func (l *LifecycleTracker) Begin(id uint64) Attempt {
	e := l.entry(id)
	e.inFlight++
	e.attempts++
	e.state = Running
	return Attempt{ID: id, N: e.attempts, entry: e}
}

// Live reports whether a's entry survived since Begin (no Forget in between).
func (l *LifecycleTracker) Live(a Attempt) bool {
	e, ok := l.entries[a.ID]
	return ok && e == a.entry
}

// Finish resolves one in-flight attempt. The turn stays executed whether or
// not the attempt succeeded. Attempts whose entry was forgotten are ignored.
func (l *LifecycleTracker) Finish(a Attempt, err error) {
	if !l.Live(a) {
		return
	}
	e := a.entry
	if e.inFlight > 0 {
		e.inFlight--
	}
	if err != nil {
		e.lastErr = err.Error()
	} else {
		e.lastErr = ""
	}
	if e.inFlight == 0 {
		e.state = Executed
	}
}

// Confirm marks id confirmed and reports whether it was not already.
func (l *LifecycleTracker) Confirm(id uint64) bool {
	e := l.entry(id)
	if e.confirmed {
		return false
	}
	e.confirmed = true
	return true
}

func (l *LifecycleTracker) Unconfirm(id uint64) {
	if e, ok := l.entries[id]; ok {
		e.confirmed = false
	}
}

func (l *LifecycleTracker) Confirmed(id uint64) bool {
	e, ok := l.entries[id]
	return ok && e.confirmed
}

func (l *LifecycleTracker) Running(id uint64) bool {
	e, ok := l.entries[id]
	return ok && e.inFlight > 0
}

// Forget drops all state for id.
func (l *LifecycleTracker) Forget(id uint64) {
	delete(l.entries, id)
}

func (l *LifecycleTracker) Status(id uint64) Status {
	e, ok := l.entries[id]
	if !ok {
		return Status{State: NotRun, StateName: NotRun.String()}
	}
	return Status{
		State:     e.state,
		StateName: e.state.String(),
		Executed:  e.state != NotRun,
		Running:   e.inFlight > 0,
		Confirmed: e.confirmed,
		Attempts:  e.attempts,
		LastError: e.lastErr,
	}
}
