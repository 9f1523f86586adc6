package status

import (
	"fmt"
	"io"
	"sync"
)

type Record struct {
	Type    int
	Message string
}

func (r Record) String() string {
	return r.Message
}

type Listener interface {
	Log(r Record)
}

type ListenerFunc func(r Record)

func (f ListenerFunc) Log(r Record) { f(r) }

// Logger keeps ordered export messages and overall status of the export.
// Status never decreases: INFO < WARNING < ERROR.
type Logger struct {
	lock      sync.Mutex
	records   []Record
	status    int
	listeners []*listenerEntry
}

// listenerEntry identifies one registration, listeners themselves may be
// uncomparable func values
type listenerEntry struct {
	Listener
}

func NewLogger(listeners ...Listener) *Logger {
	l := &Logger{}
	for _, li := range listeners {
		l.AddListener(li)
	}
	return l
}

// AddListener subscribes li to new records. The returned func unsubscribes
// this registration and is safe to call more than once.
func (l *Logger) AddListener(li Listener) (remove func()) {
	entry := &listenerEntry{li}
	l.lock.Lock()
	defer l.lock.Unlock()
	l.listeners = append(l.listeners, entry)
	return func() {
		l.lock.Lock()
		defer l.lock.Unlock()
		for i, other := range l.listeners {
			if other == entry {
				l.listeners = append(l.listeners[:i:i], l.listeners[i+1:]...)
				return
			}
		}
	}
}

func (l *Logger) log(_type int, msg string) {
	l.lock.Lock()
	r := Record{Type: _type, Message: msg}
	l.records = append(l.records, r)
	if _type > l.status && _type <= ERROR {
		l.status = _type
	}
	listeners := append([]*listenerEntry(nil), l.listeners...)
	l.lock.Unlock()

	for _, li := range listeners {
		li.Log(r)
	}
}

func (l *Logger) Info(format string, a ...interface{}) {
	l.log(INFO, fmt.Sprintf(format, a...))
}

func (l *Logger) Warning(format string, a ...interface{}) {
	l.log(WARNING, "Warning: "+fmt.Sprintf(format, a...))
}

func (l *Logger) Error(format string, a ...interface{}) {
	l.log(ERROR, "Error: "+fmt.Sprintf(format, a...))
}

func (l *Logger) Status() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.status
}

func (l *Logger) Records() []Record {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]Record(nil), l.records...)
}

// WriteTo writes messages one per line
func (l *Logger) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, r := range l.Records() {
		n, err := fmt.Fprintln(w, r.Message)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func StatusName(_type int) string {
	switch _type {
	case INFO:
		return "info"
	case WARNING:
		return "warning"
	case ERROR:
		return "error"
	case PROGRESS:
		return "progress"
	}
	return fmt.Sprintf("status(%d)", _type)
}
