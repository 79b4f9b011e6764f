package contracts

import (
	"fmt"
	"sync"
	"time"
)

// LogSink receives progress messages from pipeline stages.
// Stages never write to a global logger; the caller owns the sink.
type LogSink interface {
	Log(msg string)
}

// LogFunc adapts a plain function to LogSink.
type LogFunc func(msg string)

// Log implements LogSink
func (f LogFunc) Log(msg string) {
	if f != nil {
		f(msg)
	}
}

// Discard is a sink that drops every message.
var Discard LogSink = LogFunc(nil)

// Logf formats and forwards to sink, tolerating a nil sink.
func Logf(sink LogSink, format string, args ...any) {
	if sink == nil {
		return
	}
	sink.Log(fmt.Sprintf(format, args...))
}

// LogEntry is one line of a RunLog.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
}

// RunLog is an append-only, goroutine-safe log owned by one pipeline run.
type RunLog struct {
	mu      sync.Mutex
	entries []LogEntry
	now     func() time.Time
	tee     LogSink
}

// NewRunLog creates an empty run log. tee, if non-nil, also receives every line.
func NewRunLog(tee LogSink) *RunLog {
	return &RunLog{now: time.Now, tee: tee}
}

// Log implements LogSink
func (l *RunLog) Log(msg string) {
	l.append("", msg)
}

// Sink returns a LogSink that tags messages with a stock code.
func (l *RunLog) Sink(code string) LogSink {
	return LogFunc(func(msg string) {
		l.append(code, msg)
	})
}

func (l *RunLog) append(code, msg string) {
	l.mu.Lock()
	l.entries = append(l.entries, LogEntry{Time: l.now(), Code: code, Message: msg})
	l.mu.Unlock()

	if l.tee != nil {
		if code != "" {
			l.tee.Log("[" + code + "] " + msg)
		} else {
			l.tee.Log(msg)
		}
	}
}

// Entries returns a copy of every line logged so far.
func (l *RunLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Lines returns the log as display strings ("15:04:05 [code] msg").
func (l *RunLog) Lines() []string {
	entries := l.Entries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Code != "" {
			lines = append(lines, fmt.Sprintf("%s [%s] %s", e.Time.Format("15:04:05"), e.Code, e.Message))
		} else {
			lines = append(lines, fmt.Sprintf("%s %s", e.Time.Format("15:04:05"), e.Message))
		}
	}
	return lines
}
