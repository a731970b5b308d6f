// Package trace collects the diagnostic events emitted while a scenario
// runs. The collector is an append-only, thread-safe log; the diagnostics
// summary reads its entry and error counts at the end of the run.
package trace

import (
	"fmt"
	"sync"
	"time"
)

// Severity classifies a trace entry.
type Severity string

// Trace severities, from most verbose to most serious.
const (
	SeverityDebug Severity = "debug"
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Entry is one recorded diagnostic event.
type Entry struct {
	Time     time.Time
	Severity Severity
	// Stage names the pipeline stage that emitted the entry,
	// e.g. "prerequisites", "scope", "discovery"
	Stage   string
	Message string
}

// Collector accumulates trace entries for a single run.
// All methods are safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
}

// NewCollector creates an empty trace collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends an entry at the given severity.
func (c *Collector) Record(severity Severity, stage, format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{
		Time:     time.Now(),
		Severity: severity,
		Stage:    stage,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Debug records a debug-severity entry.
func (c *Collector) Debug(stage, format string, args ...interface{}) {
	c.Record(SeverityDebug, stage, format, args...)
}

// Info records an info-severity entry.
func (c *Collector) Info(stage, format string, args ...interface{}) {
	c.Record(SeverityInfo, stage, format, args...)
}

// Warn records a warn-severity entry.
func (c *Collector) Warn(stage, format string, args ...interface{}) {
	c.Record(SeverityWarn, stage, format, args...)
}

// Error records an error-severity entry.
func (c *Collector) Error(stage, format string, args ...interface{}) {
	c.Record(SeverityError, stage, format, args...)
}

// Entries returns a copy of the recorded entries in insertion order.
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of recorded entries.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ErrorCount returns the number of error-severity entries.
func (c *Collector) ErrorCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.Severity == SeverityError {
			n++
		}
	}
	return n
}
