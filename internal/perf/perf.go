package perf

import (
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andyrewlee/typeahead/internal/logging"
)

const (
	sampleWindow      = 256
	defaultIntervalMs = 5000
)

// series is a running duration stat with a window of recent samples for the
// p95.
type series struct {
	count   int64
	total   time.Duration
	min     time.Duration
	max     time.Duration
	samples []time.Duration
	next    int
	full    bool
}

func (s *series) add(d time.Duration) {
	s.count++
	s.total += d
	if s.count == 1 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
	if s.samples == nil {
		s.samples = make([]time.Duration, sampleWindow)
	}
	s.samples[s.next] = d
	s.next++
	if s.next == len(s.samples) {
		s.next = 0
		s.full = true
	}
}

func (s *series) window() []time.Duration {
	if s.full {
		return s.samples
	}
	return s.samples[:s.next]
}

type registry struct {
	mu       sync.Mutex
	series   map[string]*series
	counters map[string]int64
}

var (
	enabled     atomic.Bool
	logInterval atomic.Int64
	lastLog     atomic.Int64

	reg = registry{series: map[string]*series{}, counters: map[string]int64{}}
)

func init() {
	enabled.Store(isEnabled())
	logInterval.Store(int64(defaultLogInterval()))
}

// Enabled reports whether profiling is enabled.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns collection on or off at runtime.
func SetEnabled(on bool) { enabled.Store(on) }

// Time returns a function that records elapsed time when invoked.
func Time(name string) func() {
	if !Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() { Record(name, time.Since(start)) }
}

// Record captures a duration sample for the given name.
func Record(name string, d time.Duration) {
	if !Enabled() {
		return
	}
	reg.mu.Lock()
	s, ok := reg.series[name]
	if !ok {
		s = &series{}
		reg.series[name] = s
	}
	s.add(d)
	reg.mu.Unlock()

	maybeLog()
}

// Count increments a named counter by delta.
func Count(name string, delta int64) {
	if !Enabled() {
		return
	}
	reg.mu.Lock()
	reg.counters[name] += delta
	reg.mu.Unlock()

	maybeLog()
}

func maybeLog() {
	interval := time.Duration(logInterval.Load())
	if interval <= 0 {
		return
	}
	now := time.Now().UnixNano()
	last := lastLog.Load()
	if last != 0 && time.Duration(now-last) < interval {
		return
	}
	if !lastLog.CompareAndSwap(last, now) {
		return
	}
	emit("PERF")
}

// Flush logs a summary of current stats and counters immediately. A
// non-empty reason is added to the prefix.
func Flush(reason string) {
	if !Enabled() {
		return
	}
	prefix := "PERF SUMMARY"
	if reason = strings.TrimSpace(reason); reason != "" {
		prefix += " " + reason
	}
	emit(prefix)
}

func emit(prefix string) {
	stats, counters := Snapshot()
	for _, s := range stats {
		logging.Info("%s %s count=%d avg=%s p95=%s min=%s max=%s",
			prefix, s.Name, s.Count, s.Avg, s.P95, s.Min, s.Max)
	}
	for _, c := range counters {
		logging.Info("%s %s count=%d", prefix, c.Name, c.Value)
	}
}

// StatSnapshot summarizes one duration series.
type StatSnapshot struct {
	Name  string
	Count int64
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	P95   time.Duration
}

// CounterSnapshot is one counter value.
type CounterSnapshot struct {
	Name  string
	Value int64
}

// Snapshot returns current stats and counters sorted by name, and resets
// them.
func Snapshot() ([]StatSnapshot, []CounterSnapshot) {
	reg.mu.Lock()
	all, counters := reg.series, reg.counters
	reg.series = map[string]*series{}
	reg.counters = map[string]int64{}
	reg.mu.Unlock()

	stats := make([]StatSnapshot, 0, len(all))
	for name, s := range all {
		if s.count == 0 {
			continue
		}
		stats = append(stats, StatSnapshot{
			Name:  name,
			Count: s.count,
			Avg:   time.Duration(int64(s.total) / s.count),
			Min:   s.min,
			Max:   s.max,
			P95:   p95(s.window()),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })

	out := make([]CounterSnapshot, 0, len(counters))
	for name, v := range counters {
		if v != 0 {
			out = append(out, CounterSnapshot{Name: name, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return stats, out
}

func p95(samples []time.Duration) time.Duration {
	n := len(samples)
	if n == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	pos := int(math.Ceil(0.95*float64(n))) - 1
	return sorted[max(0, min(pos, n-1))]
}

func isEnabled() bool {
	raw := strings.TrimSpace(os.Getenv("TYPEAHEAD_PROFILE"))
	switch strings.ToLower(raw) {
	case "", "0", "false", "no":
		return false
	default:
		return true
	}
}

func defaultLogInterval() time.Duration {
	interval := defaultIntervalMs
	if raw := strings.TrimSpace(os.Getenv("TYPEAHEAD_PROFILE_INTERVAL_MS")); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 {
			interval = val
		}
	}
	return time.Duration(interval) * time.Millisecond
}
