package typeahead

import (
	"sort"
	"time"
)

const (
	statsBufferSize = 24
	staleAfter      = time.Minute
)

// Sample is one resolved prediction.
type Sample struct {
	Latency time.Duration
	Success bool
}

// LatencyStats aggregates the latency of successful predictions.
type LatencyStats struct {
	Count  int
	Min    time.Duration
	Max    time.Duration
	Median time.Duration
}

// Source is the set of prediction lifecycle events Stats listens to.
type Source interface {
	OnPredictionAdded(func(Prediction)) func()
	OnPredictionSucceeded(func(Prediction)) func()
	OnPredictionFailed(func(Prediction)) func()
}

// Stats keeps the outcome of the most recent predictions in a ring buffer.
type Stats struct {
	now     func() time.Time
	samples []Sample
	index   int
	addedAt map[Prediction]time.Time
	change  emitter[struct{}]
	unsubs  []func()
}

// NewStats subscribes to src. A nil clock uses time.Now.
func NewStats(src Source, clock func() time.Time) *Stats {
	if clock == nil {
		clock = time.Now
	}
	s := &Stats{
		now:     clock,
		samples: make([]Sample, 0, statsBufferSize),
		addedAt: make(map[Prediction]time.Time),
	}
	s.unsubs = []func(){
		src.OnPredictionAdded(func(p Prediction) { s.addedAt[p] = s.now() }),
		src.OnPredictionSucceeded(func(p Prediction) { s.push(p, true) }),
		src.OnPredictionFailed(func(p Prediction) { s.push(p, false) }),
	}
	return s
}

// Close unsubscribes from the source.
func (s *Stats) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.addedAt = make(map[Prediction]time.Time)
}

// OnChange is called after every recorded sample.
func (s *Stats) OnChange(fn func()) func() {
	return s.change.subscribe(func(struct{}) { fn() })
}

func (s *Stats) push(p Prediction, success bool) {
	started, ok := s.addedAt[p]
	if !ok {
		started = s.now()
	}
	delete(s.addedAt, p)
	now := s.now()
	// superseded predictions never resolve
	for q, at := range s.addedAt {
		if now.Sub(at) > staleAfter {
			delete(s.addedAt, q)
		}
	}

	sample := Sample{Latency: now.Sub(started), Success: success}
	if len(s.samples) < statsBufferSize {
		s.samples = append(s.samples, sample)
	} else {
		s.samples[s.index] = sample
	}
	s.index = (s.index + 1) % statsBufferSize
	s.change.fire(struct{}{})
}

// SampleSize returns how many samples are buffered.
func (s *Stats) SampleSize() int { return len(s.samples) }

// Accuracy is the share of buffered samples that succeeded, 0 when empty.
func (s *Stats) Accuracy() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	ok := 0
	for _, sample := range s.samples {
		if sample.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(s.samples))
}

// Latency summarizes successful samples only.
func (s *Stats) Latency() LatencyStats {
	latencies := s.successLatencies()
	n := len(latencies)
	if n == 0 {
		return LatencyStats{}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	median := latencies[n/2]
	if n%2 == 0 {
		median = (latencies[n/2-1] + latencies[n/2]) / 2
	}
	return LatencyStats{
		Count:  n,
		Min:    latencies[0],
		Max:    latencies[n-1],
		Median: median,
	}
}

// MaxLatency returns the slowest successful sample, 0 when there is none.
func (s *Stats) MaxLatency() time.Duration {
	var max time.Duration
	for _, sample := range s.samples {
		if sample.Success && sample.Latency > max {
			max = sample.Latency
		}
	}
	return max
}

func (s *Stats) successLatencies() []time.Duration {
	out := make([]time.Duration, 0, len(s.samples))
	for _, sample := range s.samples {
		if sample.Success {
			out = append(out, sample.Latency)
		}
	}
	return out
}
