package typeahead

import (
	"testing"
	"time"
)

type stubSource struct {
	added, succeeded, failed emitter[Prediction]
}

func (s *stubSource) OnPredictionAdded(fn func(Prediction)) func()     { return s.added.subscribe(fn) }
func (s *stubSource) OnPredictionSucceeded(fn func(Prediction)) func() { return s.succeeded.subscribe(fn) }
func (s *stubSource) OnPredictionFailed(fn func(Prediction)) func()    { return s.failed.subscribe(fn) }

func stubPredictions(n int) []Prediction {
	out := make([]Prediction, n)
	for i := range out {
		out[i] = NewHardBoundary()
	}
	return out
}

func TestStatsCreatesSaneData(t *testing.T) {
	src := &stubSource{}
	clock := newFakeClock()
	stats := NewStats(src, clock.Now)

	stubs := stubPredictions(5)
	for _, p := range stubs {
		src.added.fire(p)
	}
	for i, p := range stubs {
		clock.Advance(100 * time.Millisecond)
		if i%2 == 1 {
			src.failed.fire(p)
		} else {
			src.succeeded.fire(p)
		}
	}

	if got := stats.Accuracy(); got != 3.0/5.0 {
		t.Errorf("Accuracy() = %v, want 0.6", got)
	}
	if got := stats.SampleSize(); got != 5 {
		t.Errorf("SampleSize() = %d, want 5", got)
	}
	want := LatencyStats{
		Count:  3,
		Min:    100 * time.Millisecond,
		Max:    500 * time.Millisecond,
		Median: 300 * time.Millisecond,
	}
	if got := stats.Latency(); got != want {
		t.Errorf("Latency() = %+v, want %+v", got, want)
	}
	if got := stats.MaxLatency(); got != 500*time.Millisecond {
		t.Errorf("MaxLatency() = %s, want 500ms", got)
	}
}

func TestStatsCircularBuffer(t *testing.T) {
	src := &stubSource{}
	stats := NewStats(src, nil)
	stubs := stubPredictions(statsBufferSize * 2)

	for _, p := range stubs[:statsBufferSize] {
		src.added.fire(p)
		src.succeeded.fire(p)
	}
	if got := stats.Accuracy(); got != 1 {
		t.Fatalf("Accuracy() = %v, want 1", got)
	}

	for _, p := range stubs[statsBufferSize : statsBufferSize*3/2] {
		src.added.fire(p)
		src.failed.fire(p)
	}
	if got := stats.Accuracy(); got != 0.5 {
		t.Fatalf("Accuracy() = %v, want 0.5", got)
	}

	for _, p := range stubs[statsBufferSize*3/2:] {
		src.added.fire(p)
		src.failed.fire(p)
	}
	if got := stats.Accuracy(); got != 0 {
		t.Fatalf("Accuracy() = %v, want 0", got)
	}
	if got := stats.SampleSize(); got != statsBufferSize {
		t.Fatalf("SampleSize() = %d, want %d", got, statsBufferSize)
	}
}

func TestStatsEmpty(t *testing.T) {
	stats := NewStats(&stubSource{}, nil)
	if stats.Accuracy() != 0 || stats.SampleSize() != 0 {
		t.Fatalf("empty stats: accuracy %v, size %d", stats.Accuracy(), stats.SampleSize())
	}
	if got := stats.Latency(); got != (LatencyStats{}) {
		t.Fatalf("empty latency = %+v", got)
	}
}

func TestStatsEvenMedianAverages(t *testing.T) {
	src := &stubSource{}
	clock := newFakeClock()
	stats := NewStats(src, clock.Now)

	for _, d := range []time.Duration{10, 20, 40, 80} {
		p := NewHardBoundary()
		src.added.fire(p)
		clock.Advance(d * time.Millisecond)
		src.succeeded.fire(p)
	}
	if got := stats.Latency().Median; got != 30*time.Millisecond {
		t.Fatalf("Median = %s, want 30ms", got)
	}
}

func TestStatsCloseUnsubscribes(t *testing.T) {
	src := &stubSource{}
	stats := NewStats(src, nil)
	changes := 0
	stats.OnChange(func() { changes++ })

	p := NewHardBoundary()
	src.added.fire(p)
	src.succeeded.fire(p)
	stats.Close()
	src.failed.fire(NewHardBoundary())

	if changes != 1 {
		t.Fatalf("OnChange fired %d times, want 1", changes)
	}
	if src.added.len()+src.succeeded.len()+src.failed.len() != 0 {
		t.Fatal("Close left subscriptions behind")
	}
}
