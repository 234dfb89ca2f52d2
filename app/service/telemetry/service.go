package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/do"
)

const bufferSize = 256

var _ do.Shutdownable = (*Service)(nil)

// Stat is one exchange observation fed into the accumulator.
type Stat struct {
	SessionID string
	Severity  string
	LatencyMs int64
	Emergency bool
	FastPath  bool
	Failed    bool
}

type Snapshot struct {
	Exchanges    int64            `json:"exchanges"`
	BySeverity   map[string]int64 `json:"by_severity"`
	Emergencies  int64            `json:"emergencies"`
	FastPathHits int64            `json:"fast_path_hits"`
	Failures     int64            `json:"failures"`
	AvgLatencyMs int64            `json:"avg_latency_ms"`
}

// Service aggregates exchange stats off the request path. Record never
// blocks: when the buffer is full the observation is dropped and
// logged, a stream in flight must not stall on bookkeeping.
type Service struct {
	queue chan Stat

	mu           sync.RWMutex
	exchanges    int64
	bySeverity   map[string]int64
	emergencies  int64
	fastPathHits int64
	failures     int64
	totalLatency int64
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue:      make(chan Stat, bufferSize),
		bySeverity: map[string]int64{},
	}, nil
}

func (s *Service) Record(stat Stat) {
	defer func() {
		if r := recover(); r != nil {
			// Shutdown closed the channel mid-send.
		}
	}()

	select {
	case s.queue <- stat:
	default:
		slog.Warn("telemetry queue is full")
	}
}

func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case stat, ok := <-s.queue:
			if !ok {
				return
			}

			s.apply(stat)
		}
	}
}

func (s *Service) apply(stat Stat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exchanges++
	s.totalLatency += stat.LatencyMs

	if stat.Severity != "" {
		s.bySeverity[stat.Severity]++
	}
	if stat.Emergency {
		s.emergencies++
	}
	if stat.FastPath {
		s.fastPathHits++
	}
	if stat.Failed {
		s.failures++
	}
}

func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bySeverity := make(map[string]int64, len(s.bySeverity))
	for severity, count := range s.bySeverity {
		bySeverity[severity] = count
	}

	snapshot := Snapshot{
		Exchanges:    s.exchanges,
		BySeverity:   bySeverity,
		Emergencies:  s.emergencies,
		FastPathHits: s.fastPathHits,
		Failures:     s.failures,
	}

	if s.exchanges > 0 {
		snapshot.AvgLatencyMs = s.totalLatency / s.exchanges
	}

	return snapshot
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}
