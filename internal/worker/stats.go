package worker

import "sync/atomic"

type Stats struct {
	runs     atomic.Int64
	failures atomic.Int64
	swept    atomic.Int64
}

type StatsSnapshot struct {
	Runs     int64 `json:"runs"`
	Failures int64 `json:"failures"`
	Swept    int64 `json:"swept"`
}

func (s *Stats) recordSuccess(n int64) {
	s.runs.Add(1)
	s.swept.Add(n)
}

func (s *Stats) recordFailure() {
	s.runs.Add(1)
	s.failures.Add(1)
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Runs:     s.runs.Load(),
		Failures: s.failures.Load(),
		Swept:    s.swept.Load(),
	}
}
