package web

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spigell/resume-optimizer/internal/report"
)

// reportStore keeps the most recent reports for download. The oldest entry is
// evicted once limit is reached.
type reportStore struct {
	mu      sync.Mutex
	limit   int
	order   []uuid.UUID
	reports map[uuid.UUID]*report.Report
}

func newReportStore(limit int) *reportStore {
	return &reportStore{
		limit:   limit,
		reports: make(map[uuid.UUID]*report.Report, limit),
	}
}

func (s *reportStore) put(r *report.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.reports[r.ID] = r

	for len(s.order) > s.limit {
		delete(s.reports, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *reportStore) get(id uuid.UUID) (*report.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[id]
	return r, ok
}

func (s *reportStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.reports)
}
