package prescription

import (
	"strconv"
	"sync"
	"time"
)

// IDSource hands out medicine entry ids derived from the wall clock in unix
// milliseconds. Ids are strictly increasing even when two calls land in the
// same millisecond or the clock steps back.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

func (s *IDSource) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.now().UnixMilli()
	if v <= s.last {
		v = s.last + 1
	}
	s.last = v
	return strconv.FormatInt(v, 10)
}
