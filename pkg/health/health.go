// Package health provides Kubernetes-style liveness and readiness probes.
//
// Each registered probe runs periodically in its own goroutine. A probe
// flips to unhealthy only after failing consecutively a threshold number of
// times, which keeps a single slow database round-trip from bouncing the
// pod out of rotation.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports the health of one component: nil means healthy.
type CheckFunc func(ctx context.Context) error

const (
	failureThreshold = 3
	successThreshold = 1
)

// probe holds one check and its runtime state. tick() runs on a single
// goroutine, so the consecutive counters need no synchronization; healthy
// and lastErr are read by HTTP handlers and use atomics.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	fails int
	oks   int
}

func (p *probe) tick(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(checkCtx)
	p.lastErr.Store(&err)

	if err != nil {
		p.oks = 0
		if p.fails++; p.fails >= failureThreshold {
			p.healthy.Store(false)
		}
		return
	}
	p.fails = 0
	if p.oks++; p.oks >= successThreshold {
		p.healthy.Store(true)
	}
}

func (p *probe) failure() (string, bool) {
	if p.healthy.Load() {
		return "", false
	}
	if e := p.lastErr.Load(); e != nil && *e != nil {
		return (*e).Error(), true
	}
	return "check is unhealthy", true
}

// Service manages liveness and readiness probes. The zero value is not
// usable; call New.
type Service struct {
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New creates a Service. It starts not-ready; call SetReady(true) once
// initialization completes.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a liveness probe (is the process functioning).
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	s.add(&s.liveness, name, timeout, check)
}

// AddReadinessCheck registers a readiness probe (can the service take traffic).
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	s.add(&s.readiness, name, timeout, check)
}

func (s *Service) add(dst *[]*probe, name string, timeout time.Duration, check CheckFunc) {
	p := &probe{name: name, timeout: timeout, check: check}
	p.healthy.Store(true) // assume healthy until proven otherwise

	s.mu.Lock()
	*dst = append(*dst, p)
	s.mu.Unlock()
}

// Start launches one goroutine per registered probe, each running at the
// given interval until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	probes := append(append([]*probe{}, s.liveness...), s.readiness...)
	s.mu.Unlock()

	for _, p := range probes {
		go func(p *probe) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			p.tick(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.tick(ctx)
				}
			}
		}(p)
	}
}

// Stop cancels all probe goroutines. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate: true after initialization,
// false while draining during shutdown.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while all liveness probes pass, else 503
// with per-probe failure details.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, s.failures(false))
}

// ReadyEndpoint serves /readyz: 200 only when the service is marked ready
// and every readiness probe passes.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := s.failures(true)
	if !s.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	s.respond(w, failures)
}

func (s *Service) failures(readiness bool) map[string]string {
	s.mu.Lock()
	src := s.liveness
	if readiness {
		src = s.readiness
	}
	snapshot := append([]*probe{}, src...)
	s.mu.Unlock()

	failures := make(map[string]string)
	for _, p := range snapshot {
		if msg, failed := p.failure(); failed {
			failures[p.name] = msg
		}
	}
	return failures
}

func (s *Service) respond(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	status := http.StatusOK
	if len(failures) > 0 {
		resp = statusResponse{Status: "unhealthy", Checks: failures}
		status = http.StatusServiceUnavailable
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
