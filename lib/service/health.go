package service

import "sync"

type healthState struct {
	mu       sync.Mutex
	degraded bool
	cause    error
}

func (h *healthState) setDegraded(err error) {
	h.mu.Lock()
	h.degraded = true
	h.cause = err
	h.mu.Unlock()
}

func (h *healthState) status() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.degraded, h.cause
}

type RelayStatus struct {
	Uri       string `json:"uri"`
	State     string `json:"state"`
	Forwarded int64  `json:"forwarded"`
	LastError string `json:"last_error,omitempty"`
}

type IngestionStatus struct {
	Accepted     int64 `json:"accepted"`
	Duplicates   int64 `json:"duplicates"`
	Filtered     int64 `json:"filtered"`
	Malformed    int64 `json:"malformed"`
	IdMismatches int64 `json:"id_mismatches"`
	BadSigs      int64 `json:"bad_signatures"`
	Conflicts    int64 `json:"conflicts"`
}

type HealthStatus struct {
	Degraded  bool            `json:"degraded"`
	Cause     string          `json:"cause,omitempty"`
	Relays    []RelayStatus   `json:"relays"`
	Ingestion IngestionStatus `json:"ingestion"`
}

// Health snapshots the engine: per-relay connection state plus ingestion
// counters. Degraded means the store rejected writes and the pipeline
// stopped; reads keep being served.
func (svc *ChestService) Health() HealthStatus {
	degraded, cause := svc.health.status()
	status := HealthStatus{
		Degraded: degraded,
		Relays:   []RelayStatus{},
		Ingestion: IngestionStatus{
			Accepted:     svc.counters.accepted.Load(),
			Duplicates:   svc.counters.duplicates.Load(),
			Filtered:     svc.counters.filtered.Load(),
			Malformed:    svc.counters.malformed.Load(),
			IdMismatches: svc.counters.idMismatches.Load(),
			BadSigs:      svc.counters.badSigs.Load(),
			Conflicts:    svc.counters.conflicts.Load(),
		},
	}
	if cause != nil {
		status.Cause = cause.Error()
	}
	for _, unit := range svc.relays {
		rs := RelayStatus{
			Uri:       unit.Uri,
			State:     unit.State().String(),
			Forwarded: unit.Forwarded(),
		}
		if err := unit.LastError(); err != nil {
			rs.LastError = err.Error()
		}
		status.Relays = append(status.Relays, rs)
	}
	return status
}
