package tenant

import "time"

// Settings floors enforced regardless of configuration
const (
	MinWorkerInterval  = 5 * time.Second
	MinWorkerBatchSize = 1
)

// QueueSettings is the effective synchronization configuration for one
// tenant, produced by merging tenant overrides over process defaults. It is
// a value computed fresh at the moment of use and never cached, so override
// changes in the directory are visible immediately.
type QueueSettings struct {
	EnableQueueMode        bool
	EnableBackgroundWorker bool
	WorkerIntervalSeconds  int
	WorkerBatchSize        int
	UseMiddleware          bool
	DefaultPartner         string
}

// Merge returns the effective settings for t: every tenant override that is
// set wins over the receiver's value. A nil tenant returns the defaults
// unchanged.
func (s QueueSettings) Merge(t *Tenant) QueueSettings {
	if t == nil {
		return s
	}
	eff := s
	if t.EnableQueueMode != nil {
		eff.EnableQueueMode = *t.EnableQueueMode
	}
	if t.EnableBackgroundWorker != nil {
		eff.EnableBackgroundWorker = *t.EnableBackgroundWorker
	}
	if t.WorkerIntervalSeconds != nil {
		eff.WorkerIntervalSeconds = *t.WorkerIntervalSeconds
	}
	if t.WorkerBatchSize != nil {
		eff.WorkerBatchSize = *t.WorkerBatchSize
	}
	if t.DefaultPartner != nil {
		eff.DefaultPartner = *t.DefaultPartner
	}
	if t.UseMiddleware != nil {
		eff.UseMiddleware = *t.UseMiddleware
	}
	return eff
}

// Interval returns the worker poll interval with the 5s floor applied
func (s QueueSettings) Interval() time.Duration {
	d := time.Duration(s.WorkerIntervalSeconds) * time.Second
	if d < MinWorkerInterval {
		return MinWorkerInterval
	}
	return d
}

// BatchSize returns the worker batch size with the minimum applied
func (s QueueSettings) BatchSize() int {
	if s.WorkerBatchSize < MinWorkerBatchSize {
		return MinWorkerBatchSize
	}
	return s.WorkerBatchSize
}
