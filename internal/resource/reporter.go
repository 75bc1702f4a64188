// Package resource periodically samples the current process's CPU and
// memory usage and publishes them as metrics gauges. There is no
// cgroup-limit concept in this domain, so no admission-control thresholds
// are computed here, only the raw sampled values.
package resource

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/adred-codev/adwatch/internal/metrics"
)

const sampleInterval = 15 * time.Second

// Reporter owns the sampling goroutine.
type Reporter struct {
	proc    *process.Process
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New constructs a Reporter bound to the current OS process.
func New(m *metrics.Metrics, logger zerolog.Logger) (*Reporter, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Reporter{proc: proc, metrics: m, logger: logger.With().Str("component", "resource_reporter").Logger()}, nil
}

// Run samples every sampleInterval until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) {
	r.sample()

	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sample()
		}
	}
}

func (r *Reporter) sample() {
	if cpuPercent, err := r.proc.CPUPercent(); err == nil {
		r.metrics.ProcessCPUPercent.Set(cpuPercent)
	} else {
		r.logger.Debug().Err(err).Msg("failed to sample process cpu percent")
	}

	if memInfo, err := r.proc.MemoryInfo(); err == nil && memInfo != nil {
		r.metrics.ProcessRSSBytes.Set(float64(memInfo.RSS))
	} else {
		r.logger.Debug().Err(err).Msg("failed to sample process memory info")
	}
}
