// Package metrics exposes Prometheus instrumentation for the logtree engine.
// Collectors register on the default registry via promauto, so an embedding
// application that already serves promhttp picks them up with no extra wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const _subsystem = "logtree"

var (
	// RecordsEmitted counts records accepted by the registry filter,
	// partitioned by severity.
	RecordsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: _subsystem,
		Name:      "records_emitted_total",
		Help:      "Log records that passed level resolution and were dispatched.",
	}, []string{"level"})

	// RecordsFiltered counts log calls rejected on the level fast path.
	RecordsFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: _subsystem,
		Name:      "records_filtered_total",
		Help:      "Log calls dropped because the effective logger level was not met.",
	})

	// AppenderErrors counts contained appender write/rotate failures.
	AppenderErrors = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: _subsystem,
		Name:      "appender_errors_total",
		Help:      "Appender failures contained by the dispatcher.",
	})

	// Rotations counts completed daily rotations.
	Rotations = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: _subsystem,
		Name:      "rotations_total",
		Help:      "Completed log file rotations.",
	})

	// RotationFailures counts rotation attempts that fell back to the old file.
	RotationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: _subsystem,
		Name:      "rotation_failures_total",
		Help:      "Rotation attempts that failed and fell back to the open file.",
	})

	// BackupsEvicted counts backup files deleted by retention.
	BackupsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: _subsystem,
		Name:      "backups_evicted_total",
		Help:      "Backup log files deleted once the retention limit was exceeded.",
	})
)
