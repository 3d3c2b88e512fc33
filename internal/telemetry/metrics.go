package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var ToolCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "toolfleet",
		Subsystem: "tools",
		Name:      "calls_total",
		Help:      "Total number of tool invocations by tenant and tool name.",
	},
	[]string{"tenant", "tool"},
)

var ToolCallDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "toolfleet",
		Subsystem: "tools",
		Name:      "call_duration_seconds",
		Help:      "Tool handler duration in seconds.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"tenant", "tool"},
)

var CRMRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "toolfleet",
		Subsystem: "crm",
		Name:      "requests_total",
		Help:      "Total number of outbound CRM gateway calls by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

var CRMRetriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "toolfleet",
		Subsystem: "crm",
		Name:      "retries_total",
		Help:      "Total number of retry attempts made against the CRM backend.",
	},
	[]string{"operation"},
)

var AvailabilityFanoutDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "toolfleet",
		Subsystem: "availability",
		Name:      "fanout_duration_seconds",
		Help:      "Duration of the multi-branch availability fan-out.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	},
	[]string{"tenant"},
)

var AvailabilityBranchesQueried = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "toolfleet",
		Subsystem: "availability",
		Name:      "branches_queried_total",
		Help:      "Total number of branches queried during availability fan-out.",
	},
	[]string{"tenant", "outcome"},
)

var ToolChoicesRecordedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "toolfleet",
		Subsystem: "choicelog",
		Name:      "recorded_total",
		Help:      "Total number of tool choices persisted to Postgres.",
	},
)

var ToolChoicesDroppedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "toolfleet",
		Subsystem: "choicelog",
		Name:      "dropped_total",
		Help:      "Total number of tool choices dropped because the write buffer was full.",
	},
)

// ToolMetrics satisfies pkg/toolhost.Metrics over the process-wide
// Prometheus collectors, so toolhost doesn't need to import Prometheus
// itself.
type ToolMetrics struct{}

// ObserveToolCall records one tool invocation's duration; outcome is
// carried in the log line toolhost emits alongside this call, not as a
// metric label (the vectors here are keyed by tenant/tool only).
func (ToolMetrics) ObserveToolCall(tenant, tool string, duration time.Duration, outcome string) {
	ToolCallsTotal.WithLabelValues(tenant, tool).Inc()
	ToolCallDuration.WithLabelValues(tenant, tool).Observe(duration.Seconds())
}

// All returns every process-wide metric collector for registration.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		ToolCallsTotal,
		ToolCallDuration,
		CRMRequestsTotal,
		CRMRetriesTotal,
		AvailabilityFanoutDuration,
		AvailabilityBranchesQueried,
		ToolChoicesRecordedTotal,
		ToolChoicesDroppedTotal,
	}
}
