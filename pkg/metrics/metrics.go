package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FollowOperations counts engine operations by outcome (ok|rejected|sync_failed|error).
	FollowOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followers_operations_total",
			Help: "Total number of follow protocol operations",
		},
		[]string{"operation", "result"},
	)

	// CounterSyncFailures counts failed adjustments against the identity service.
	CounterSyncFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followers_counter_sync_failures_total",
			Help: "Total number of failed follower/following count adjustments",
		},
		[]string{"field"},
	)

	// CacheLookups counts list cache reads by key family (followers|following) and result (hit|miss|error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followers_cache_lookups_total",
			Help: "Total number of follower list cache lookups",
		},
		[]string{"family", "result"},
	)
)
