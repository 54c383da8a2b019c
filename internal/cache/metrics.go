// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	tierFast    = "fast"
	tierDurable = "durable"

	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

var (
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grounding_cache_lookups_total",
			Help: "Total number of cache lookups by tier and result",
		},
		[]string{"tier", "result"},
	)

	cacheWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grounding_cache_write_failures_total",
			Help: "Total number of failed durable cache writes",
		},
		[]string{"backend"},
	)
)
