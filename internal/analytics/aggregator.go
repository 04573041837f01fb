package analytics

import (
	"sort"
	"sync"
	"time"
)

// maxLatencySamples bounds the latency window used for percentiles.
const maxLatencySamples = 10000

// DefaultTop and MaxTop bound the ranked query lists in AggregatedStats.
const (
	DefaultTop = 10
	MaxTop     = 100
)

type AggregatedStats struct {
	TotalQueries      int64        `json:"total_queries"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	InvalidCount      int64        `json:"invalid_count"`
	FailedCount       int64        `json:"failed_count"`
	DiscardedGroups   int64        `json:"discarded_groups"`
	AvgLatencyUs      float64      `json:"avg_latency_us"`
	P50LatencyUs      int64        `json:"p50_latency_us"`
	P95LatencyUs      int64        `json:"p95_latency_us"`
	P99LatencyUs      int64        `json:"p99_latency_us"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator keeps running query statistics for the stats endpoint.
type Aggregator struct {
	mu                sync.Mutex
	stats             AggregatedStats
	latencies         []int64
	next              int
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
	}
}

func (a *Aggregator) Record(event QueryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.TotalQueries++
	switch event.Type {
	case EventInvalid:
		a.stats.InvalidCount++
		return
	case EventFailed:
		a.stats.FailedCount++
		return
	case EventZeroResult:
		a.stats.ZeroResultCount++
		a.zeroResultQueries[event.Query]++
	}
	a.stats.DiscardedGroups += int64(event.Discarded)
	a.queryCounts[event.Query]++

	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyUs)
	} else {
		a.latencies[a.next] = event.LatencyUs
		a.next = (a.next + 1) % maxLatencySamples
	}
}

// Stats snapshots the counters. top limits TopQueries and ZeroResultQueries;
// values outside [1, MaxTop] fall back to DefaultTop.
func (a *Aggregator) Stats(top int) AggregatedStats {
	if top < 1 || top > MaxTop {
		top = DefaultTop
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := a.stats
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyUs = float64(sum) / float64(len(sorted))
		stats.P50LatencyUs = percentile(sorted, 50)
		stats.P95LatencyUs = percentile(sorted, 95)
		stats.P99LatencyUs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, top)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, top)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalQueries) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, then query text, so equal counts list stably.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
