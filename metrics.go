package docstore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prometheus package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordInsert is called after each insert. count is the number of
	// documents in the call, err is nil if successful.
	RecordInsert(count int, duration time.Duration, err error)

	// RecordUpdate is called after each update.
	RecordUpdate(count int, duration time.Duration, err error)

	// RecordRemove is called after each remove.
	RecordRemove(count int, duration time.Duration, err error)

	// RecordFind is called after each read; results is the number of
	// documents returned.
	RecordFind(results int, duration time.Duration)

	// RecordRebuild is called after a full index rebuild.
	RecordRebuild(field string, duration time.Duration)

	// RecordCheck is called after each integrity check.
	RecordCheck(field string, valid bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordUpdate(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRemove(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordFind(int, time.Duration)          {}
func (NoopMetricsCollector) RecordRebuild(string, time.Duration)    {}
func (NoopMetricsCollector) RecordCheck(string, bool)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertDocs       atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	UpdateCount      atomic.Int64
	UpdateDocs       atomic.Int64
	UpdateErrors     atomic.Int64
	RemoveCount      atomic.Int64
	RemoveDocs       atomic.Int64
	RemoveErrors     atomic.Int64
	FindCount        atomic.Int64
	FindResults      atomic.Int64
	FindTotalNanos   atomic.Int64
	RebuildCount     atomic.Int64
	CheckCount       atomic.Int64
	CheckFailures    atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(count int, duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
		return
	}
	b.InsertDocs.Add(int64(count))
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(count int, duration time.Duration, err error) {
	b.UpdateCount.Add(1)
	if err != nil {
		b.UpdateErrors.Add(1)
		return
	}
	b.UpdateDocs.Add(int64(count))
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(count int, duration time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
		return
	}
	b.RemoveDocs.Add(int64(count))
}

// RecordFind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFind(results int, duration time.Duration) {
	b.FindCount.Add(1)
	b.FindResults.Add(int64(results))
	b.FindTotalNanos.Add(duration.Nanoseconds())
}

// RecordRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRebuild(string, time.Duration) {
	b.RebuildCount.Add(1)
}

// RecordCheck implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCheck(_ string, valid bool) {
	b.CheckCount.Add(1)
	if !valid {
		b.CheckFailures.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:    b.InsertCount.Load(),
		InsertDocs:     b.InsertDocs.Load(),
		InsertErrors:   b.InsertErrors.Load(),
		InsertAvgNanos: avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		UpdateCount:    b.UpdateCount.Load(),
		UpdateDocs:     b.UpdateDocs.Load(),
		UpdateErrors:   b.UpdateErrors.Load(),
		RemoveCount:    b.RemoveCount.Load(),
		RemoveDocs:     b.RemoveDocs.Load(),
		RemoveErrors:   b.RemoveErrors.Load(),
		FindCount:      b.FindCount.Load(),
		FindResults:    b.FindResults.Load(),
		FindAvgNanos:   avg(b.FindTotalNanos.Load(), b.FindCount.Load()),
		RebuildCount:   b.RebuildCount.Load(),
		CheckCount:     b.CheckCount.Load(),
		CheckFailures:  b.CheckFailures.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount    int64
	InsertDocs     int64
	InsertErrors   int64
	InsertAvgNanos int64
	UpdateCount    int64
	UpdateDocs     int64
	UpdateErrors   int64
	RemoveCount    int64
	RemoveDocs     int64
	RemoveErrors   int64
	FindCount      int64
	FindResults    int64
	FindAvgNanos   int64
	RebuildCount   int64
	CheckCount     int64
	CheckFailures  int64
}
