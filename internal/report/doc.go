// Package report collects test lifecycle events into a run summary.
//
// It uses a channel-based event pipeline so fixtures never block on
// bookkeeping:
//   - Test starts and outcomes
//   - Logged steps per test
//   - Retried element interactions per test
//   - Durations with average and percentile figures (P50, P95)
//
// The collector runs in a dedicated goroutine. Emit is non-blocking; events
// that do not fit in the buffer are dropped and logged.
//
// Example usage:
//
//	collector := report.NewCollector(256, log)
//	collector.Start(ctx)
//
//	collector.Emit(report.Event{Type: report.EventTestStarted, Test: "TC-01"})
//	collector.Emit(report.Event{Type: report.EventTestFinished, Test: "TC-01", Passed: true})
//
//	cancel()
//	<-collector.Done()
//	snap := collector.Snapshot()
//
// Cancelling the context drains the events still buffered before Done is
// closed.
package report
