// Package core provides the session layer of the table viewer.
//
// This package owns all state a browser works against and is independent of
// the HTTP transport. Web handlers, tests and tools drive it the same way.
//
// # Architecture
//
//   - Session: the controller for one loaded dataset. It holds the Filtered
//     View, the filter inputs and the sort state, and notifies listeners
//     after every change.
//   - Service: the registry of live sessions, keyed by a random UUID, plus
//     the decode limiter shared by all of them.
//   - Ingest: format detection, rejection of unsupported inputs and decoding
//     into a [table.Dataset].
//   - Janitor: drops sessions that have been idle for too long.
//
// # Lifecycle
//
// A load replaces the dataset wholesale and resets the filters, the sort
// state and the last aggregate:
//
//	ds, err := svc.Decode(ctx, core.Upload{Name: "orders.csv", Body: f})
//	if err != nil {
//	    return err // previous dataset untouched
//	}
//	sess.Load(ds, "orders.csv")
//	sess.SetGlobalFilter("acme")
//	done, _ := sess.Sort(2)
//	<-done
//	view := sess.Snapshot()
//
// # Deferred sorting
//
// [Session.Sort] completes after the configured delay. Requests are ordered by
// a generation counter, so only the newest request is applied and a load
// abandons any sort still pending.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference (FILE, VAL, SES, SRC, DB,
// UPL, RATE).
package core
