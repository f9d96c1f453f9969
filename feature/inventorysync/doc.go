// Package inventorysync exposes sync runs over HTTP.
//
// Routes:
//
//	POST /sync/runs       start a run (optionally dry-run or limited to some kinds)
//	GET  /sync/runs       list archived run reports
//	GET  /sync/runs/:id   fetch one run report
//	GET  /sync/kinds      list entity kinds with their strategy and fields
//
// Identical requests arriving while a run is in progress share that run's report
// instead of starting a second run. Reports are kept in memory for the life of the
// process and, when an Archive is configured, written to object storage.
package inventorysync
