// Package workflow orchestrates multi-stage agent pipelines. An Engine walks
// an ordered sequence of stages for each run: single-agent steps see the full
// session context, parallel stages fan member agents out over input-only
// snapshots and merge their outputs back in declared order. Every run is
// validated up front, audited through a RunStore and settled exactly once as
// completed or failed.
package workflow
