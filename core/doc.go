// Package core contains the shared contracts and data model of tripflow: the
// validated travel request, the per-run session context, step results and run
// records, the Agent and RunStore interfaces, and the error taxonomy used by
// the workflow engine.
package core
