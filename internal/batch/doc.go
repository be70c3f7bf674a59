// Package batch runs every (model, prompt) pair of a selection against an
// inference client and publishes the finished result set. It is structured
// into small files by concern:
//
//   - orchestrator.go: Orchestrator, Run/Start, guard and publication.
//   - plan.go: snapshot resolution into model-major pairs.
//   - sequence.go: monotonically increasing result id source.
//   - paragraphs.go: splitting replies on blank lines.
//   - events.go: lifecycle events and publishers.
//   - metrics.go: Prometheus collectors for runs and calls.
//
// Calls are issued strictly one at a time. A run in progress rejects new
// runs; published results are cleared at start and replaced in one step
// when the run completes, so readers never see a mix of two runs.
package batch
