// Package events defines what the dispatch controller publishes on the
// event bus.
//
// Available event types:
//   - SubmissionEvent: a request was admitted, queued or rejected
//   - OutcomeEvent: a record left dispatch with its final reply
//   - TickEvent: the tick source fired
//   - ControlEvent: a control command changed the server state
package events
