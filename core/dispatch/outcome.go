package dispatch

import (
	"fmt"

	"github.com/kilianp07/jobgate/core/model"
)

// Reply texts. Clients match on them, so they are part of the protocol.
const (
	ReplyInvalid           = "Invalid request"
	ReplyBusyRejection     = "Server is busy, cannot process request"
	ReplyQueueFull         = "Queue is full"
	ReplyStarted           = "Processing started"
	ReplyStopped           = "Processing stopped"
	ReplyBusy              = "Server is busy"
	ReplyAvailable         = "Server is available"
	replyQueuedPrefix      = "Request will be processed with ID: "
	replyAcceptedPrefix    = "Accepted: ID "
	replyUnknownMethodText = "Unknown method: "
)

// QueuedReply is the acknowledgement sent when a record enters the queue.
func QueuedReply(id string) string { return replyQueuedPrefix + id }

// AcceptedReply is the final reply for a record that passed dispatch.
func AcceptedReply(rec model.Record, echoBody bool) string {
	if echoBody {
		return fmt.Sprintf("%s%s (%s, priority %d)", replyAcceptedPrefix, rec.ID, rec.Configuration, rec.Priority)
	}
	return replyAcceptedPrefix + rec.ID
}

// UnknownMethodReply is the error text for an unsupported method.
func UnknownMethodReply(method string) string { return replyUnknownMethodText + method }
