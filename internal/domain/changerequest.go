package domain

import "time"

// ChangeRequest is a courier-proposed edit to an existing order. It
// stays in the pending set until an admin approves or rejects it;
// either resolution is terminal. Several requests may target the same
// order at once.
type ChangeRequest struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"orderId"`
	WorkerID    string     `json:"workerId"`
	WorkerName  string     `json:"workerName"`
	Patch       OrderPatch `json:"patch"`
	SubmittedAt time.Time  `json:"submittedAt"`
}

// Notification is a structured payload handed to the presentation
// layer for routing to audio/push collaborators.
type Notification struct {
	RecipientID string   `json:"recipientId"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
}
