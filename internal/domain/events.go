package domain

import "time"

// Event types
const (
	EventTypeTransactionCompleted = "transaction.completed"
	EventTypeTransactionCancelled = "transaction.cancelled"
	EventTypeAccountOpened        = "account.opened"
	EventTypeCreditApproved       = "credit.approved"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
	AggregateTypeAccount     = "account"
	AggregateTypeCredit      = "credit"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionPayload builds the event payload for a transaction record.
func TransactionPayload(t *Transaction) map[string]any {
	payload := map[string]any{
		"transaction_id": t.ID,
		"amount":         t.Amount.String(),
		"status":         string(t.Status),
		"external_ref":   t.ExternalRef,
	}
	if t.SenderAccountID != nil {
		payload["sender_account_id"] = *t.SenderAccountID
	}
	if t.ReceiverAccountID != nil {
		payload["receiver_account_id"] = *t.ReceiverAccountID
	}
	return payload
}
