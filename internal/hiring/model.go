package hiring

import "time"

// Approval intent states. An intent is the durable record of one
// hire-confirmation attempt: fee payment plus Aadhaar document submission.
// payment_confirmed is the explicit "fee paid, documents pending" window that
// reconciliation watches.
const (
	StateCreated          = "created"
	StateOrderCreated     = "order_created"
	StatePaymentConfirmed = "payment_confirmed"
	StateCompleted        = "completed"
	StateFailed           = "failed"
	StateStalled          = "stalled"
)

// ApprovalIntent tracks one approval attempt for a hired application.
type ApprovalIntent struct {
	ID             string    `json:"id"`
	ApplicationID  string    `json:"applicationId"`
	SeekerID       string    `json:"seekerId"`
	IdempotencyKey string    `json:"-"`
	OrderID        string    `json:"orderId,omitempty"`
	PaymentID      string    `json:"paymentId,omitempty"`
	Amount         int64     `json:"amount"`
	State          string    `json:"state"`
	Attempts       int       `json:"attempts"`
	LastError      string    `json:"lastError,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CanAdvance reports whether an intent may move between states. failed and
// completed are terminal; a stalled intent may still complete once the
// missing documents arrive. A same-state advance on an active intent is a
// refresh that records attempt bookkeeping.
func CanAdvance(from, to string) bool {
	if from == to {
		switch from {
		case StateCreated, StateOrderCreated, StatePaymentConfirmed, StateStalled:
			return true
		}
		return false
	}
	switch from {
	case StateCreated:
		return to == StateOrderCreated || to == StateFailed
	case StateOrderCreated:
		return to == StatePaymentConfirmed || to == StateFailed
	case StatePaymentConfirmed:
		return to == StateCompleted || to == StateStalled || to == StateFailed
	case StateStalled:
		return to == StateCompleted
	default:
		return false
	}
}

// Active reports whether the intent still expects progress.
func (i ApprovalIntent) Active() bool {
	switch i.State {
	case StateCompleted, StateFailed:
		return false
	default:
		return true
	}
}
