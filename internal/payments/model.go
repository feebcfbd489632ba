package payments

import "time"

const (
	StatusCreated = "created"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

// TypeApprovalFee tags the payment a hired seeker makes before onboarding.
const TypeApprovalFee = "APPROVAL_FEE"

// Payment is one gateway charge attempt against an application.
type Payment struct {
	ID             string    `json:"id"`
	ApplicationID  string    `json:"applicationId"`
	OrderID        string    `json:"orderId"`
	PaymentID      string    `json:"paymentId,omitempty"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	PaymentType    string    `json:"paymentType"`
	Status         string    `json:"status"`
	IdempotencyKey string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Order is the gateway-side handle returned to the client for checkout.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
