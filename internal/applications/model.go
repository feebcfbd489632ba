package applications

import "time"

const (
	StatusApplied   = "APPLIED"
	StatusInterview = "INTERVIEW"
	StatusHired     = "HIRED"
	StatusRejected  = "REJECTED"
)

// DefaultApprovalFee is charged when the company does not set one, in paise.
const DefaultApprovalFee int64 = 50000

// Application is one job seeker's application to one job posting.
type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	SeekerID    string    `json:"seekerId"`
	Status      string    `json:"status"`
	ResumeKey   string    `json:"resumeKey,omitempty"`
	ApprovalFee int64     `json:"approvalFee"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FeeQuote is the approval-fee view served before payment.
type FeeQuote struct {
	ApprovalFee   int64  `json:"approvalFee"`
	JobTitle      string `json:"jobTitle"`
	CompanyName   string `json:"companyName"`
	MonthlySalary int64  `json:"monthlySalary"`
}

// CanTransition reports whether a company may move an application between
// statuses. HIRED and REJECTED are terminal.
func CanTransition(from, to string) bool {
	switch from {
	case StatusApplied:
		return to == StatusInterview || to == StatusRejected
	case StatusInterview:
		return to == StatusHired || to == StatusRejected
	default:
		return false
	}
}
