package jobs

import "time"

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Job is a posted opening that seekers can apply to. CompanyName is
// denormalized so listings and fee quotes render without a join.
type Job struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"companyId"`
	CompanyName   string    `json:"companyName"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Location      string    `json:"location"`
	MonthlySalary int64     `json:"monthlySalary"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Categories is the platform-managed category list shown to companies
// when posting and to seekers as browse filters.
var Categories = []string{
	"textiles",
	"manufacturing",
	"construction",
	"logistics",
	"retail",
	"hospitality",
	"agriculture",
	"services",
}

// ListFilter narrows job listings.
type ListFilter struct {
	Category string
	Location string
	Limit    int
	Offset   int
}
