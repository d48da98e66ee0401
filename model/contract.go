package model

import (
	"math"
)

// ContractDraft is the in-progress contract form as the wizard edits it.
// Exactly one of the fixed-price or hourly field groups is active, selected
// by ContractType; the inactive group is carried but ignored.
type ContractDraft struct {
	ContractName    string      `json:"contract_name"`
	OtherPartyEmail string      `json:"other_party_email"`
	Category        string      `json:"category"`
	Subcategory     string      `json:"subcategory,omitempty"`
	Description     string      `json:"description"`
	ContractType    string      `json:"contract_type"` // fixed, hourly
	Budget          float64     `json:"budget,omitempty"`
	SplitMilestones bool        `json:"split_milestones,omitempty"`
	Milestones      []Milestone `json:"milestones,omitempty"`
	HourlyRate      float64     `json:"hourly_rate,omitempty"`
	WeeklyLimit     float64     `json:"weekly_limit,omitempty"`
	NoLimit         bool        `json:"no_limit,omitempty"`
	Currency        string      `json:"currency"`
	DueDate         string      `json:"due_date,omitempty"` // YYYY-MM-DD
}

// Milestone is a named, budgeted sub-deliverable of a fixed-price contract.
type Milestone struct {
	Name    string  `json:"name"`
	Budget  float64 `json:"budget"`
	DueDate string  `json:"due_date,omitempty"`
}

// Contract type constants
const (
	TypeFixed  = "fixed"
	TypeHourly = "hourly"
)

// Contract status sent to the escrow backend
const (
	StatusPending = "pending"
	StatusDraft   = "draft"
)

const (
	// PlatformFeeRate is the fixed 3.6% platform fee, applied
	// multiplicatively and never rounded before the subtraction.
	PlatformFeeRate = 0.036

	// DefaultWeeklyHours is assumed for hourly contracts with no weekly limit.
	DefaultWeeklyHours = 40

	// MaxMilestones caps the milestone list; adds past it are no-ops.
	MaxMilestones = 10

	// MaxContractNameLen mirrors the input limit in the wizard UI.
	MaxContractNameLen = 70

	// MilestoneSumTolerance is the allowed drift between the milestone
	// budgets and the total budget.
	MilestoneSumTolerance = 0.01
)

// Currencies supported for escrow payments
var Currencies = []string{"USD", "EUR", "GBP", "USDT", "USDC"}

// ValidCurrency reports whether code is a supported currency.
func ValidCurrency(code string) bool {
	for _, c := range Currencies {
		if c == code {
			return true
		}
	}
	return false
}

// MilestoneSum returns the sum of all milestone budgets.
func (d *ContractDraft) MilestoneSum() float64 {
	var sum float64
	for _, m := range d.Milestones {
		sum += m.Budget
	}
	return sum
}

// MilestoneSumMatches reports whether the milestone budgets add up to the
// total budget within tolerance.
func (d *ContractDraft) MilestoneSumMatches() bool {
	return math.Abs(d.MilestoneSum()-d.Budget) <= MilestoneSumTolerance
}

// Identifiable reports whether the draft carries at least one identifying
// field. Blank drafts are never persisted.
func (d *ContractDraft) Identifiable() bool {
	return d.ContractName != "" || d.OtherPartyEmail != ""
}

// PayoutSummary is the derived payment breakdown shown on the budget step.
// Payout is what the receiving party gets; TotalCost is what the paying
// party covers. The computation is identical for both roles, only the
// labeling differs.
type PayoutSummary struct {
	Amount    float64 `json:"amount"`
	Fee       float64 `json:"fee"`
	Payout    float64 `json:"payout"`
	TotalCost float64 `json:"total_cost"`
}

// Payout computes the platform fee breakdown for the draft. For fixed-price
// contracts the amount is the budget, or the milestone sum when the budget is
// split; for hourly contracts it is rate times the weekly limit (40 hours
// when unset).
func (d *ContractDraft) Payout() PayoutSummary {
	var amount float64
	switch d.ContractType {
	case TypeHourly:
		hours := d.WeeklyLimit
		if hours == 0 || d.NoLimit {
			hours = DefaultWeeklyHours
		}
		amount = d.HourlyRate * hours
	default:
		if d.SplitMilestones {
			amount = d.MilestoneSum()
		} else {
			amount = d.Budget
		}
	}

	fee := amount * PlatformFeeRate
	return PayoutSummary{
		Amount:    amount,
		Fee:       fee,
		Payout:    amount - fee,
		TotalCost: amount + fee,
	}
}
