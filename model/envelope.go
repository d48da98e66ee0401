package model

import (
	"time"
)

// WizardProgress pairs the current draft with the wizard step it was on.
// This is what the draft slot persists on every change.
type WizardProgress struct {
	Draft ContractDraft `json:"data"`
	Step  int           `json:"step"`
}

// Wizard steps
const (
	StepSetup       = 1
	StepDescription = 2
	StepBudget      = 3
)

// RegistrationData is the minimal identity captured by the auth gate before
// redirecting a brand-new user to the identity provider.
type RegistrationData struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Country   string `json:"country"`
	Role      string `json:"role"`
}

// PendingSubmission carries an optional registration payload and a contract
// draft across the identity-provider redirect. It is written when the user
// picks an option on the auth gate and consumed exactly once by the
// reconciler; expired envelopes are discarded unread.
type PendingSubmission struct {
	Registration *RegistrationData `json:"registration_data,omitempty"`
	Contract     *ContractDraft    `json:"contract_data,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// PendingRegistration is the older carrier shape written by the standalone
// registration pages before the wizard existed. It never carries a contract.
type PendingRegistration struct {
	Registration RegistrationData `json:"registration_data"`
	CreatedAt    time.Time        `json:"created_at"`
}

// UserProfile is the account record returned by the escrow backend after
// registration, cached for session checks.
type UserProfile struct {
	Subject   string `json:"subject"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Country   string `json:"country"`
	Role      string `json:"role"`
}

// Notice is a transient, auto-dismissing message for the UI, used when a
// saved draft is restored after a reload.
type Notice struct {
	Message         string `json:"message"`
	AutoDismissMsec int    `json:"auto_dismiss_ms"`
}

// Roles a user can register as
const (
	RoleClient     = "client"
	RoleAgency     = "agency"
	RoleFreelancer = "freelancer"
)

// NormalizeRole maps a role id to the capitalized form stored on the
// registration payload, defaulting to Client when the id is empty or unknown.
func NormalizeRole(id string) string {
	switch id {
	case RoleAgency:
		return "Agency"
	case RoleFreelancer:
		return "Freelancer"
	default:
		return "Client"
	}
}
