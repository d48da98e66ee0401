package service

import (
	"context"
	"fmt"

	"github.com/ndeen17/Escrow/model"
	"github.com/ndeen17/Escrow/pkg/logger"
)

// Reconcile outcomes
const (
	OutcomeRegistered       = "registered"        // account created, draft carried as initial contract
	OutcomeSubmitted        = "submitted"         // returning user, contract submitted as draft
	OutcomeLegacyRegistered = "legacy_registered" // old registration-only carrier consumed
	OutcomeNone             = "none"              // nothing pending, cached profile only
)

// Identity is the authenticated caller as established by the identity
// provider's token.
type Identity struct {
	Subject string
	Email   string
	Token   string
}

// ReconcileResult reports what the reconciler did for this arrival.
type ReconcileResult struct {
	Outcome string             `json:"outcome"`
	Profile *model.UserProfile `json:"profile,omitempty"`
}

// Reconciler turns a pending envelope into a real registration and/or
// contract record, exactly once. It runs on every authenticated arrival at
// the dashboard; once the envelope is gone it degrades to a cached-profile
// lookup, so reloading the dashboard never duplicates a contract.
type Reconciler struct {
	slots    *SlotStore
	escrow   *EscrowClient
	profiles *ProfileStore
}

func NewReconciler(slots *SlotStore, escrow *EscrowClient, profiles *ProfileStore) *Reconciler {
	return &Reconciler{slots: slots, escrow: escrow, profiles: profiles}
}

// Reconcile inspects the session's pending envelopes in priority order and
// performs at most one backend call. A failed call leaves the envelope and
// the draft slot exactly as they were, so the user can retry.
func (r *Reconciler) Reconcile(ctx context.Context, session string, ident Identity) (ReconcileResult, error) {
	env, ok, err := r.slots.LoadSubmission(ctx, session)
	if err != nil {
		return ReconcileResult{}, err
	}

	if ok {
		switch {
		case env.Registration != nil:
			return r.registerAndSubmit(ctx, session, ident, env)
		case env.Contract != nil:
			return r.submitOnly(ctx, session, ident, env)
		default:
			// An envelope with neither payload carries nothing worth keeping.
			logger.Warn(ctx, "dropping empty pending-submission envelope")
			_ = r.slots.ClearSubmission(ctx, session)
		}
	}

	legacy, ok, err := r.slots.LoadLegacyRegistration(ctx, session)
	if err != nil {
		return ReconcileResult{}, err
	}
	if ok {
		return r.legacyRegister(ctx, session, ident, legacy)
	}

	result := ReconcileResult{Outcome: OutcomeNone}
	if profile, ok := r.profiles.Get(ident.Subject); ok {
		result.Profile = &profile
	}
	return result, nil
}

func (r *Reconciler) registerAndSubmit(ctx context.Context, session string, ident Identity, env model.PendingSubmission) (ReconcileResult, error) {
	req := EscrowRegisterRequest(ident, *env.Registration)
	if env.Contract != nil {
		req.InitialContract = &ContractRequest{
			ContractDraft: *env.Contract,
			Status:        model.StatusDraft,
		}
	}

	profile, err := r.escrow.Register(ctx, ident.Token, req)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("registration failed: %w", err)
	}

	r.profiles.Put(*profile)
	r.clearConsumed(ctx, session)
	logger.Info(ctx, "pending submission reconciled",
		"outcome", OutcomeRegistered,
		"with_contract", env.Contract != nil,
	)
	return ReconcileResult{Outcome: OutcomeRegistered, Profile: profile}, nil
}

func (r *Reconciler) submitOnly(ctx context.Context, session string, ident Identity, env model.PendingSubmission) (ReconcileResult, error) {
	resp, err := r.escrow.CreateContract(ctx, ident.Token, *env.Contract, model.StatusDraft)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("contract submission failed: %w", err)
	}

	r.clearConsumed(ctx, session)
	logger.Info(ctx, "pending submission reconciled",
		"outcome", OutcomeSubmitted,
		"contract_id", resp.ID,
	)

	result := ReconcileResult{Outcome: OutcomeSubmitted}
	if profile, ok := r.profiles.Get(ident.Subject); ok {
		result.Profile = &profile
	}
	return result, nil
}

func (r *Reconciler) legacyRegister(ctx context.Context, session string, ident Identity, env model.PendingRegistration) (ReconcileResult, error) {
	profile, err := r.escrow.Register(ctx, ident.Token, EscrowRegisterRequest(ident, env.Registration))
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("registration failed: %w", err)
	}

	r.profiles.Put(*profile)
	_ = r.slots.ClearLegacyRegistration(ctx, session)
	logger.Info(ctx, "legacy registration reconciled", "outcome", OutcomeLegacyRegistered)
	return ReconcileResult{Outcome: OutcomeLegacyRegistered, Profile: profile}, nil
}

// clearConsumed removes both the envelope and the mirrored draft after a
// successful consumption.
func (r *Reconciler) clearConsumed(ctx context.Context, session string) {
	_ = r.slots.ClearSubmission(ctx, session)
	_ = r.slots.ClearDraft(ctx, session)
}

// EscrowRegisterRequest builds the registration payload from the caller's
// identity and the collected registration fields.
func EscrowRegisterRequest(ident Identity, reg model.RegistrationData) RegisterRequest {
	return RegisterRequest{
		Subject:   ident.Subject,
		Email:     ident.Email,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Country:   reg.Country,
		Role:      reg.Role,
	}
}
