package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ndeen17/Escrow/model"
)

// emailRe accepts the usual local@domain.tld shape; anything fancier is the
// escrow backend's problem.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validation error keys. The milestone-sum mismatch is distinct from the
// incomplete-milestone key so the UI can show both independently.
const (
	ErrKeyContractName = "contract_name"
	ErrKeyEmail        = "other_party_email"
	ErrKeyCategory     = "category"
	ErrKeySubcategory  = "subcategory"
	ErrKeyDescription  = "description"
	ErrKeyBudget       = "budget"
	ErrKeyHourlyRate   = "hourly_rate"
	ErrKeyCurrency     = "currency"
	ErrKeyMilestones   = "milestones"
	ErrKeyMilestoneSum = "milestone_sum"
)

// ValidateStep checks the fields belonging to one wizard step and returns
// per-field error messages. Validation is per-step: a draft can be invalid on
// step 3 while steps 1-2 already passed.
func ValidateStep(d *model.ContractDraft, step int) map[string]string {
	errs := make(map[string]string)

	switch step {
	case model.StepSetup:
		name := strings.TrimSpace(d.ContractName)
		if name == "" {
			errs[ErrKeyContractName] = "Contract name is required"
		} else if len(name) > model.MaxContractNameLen {
			errs[ErrKeyContractName] = fmt.Sprintf("Contract name must be %d characters or less", model.MaxContractNameLen)
		}

		email := strings.TrimSpace(d.OtherPartyEmail)
		if email == "" {
			errs[ErrKeyEmail] = "Email is required"
		} else if !emailRe.MatchString(email) {
			errs[ErrKeyEmail] = "Please enter a valid email address"
		}

	case model.StepDescription:
		if d.Category == "" {
			errs[ErrKeyCategory] = "Please select a category"
		} else if !model.ValidCategory(d.Category) {
			errs[ErrKeyCategory] = "Unknown category"
		} else if !model.ValidSubcategory(d.Category, d.Subcategory) {
			errs[ErrKeySubcategory] = "Unknown role for this category"
		}
		if strings.TrimSpace(d.Description) == "" {
			errs[ErrKeyDescription] = "Please describe what needs to be done"
		}

	case model.StepBudget:
		if !model.ValidCurrency(d.Currency) {
			errs[ErrKeyCurrency] = "Unsupported currency"
		}

		switch d.ContractType {
		case model.TypeHourly:
			if d.HourlyRate <= 0 {
				errs[ErrKeyHourlyRate] = "Hourly rate is required"
			}
		default:
			if d.SplitMilestones {
				validateMilestones(d, errs)
			} else if d.Budget <= 0 {
				errs[ErrKeyBudget] = "Budget is required"
			}
		}
	}

	return errs
}

func validateMilestones(d *model.ContractDraft, errs map[string]string) {
	if len(d.Milestones) == 0 {
		errs[ErrKeyMilestones] = "Add at least one milestone"
		return
	}

	for _, m := range d.Milestones {
		if strings.TrimSpace(m.Name) == "" || m.Budget <= 0 {
			errs[ErrKeyMilestones] = "Each milestone needs a name and a budget"
			break
		}
	}

	if !d.MilestoneSumMatches() {
		errs[ErrKeyMilestoneSum] = fmt.Sprintf(
			"Milestone budgets ($%.2f) must add up to the total budget ($%.2f)",
			d.MilestoneSum(), d.Budget)
	}
}

// ToggleSplit switches milestone splitting on or off. Turning it on seeds
// exactly one empty milestone when none exist; turning it off discards all
// milestones immediately, with no undo.
func ToggleSplit(d *model.ContractDraft, on bool) {
	d.SplitMilestones = on
	if on {
		if len(d.Milestones) == 0 {
			d.Milestones = []model.Milestone{{}}
		}
		return
	}
	d.Milestones = nil
}

// AddMilestone appends an empty milestone. Past the cap it is a no-op.
func AddMilestone(d *model.ContractDraft) {
	if len(d.Milestones) >= model.MaxMilestones {
		return
	}
	d.Milestones = append(d.Milestones, model.Milestone{})
}

// RemoveMilestone drops the milestone at index. The state machine never
// refuses a removal; an empty list while splitting is caught by step-3
// validation instead.
func RemoveMilestone(d *model.ContractDraft, index int) {
	if index < 0 || index >= len(d.Milestones) {
		return
	}
	d.Milestones = append(d.Milestones[:index], d.Milestones[index+1:]...)
}

// UpdateMilestone replaces the milestone at index.
func UpdateMilestone(d *model.ContractDraft, index int, m model.Milestone) {
	if index < 0 || index >= len(d.Milestones) {
		return
	}
	d.Milestones[index] = m
}

// NewDraft returns a draft with the wizard's initial selections.
func NewDraft() model.ContractDraft {
	return model.ContractDraft{
		ContractType: model.TypeFixed,
		Currency:     "USD",
	}
}

// WizardService owns step progression and mirrors every snapshot to the
// draft slot.
type WizardService struct {
	slots *SlotStore
}

func NewWizardService(slots *SlotStore) *WizardService {
	return &WizardService{slots: slots}
}

// Save persists the snapshot unless the draft is still wholly blank, so an
// untouched form never occupies the slot.
func (s *WizardService) Save(ctx context.Context, session string, progress model.WizardProgress) error {
	if !progress.Draft.Identifiable() {
		return nil
	}
	if progress.Step < model.StepSetup || progress.Step > model.StepBudget {
		progress.Step = model.StepSetup
	}
	return s.slots.SaveDraft(ctx, session, progress)
}

// Advance validates the current step and moves forward when it passes. The
// snapshot is persisted either way; only the draft data is durable, never the
// errors.
func (s *WizardService) Advance(ctx context.Context, session string, progress *model.WizardProgress) (map[string]string, error) {
	if err := s.Save(ctx, session, *progress); err != nil {
		return nil, err
	}

	errs := ValidateStep(&progress.Draft, progress.Step)
	if len(errs) > 0 {
		return errs, nil
	}

	if progress.Step < model.StepBudget {
		progress.Step++
		if err := s.Save(ctx, session, *progress); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// Retreat moves one step back. Backing out of step 1 is a navigation concern
// the UI owns; the engine just floors at the first step.
func (s *WizardService) Retreat(ctx context.Context, session string, progress *model.WizardProgress) error {
	if progress.Step > model.StepSetup {
		progress.Step--
	}
	return s.Save(ctx, session, *progress)
}

// Resume returns the persisted progress for the session, if a live draft
// exists.
func (s *WizardService) Resume(ctx context.Context, session string) (model.WizardProgress, bool, error) {
	progress, _, ok, err := s.slots.LoadDraft(ctx, session)
	return progress, ok, err
}

// Discard drops the persisted draft.
func (s *WizardService) Discard(ctx context.Context, session string) error {
	return s.slots.ClearDraft(ctx, session)
}
