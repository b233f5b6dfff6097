package sales

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StageName identifies a phase of a sale's payment plan
type StageName string

const (
	StageBooking      StageName = "BOOKING"
	StageInstallments StageName = "INSTALLMENTS"
	StageRegistration StageName = "REGISTRATION"
	StageHandover     StageName = "HANDOVER"
)

// IsValid checks if the stage name is known
func (s StageName) IsValid() bool {
	switch s {
	case StageBooking, StageInstallments, StageRegistration, StageHandover:
		return true
	}
	return false
}

// StageDefinition is one ordered entry of a stage plan
type StageDefinition struct {
	Stage        StageName
	Percent      decimal.Decimal
	DueAfterDays int
}

// StagePlan is the ordered split of a sale price into payment stages.
// Receipts fill stages in plan order.
type StagePlan struct {
	stages []StageDefinition
}

// DefaultStagePlan is the standard 10/70/15/5 plan
func DefaultStagePlan() StagePlan {
	return StagePlan{stages: []StageDefinition{
		{Stage: StageBooking, Percent: decimal.NewFromInt(10), DueAfterDays: 0},
		{Stage: StageInstallments, Percent: decimal.NewFromInt(70), DueAfterDays: 180},
		{Stage: StageRegistration, Percent: decimal.NewFromInt(15), DueAfterDays: 270},
		{Stage: StageHandover, Percent: decimal.NewFromInt(5), DueAfterDays: 365},
	}}
}

// NewStagePlan validates a custom plan: known, unique stages with positive
// percentages summing to 100 and non-decreasing due offsets.
func NewStagePlan(defs []StageDefinition) (StagePlan, error) {
	if len(defs) == 0 {
		return StagePlan{}, fmt.Errorf("stage plan must have at least one stage")
	}
	seen := make(map[StageName]bool, len(defs))
	sum := decimal.Zero
	lastDue := 0
	for i, def := range defs {
		if !def.Stage.IsValid() {
			return StagePlan{}, fmt.Errorf("unknown stage %q", def.Stage)
		}
		if seen[def.Stage] {
			return StagePlan{}, fmt.Errorf("stage %s appears more than once", def.Stage)
		}
		seen[def.Stage] = true
		if !def.Percent.IsPositive() {
			return StagePlan{}, fmt.Errorf("stage %s must have a positive percentage", def.Stage)
		}
		if def.DueAfterDays < 0 || (i > 0 && def.DueAfterDays < lastDue) {
			return StagePlan{}, fmt.Errorf("stage %s due offset must not go backwards", def.Stage)
		}
		lastDue = def.DueAfterDays
		sum = sum.Add(def.Percent)
	}
	if !sum.Equal(decimal.NewFromInt(100)) {
		return StagePlan{}, fmt.Errorf("stage percentages must sum to 100, got %s", sum.String())
	}
	out := make([]StageDefinition, len(defs))
	copy(out, defs)
	return StagePlan{stages: out}, nil
}

// Definitions returns a copy of the ordered stage definitions
func (p StagePlan) Definitions() []StageDefinition {
	out := make([]StageDefinition, len(p.stages))
	copy(out, p.stages)
	return out
}

// Percents returns the stage percentages in plan order
func (p StagePlan) Percents() []decimal.Decimal {
	out := make([]decimal.Decimal, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.Percent
	}
	return out
}

// IsZero reports whether the plan was never initialised
func (p StagePlan) IsZero() bool {
	return len(p.stages) == 0
}
