package policy

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"purchase-approval/internal/domain/approval"
	"purchase-approval/internal/domain/purchase"
)

// Step is one approver slot of a tier.
type Step struct {
	Name     string `yaml:"step"`
	Approver string `yaml:"approver"`
}

// Tier matches amounts in [MinAmount, MaxAmount); a nil bound is open.
type Tier struct {
	Name      string           `yaml:"name"`
	MinAmount *decimal.Decimal `yaml:"min_amount"`
	MaxAmount *decimal.Decimal `yaml:"max_amount"`
	Steps     []Step           `yaml:"steps"`
}

func (t Tier) matches(amount decimal.Decimal) bool {
	if t.MinAmount != nil && amount.LessThan(*t.MinAmount) {
		return false
	}
	if t.MaxAmount != nil && !amount.LessThan(*t.MaxAmount) {
		return false
	}
	return true
}

// Tiered routes by amount. All steps of the matching tier are created at
// submission as parallel PENDING tasks; every one must approve.
type Tiered struct {
	Tiers []Tier `yaml:"tiers"`
	// Used when no tier matches.
	Default Step `yaml:"default"`
}

// LoadTiered reads a YAML policy file, e.g.
//
//	default: {step: MANAGER, approver: manager@example.com}
//	tiers:
//	  - name: large
//	    min_amount: "10000"
//	    steps:
//	      - {step: MANAGER, approver: manager@example.com}
//	      - {step: FINANCE, approver: cfo@example.com}
func LoadTiered(path string) (*Tiered, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParseTiered(b)
}

func ParseTiered(b []byte) (*Tiered, error) {
	var p Tiered
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if p.Default.Name == "" {
		p.Default.Name = StepManager
	}
	if p.Default.Approver == "" {
		p.Default.Approver = DefaultApproverEmail
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Tiered) validate() error {
	for i, t := range p.Tiers {
		if len(t.Steps) == 0 {
			return fmt.Errorf("policy tier %d (%s) has no steps", i, t.Name)
		}
		for _, s := range t.Steps {
			if s.Name == "" || s.Approver == "" {
				return fmt.Errorf("policy tier %d (%s): step and approver are required", i, t.Name)
			}
		}
		if t.MinAmount != nil && t.MaxAmount != nil && !t.MinAmount.LessThan(*t.MaxAmount) {
			return fmt.Errorf("policy tier %d (%s): min_amount must be below max_amount", i, t.Name)
		}
	}
	return nil
}

// Match returns the steps for amount; first matching tier wins.
func (p *Tiered) Match(amount decimal.Decimal) []Step {
	for _, t := range p.Tiers {
		if t.matches(amount) {
			return t.Steps
		}
	}
	return []Step{p.Default}
}

func (p *Tiered) CreateInitialTasks(_ context.Context, pr *purchase.PurchaseRequest) ([]*approval.ApprovalTask, error) {
	if pr == nil {
		return nil, errors.New("policy: nil purchase request")
	}
	steps := p.Match(pr.Amount)
	out := make([]*approval.ApprovalTask, 0, len(steps))
	for _, s := range steps {
		out = append(out, approval.NewTask(pr.ID, s.Name, s.Approver))
	}
	return out, nil
}

func (p *Tiered) IsComplete(_ *purchase.PurchaseRequest, tasks []*approval.ApprovalTask) bool {
	return allApproved(tasks)
}
