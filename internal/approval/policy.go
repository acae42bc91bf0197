// Package approval routes contracts through the appropriate approval
// chain based on risk level, contract value and contract type, then
// validates the chain against compliance rules.
package approval

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/util"
)

// Value escalation thresholds in USD.
const (
	managerThreshold = 50_000
	vpThreshold      = 250_000
	legalThreshold   = 500_000
	cfoThreshold     = 1_000_000
)

var defaultApprovers = map[contract.ApprovalLevel]string{
	contract.ApprovalAuto:    "System (Auto-Approval)",
	contract.ApprovalManager: "Department Manager",
	contract.ApprovalVP:      "VP of Operations",
	contract.ApprovalLegal:   "General Counsel",
	contract.ApprovalCFO:     "Chief Financial Officer",
}

// DefaultApprover returns the standing approver name for a level.
func DefaultApprover(level contract.ApprovalLevel) string {
	if name, ok := defaultApprovers[level]; ok {
		return name
	}
	return "Unknown"
}

// Policy determines and validates approval chains.
type Policy struct{}

func NewPolicy() *Policy {
	return &Policy{}
}

// Chain builds the ordered approval chain for a contract and returns the
// pending steps plus the validation notes produced while checking it.
func (p *Policy) Chain(ctx context.Context, risk contract.RiskLevel, value float64, contractType contract.Type) ([]contract.ApprovalStep, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	chain := routeChain(risk, value, contractType)
	chain, notes := validateChain(chain, risk, value, contractType)

	steps := make([]contract.ApprovalStep, len(chain))
	for i, level := range chain {
		steps[i] = contract.ApprovalStep{
			Level:    level,
			Approver: DefaultApprover(level),
			Decision: contract.DecisionPending,
		}
	}

	log.Printf("approval: chain=%v risk=%s value=%.2f type=%s", chain, risk, value, contractType)
	return steps, notes, nil
}

// routeChain applies the base routing rules:
//
//	low risk                -> auto
//	medium risk             -> manager
//	high risk               -> manager + vp + legal
//	critical risk           -> manager + vp + legal + cfo
//
// plus value escalation and contract type overrides.
func routeChain(risk contract.RiskLevel, value float64, contractType contract.Type) []contract.ApprovalLevel {
	var chain []contract.ApprovalLevel
	switch risk {
	case contract.RiskLow:
		chain = []contract.ApprovalLevel{contract.ApprovalAuto}
	case contract.RiskMedium:
		chain = []contract.ApprovalLevel{contract.ApprovalManager}
	case contract.RiskHigh:
		chain = []contract.ApprovalLevel{contract.ApprovalManager, contract.ApprovalVP, contract.ApprovalLegal}
	case contract.RiskCritical:
		chain = []contract.ApprovalLevel{contract.ApprovalManager, contract.ApprovalVP, contract.ApprovalLegal, contract.ApprovalCFO}
	}

	switch {
	case value >= cfoThreshold:
		chain = appendMissing(chain, contract.ApprovalManager, contract.ApprovalVP, contract.ApprovalLegal, contract.ApprovalCFO)
	case value >= legalThreshold:
		chain = appendMissing(chain, contract.ApprovalManager, contract.ApprovalVP, contract.ApprovalLegal)
	case value >= vpThreshold:
		chain = appendMissing(chain, contract.ApprovalManager, contract.ApprovalVP)
	case value >= managerThreshold:
		chain = appendMissing(chain, contract.ApprovalManager)
	}

	if contractType == contract.TypeEmployment || contractType == contract.TypeLicensing {
		chain = appendMissing(chain, contract.ApprovalLegal)
	}

	// Auto-approval only stands alone.
	if len(chain) > 1 {
		chain = remove(chain, contract.ApprovalAuto)
	}

	sortBySeniority(chain)
	return chain
}

// validateChain applies the compliance rules on top of the routed chain.
func validateChain(chain []contract.ApprovalLevel, risk contract.RiskLevel, value float64, contractType contract.Type) ([]contract.ApprovalLevel, []string) {
	var notes []string
	validated := append([]contract.ApprovalLevel(nil), chain...)

	if contractType == contract.TypeEmployment && !contains(validated, contract.ApprovalLegal) {
		validated = append(validated, contract.ApprovalLegal)
		notes = append(notes, "Added LEGAL approval: employment contracts require legal review per company policy.")
	}

	if value >= vpThreshold && !contains(validated, contract.ApprovalVP) {
		validated = append(validated, contract.ApprovalVP)
		notes = append(notes, fmt.Sprintf(
			"Added VP approval: contract value ($%s) exceeds $250K threshold.", util.FormatUSD(value)))
	}

	if risk == contract.RiskCritical && !contains(validated, contract.ApprovalCFO) {
		validated = append(validated, contract.ApprovalCFO)
		notes = append(notes, "Added CFO approval: CRITICAL risk level requires executive-level authorization.")
	}

	if risk != contract.RiskLow && contains(validated, contract.ApprovalAuto) {
		validated = remove(validated, contract.ApprovalAuto)
		validated = appendMissing(validated, contract.ApprovalManager)
		notes = append(notes, "Replaced AUTO approval with MANAGER: non-LOW risk contracts cannot be auto-approved per compliance policy.")
	}

	if len(notes) == 0 {
		notes = append(notes, "Approval chain validated. No modifications required.")
	}

	sortBySeniority(validated)
	return validated, notes
}

func appendMissing(chain []contract.ApprovalLevel, levels ...contract.ApprovalLevel) []contract.ApprovalLevel {
	for _, level := range levels {
		if !contains(chain, level) {
			chain = append(chain, level)
		}
	}
	return chain
}

func contains(chain []contract.ApprovalLevel, level contract.ApprovalLevel) bool {
	for _, existing := range chain {
		if existing == level {
			return true
		}
	}
	return false
}

func remove(chain []contract.ApprovalLevel, level contract.ApprovalLevel) []contract.ApprovalLevel {
	out := chain[:0]
	for _, existing := range chain {
		if existing != level {
			out = append(out, existing)
		}
	}
	return out
}

func sortBySeniority(chain []contract.ApprovalLevel) {
	sort.SliceStable(chain, func(i, j int) bool {
		return chain[i].Rank() < chain[j].Rank()
	})
}
