// Package negotiation develops counter-positions for high-risk clauses,
// proposing safe template language and leverage points.
package negotiation

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/templates"
)

// Leverage point tables by risk flag.
var leveragePoints = map[string][]string{
	"unlimited_liability": {
		"Industry standard is capped liability at 12 months of fees",
		"Unlimited liability creates uninsurable risk and may require board approval",
		"Competing vendors offer capped liability as standard terms",
		"Reference PREC-001: TechCorp v. CloudServices showing enforcement risk",
	},
	"auto_renewal": {
		"30-day notice is insufficient for budget planning cycles",
		"Auto-renewal without price caps creates uncontrolled cost exposure",
		"Customer should have adequate time to evaluate alternatives",
		"Market rates may decrease, customer should not be locked into stale pricing",
	},
	"unilateral_termination": {
		"Unilateral termination creates unacceptable business continuity risk",
		"Migration costs can exceed the contract value itself",
		"Mutual termination rights are industry standard",
		"Reference PREC-005: VendorFirst case showing $1.5M transition costs",
	},
	"broad_non_compete": {
		"Worldwide non-compete is likely unenforceable in multiple jurisdictions",
		"Courts regularly strike down overly broad non-competes entirely",
		"Narrow scope protects legitimate interests while being enforceable",
		"Reference PREC-003: InnovateTech case limiting scope to specific segments",
	},
	"long_non_compete": {
		"Non-compete exceeding 12 months is considered unreasonable by most courts",
		"California does not enforce non-competes at all",
		"FTC has proposed rules limiting non-compete enforceability",
		"12-month maximum is the widely accepted commercial standard",
	},
	"one_sided_indemnification": {
		"Mutual indemnification is the commercial standard",
		"One-sided indemnification shifts all risk to one party unfairly",
		"Each party should be responsible for claims arising from its own conduct",
		"Reference PREC-008: ServiceCo case showing enforcement of one-sided terms",
	},
	"broad_confidentiality": {
		"Overly broad definitions have been held unenforceable",
		"Standard exclusions protect both parties from unreasonable obligations",
		"Reference PREC-009: DataLeaks case where broad definition failed",
		"Clear definitions reduce compliance burden for both parties",
	},
	"ip_favors_provider": {
		"Customer-funded customizations should be customer-owned work product",
		"Pre-existing IP vs. new work product distinction is industry standard",
		"Reference PREC-004: DevStudio case showing cost of ambiguous IP terms",
		"Clear IP ownership reduces future disputes and litigation risk",
	},
	"high_interest_rate": {
		"1.5% monthly (18% annual) may exceed usury limits in some states",
		"Prime rate + 2% is the typical commercial standard",
		"High interest rates create adversarial payment dynamics",
		"Market-rate interest is sufficient to incentivize timely payment",
	},
}

// Section names mapped to template clause keys.
var sectionTemplateKeys = map[string]string{
	"liability":       "limitation_of_liability",
	"term":            "auto_renewal",
	"termination":     "termination",
	"ip":              "ip_ownership",
	"confidentiality": "confidentiality",
	"indemnification": "indemnification",
	"sla":             "sla",
	"non_compete":     "non_compete",
	"data_protection": "data_protection",
}

const (
	maxCurrentTermsLen = 500
	maxRationaleLen    = 300
	maxLeveragePoints  = 5
)

// Strategist builds negotiation positions for high and critical findings.
type Strategist struct{}

func NewStrategist() *Strategist {
	return &Strategist{}
}

// Develop returns one position per high or critical finding whose clause
// exists. Proposed language comes from the safe template catalog for the
// contract type, falling back to the finding's recommendation.
func (s *Strategist) Develop(ctx context.Context, findings []contract.RiskFinding, clauses []contract.Clause, contractType contract.Type) ([]contract.NegotiationPosition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clauseByID := make(map[string]contract.Clause, len(clauses))
	for _, clause := range clauses {
		clauseByID[clause.ID] = clause
	}

	var positions []contract.NegotiationPosition
	for _, finding := range findings {
		if !finding.RiskLevel.AtLeast(contract.RiskHigh) {
			continue
		}
		clause, ok := clauseByID[finding.ClauseID]
		if !ok {
			continue
		}
		positions = append(positions, buildPosition(clause, finding, contractType))
	}

	log.Printf("negotiation: developed %d positions from %d findings", len(positions), len(findings))
	return positions, nil
}

func buildPosition(clause contract.Clause, finding contract.RiskFinding, contractType contract.Type) contract.NegotiationPosition {
	sectionKey := strings.ReplaceAll(strings.ToLower(clause.Section), " ", "_")
	proposed := templates.SafeClauseText(string(contractType), sectionKey)
	if proposed == "" {
		if mapped, ok := sectionTemplateKeys[sectionKey]; ok {
			proposed = templates.SafeClauseText(string(contractType), mapped)
		}
	}
	if proposed == "" {
		proposed = finding.Recommendation
	}

	var leverage []string
	for _, flag := range clause.RiskFlags {
		leverage = append(leverage, leveragePoints[flag]...)
	}
	if len(leverage) == 0 {
		leverage = []string{
			"Current terms deviate from industry standard",
			"Proposed alternative reduces risk for both parties",
			finding.Recommendation,
		}
	}
	if len(leverage) > maxLeveragePoints {
		leverage = leverage[:maxLeveragePoints]
	}

	return contract.NegotiationPosition{
		ClauseID:      clause.ID,
		CurrentTerms:  truncate(clause.Text, maxCurrentTermsLen),
		ProposedTerms: proposed,
		Rationale: fmt.Sprintf("Risk Level: %s. %s",
			strings.ToUpper(string(finding.RiskLevel)),
			truncate(finding.Description, maxRationaleLen),
		),
		LeveragePoints: leverage,
	}
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
