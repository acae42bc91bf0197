// Package risk evaluates extracted clauses against static rule tables,
// checks regulatory compliance gaps, and aggregates clause findings into
// an overall risk level.
package risk

import (
	"context"
	"fmt"
	"log"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/util"
)

type riskRule struct {
	Flag           string
	Level          contract.RiskLevel
	Description    string
	Recommendation string
	PrecedentKey   string
}

var riskRules = []riskRule{
	{
		Flag:  "unlimited_liability",
		Level: contract.RiskCritical,
		Description: "Unlimited liability clause exposes the organization to uncapped " +
			"financial risk. This includes direct, indirect, consequential, and " +
			"incidental damages without any ceiling.",
		Recommendation: "Negotiate a liability cap tied to 12 months of fees paid. Exclude " +
			"consequential and indirect damages. Add carve-outs only for gross " +
			"negligence, willful misconduct, and IP infringement.",
		PrecedentKey: "unlimited_liability",
	},
	{
		Flag:  "auto_renewal",
		Level: contract.RiskMedium,
		Description: "Auto-renewal clause may lock the organization into extended terms " +
			"with insufficient notice period. Risk of being bound to unfavorable " +
			"pricing or terms after initial period.",
		Recommendation: "Extend the non-renewal notice period to at least 60 days. Add a " +
			"cap on price increases upon renewal (e.g., 5% or CPI). Include " +
			"right to renegotiate terms at each renewal.",
		PrecedentKey: "auto_renewal",
	},
	{
		Flag:  "unilateral_termination",
		Level: contract.RiskHigh,
		Description: "Vendor/provider has the right to terminate without cause, creating " +
			"business continuity risk. Customer may face unexpected service " +
			"disruption and migration costs.",
		Recommendation: "Negotiate mutual termination rights. Require minimum 90-day notice " +
			"for termination without cause. Add transition assistance obligations " +
			"and data export provisions.",
		PrecedentKey: "termination",
	},
	{
		Flag:  "broad_non_compete",
		Level: contract.RiskHigh,
		Description: "Non-compete clause is overly broad in geographic scope (worldwide) " +
			"or market coverage (any market segment). May be unenforceable in " +
			"certain jurisdictions and restricts business opportunities.",
		Recommendation: "Narrow the scope to specific product categories and geographic " +
			"regions where the other party actively operates. Many jurisdictions " +
			"will not enforce overly broad non-competes.",
		PrecedentKey: "non_compete",
	},
	{
		Flag:  "long_non_compete",
		Level: contract.RiskHigh,
		Description: "Non-compete duration exceeds 12 months, which courts in many " +
			"jurisdictions consider unreasonable. Extended non-compete periods " +
			"may be struck down entirely rather than modified.",
		Recommendation: "Reduce non-compete duration to 12 months maximum. Courts in " +
			"California, for example, generally refuse to enforce non-competes " +
			"entirely. Even in enforceable jurisdictions, 12 months is the " +
			"typical maximum.",
		PrecedentKey: "non_compete",
	},
	{
		Flag:  "one_sided_indemnification",
		Level: contract.RiskHigh,
		Description: "Indemnification obligations are one-sided, requiring only one party " +
			"to indemnify the other. This creates an unbalanced risk allocation " +
			"that may include indemnification for the other party's negligence.",
		Recommendation: "Negotiate mutual indemnification where each party indemnifies for " +
			"its own negligence, breach, and legal violations. Add a requirement " +
			"for the indemnified party to mitigate damages.",
		PrecedentKey: "indemnification",
	},
	{
		Flag:  "broad_confidentiality",
		Level: contract.RiskMedium,
		Description: "Confidentiality definition is overly broad, covering 'ALL information " +
			"in ANY form.' This may be unenforceable and creates compliance burden " +
			"for tracking what constitutes confidential information.",
		Recommendation: "Define confidential information with reasonable specificity. Include " +
			"standard exclusions for publicly available information, independently " +
			"developed information, and information received from third parties.",
		PrecedentKey: "confidentiality_scope",
	},
	{
		Flag:  "ip_favors_provider",
		Level: contract.RiskHigh,
		Description: "IP ownership clause assigns all intellectual property exclusively to " +
			"the provider, including customizations and integrations developed " +
			"for and paid by the customer.",
		Recommendation: "Negotiate work-for-hire provisions where customer-funded work product " +
			"is owned by customer. Provider retains pre-existing IP and general " +
			"know-how. Clearly define boundaries between pre-existing and new IP.",
		PrecedentKey: "ip_ownership",
	},
	{
		Flag:  "high_interest_rate",
		Level: contract.RiskMedium,
		Description: "Late payment interest rate exceeds typical commercial rates and may " +
			"exceed usury limits in some jurisdictions (e.g., 1.5% per month = " +
			"18% annually).",
		Recommendation: "Negotiate interest rate to prime rate + 2% or 1% per month maximum. " +
			"Ensure compliance with applicable usury laws.",
		PrecedentKey: "limitation_of_liability",
	},
	{
		Flag:  "missing_data_protection",
		Level: contract.RiskLow,
		Description: "Contract references data protection or GDPR compliance, which is " +
			"standard for agreements involving personal data processing.",
		Recommendation: "Verify data protection provisions include: lawful basis for " +
			"processing, data breach notification (72 hours), sub-processor " +
			"controls, data subject rights, and international transfer safeguards.",
		PrecedentKey: "data_protection",
	},
}

// Assessor evaluates clause risk and compliance using the static rule
// tables and the precedent database.
type Assessor struct{}

func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess produces clause-level findings and compliance findings for an
// analyzed contract.
func (a *Assessor) Assess(ctx context.Context, analysis *contract.Analysis) ([]contract.RiskFinding, []contract.RiskFinding, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	clauseFindings := a.assessClauses(analysis.Clauses)
	complianceFindings := checkCompliance(analysis)

	highOrWorse := 0
	for _, finding := range clauseFindings {
		if finding.RiskLevel.AtLeast(contract.RiskHigh) {
			highOrWorse++
		}
	}
	log.Printf("risk: assessed clauses=%d findings=%d high_or_critical=%d compliance_issues=%d",
		len(analysis.Clauses), len(clauseFindings), highOrWorse, len(complianceFindings))
	return clauseFindings, complianceFindings, nil
}

// Aggregate implements the provider interface used by the lifecycle
// machine.
func (a *Assessor) Aggregate(findings []contract.RiskFinding) contract.RiskLevel {
	return Aggregate(findings)
}

func (a *Assessor) assessClauses(clauses []contract.Clause) []contract.RiskFinding {
	var findings []contract.RiskFinding
	for _, clause := range clauses {
		if len(clause.RiskFlags) == 0 {
			findings = append(findings, contract.RiskFinding{
				ClauseID: clause.ID,
				RiskLevel: contract.RiskLow,
				Description: fmt.Sprintf(
					"Clause '%s' uses standard terms with no identified risk flags.",
					clause.Title,
				),
				Recommendation: "No changes required. Terms are commercially standard.",
			})
			continue
		}

		for _, flag := range clause.RiskFlags {
			rule, ok := findRule(flag)
			if !ok {
				continue
			}

			description := rule.Description
			if liability := EstimateLiability(clause.Text); liability > 0 {
				description += fmt.Sprintf(" Estimated liability exposure: $%s.", util.FormatUSD(liability))
			}

			findings = append(findings, contract.RiskFinding{
				ClauseID:           clause.ID,
				RiskLevel:          rule.Level,
				Description:        description,
				Recommendation:     rule.Recommendation,
				PrecedentReference: LookupPrecedent(rule.PrecedentKey),
			})
		}
	}
	return findings
}

func findRule(flag string) (riskRule, bool) {
	for _, rule := range riskRules {
		if rule.Flag == flag {
			return rule, true
		}
	}
	return riskRule{}, false
}
