package risk

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
)

type complianceRequirement struct {
	name    string
	pattern *regexp.Regexp
}

var gdprRequirements = []complianceRequirement{
	{"data_processing_basis", regexp.MustCompile(`(?i)lawful\s+basis|legitimate\s+interest|consent|contract\s+necessity`)},
	{"breach_notification", regexp.MustCompile(`(?i)(?:72|seventy.two)\s*hours?|breach\s+notif|data\s+breach`)},
	{"data_subject_rights", regexp.MustCompile(`(?i)data\s+subject|right\s+to\s+(?:access|erasure|portability|rectification)`)},
	{"sub_processor", regexp.MustCompile(`(?i)sub.?processor|sub.?contractor.*?data|third.party.*?process`)},
	{"international_transfer", regexp.MustCompile(`(?i)standard\s+contractual|adequacy\s+decision|binding\s+corporate|data\s+transfer`)},
}

var soxRequirements = []complianceRequirement{
	{"financial_controls", regexp.MustCompile(`(?i)internal\s+control|financial\s+reporting|audit\s+trail`)},
	{"record_retention", regexp.MustCompile(`(?i)record\s+retention|document\s+preservation|data\s+retention`)},
	{"segregation_of_duties", regexp.MustCompile(`(?i)segregation\s+of\s+duties|separation\s+of\s+duties`)},
}

var generalRequirements = []complianceRequirement{
	{"governing_law", regexp.MustCompile(`(?i)governing\s+law|applicable\s+law|jurisdiction`)},
	{"dispute_resolution", regexp.MustCompile(`(?i)dispute\s+resolution|arbitration|mediation`)},
	{"force_majeure", regexp.MustCompile(`(?i)force\s+majeure`)},
	{"assignment", regexp.MustCompile(`(?i)assignment|transfer\s+of\s+(?:rights|obligations)`)},
	{"entire_agreement", regexp.MustCompile(`(?i)entire\s+agreement|whole\s+agreement|integration\s+clause`)},
}

var dataKeywords = regexp.MustCompile(`(?i)personal\s+data|customer\s+data|user\s+data|PII|data\s+process|GDPR|CCPA|privacy`)

// checkCompliance scans the contract for regulatory gaps. GDPR checks run
// when the contract processes personal data, SOX checks when financial
// controls are in scope, and general best-practice checks always.
func checkCompliance(analysis *contract.Analysis) []contract.RiskFinding {
	texts := make([]string, len(analysis.Clauses))
	for i, clause := range analysis.Clauses {
		texts[i] = clause.Text
	}
	fullText := strings.Join(texts, " ")

	var issues []contract.RiskFinding
	if involvesDataProcessing(fullText, analysis.ContractType) {
		issues = append(issues, checkGDPR(fullText, analysis.Clauses)...)
	}
	if involvesFinancialControls(analysis) {
		issues = append(issues, checkSOX(fullText, analysis.Clauses)...)
	}
	issues = append(issues, checkGeneral(fullText, analysis.Clauses)...)
	return issues
}

func involvesDataProcessing(fullText string, contractType contract.Type) bool {
	if contractType == contract.TypeSaaS || contractType == contract.TypeVendorMSA {
		return true
	}
	return dataKeywords.MatchString(fullText)
}

func involvesFinancialControls(analysis *contract.Analysis) bool {
	return analysis.TotalValue >= 100_000 ||
		analysis.ContractType == contract.TypeVendorMSA ||
		analysis.ContractType == contract.TypeSaaS
}

func checkGDPR(fullText string, clauses []contract.Clause) []contract.RiskFinding {
	var issues []contract.RiskFinding
	for _, req := range gdprRequirements {
		if req.pattern.MatchString(fullText) {
			continue
		}
		readable := readableName(req.name)
		issues = append(issues, contract.RiskFinding{
			ClauseID:  relevantClauseID(clauses, "data_protection", "confidentiality", "obligations"),
			RiskLevel: contract.RiskHigh,
			Description: fmt.Sprintf(
				"GDPR compliance gap: Missing '%s' provision. Contracts involving personal "+
					"data processing must include explicit %s requirements under GDPR Art. 28.",
				readable, strings.ToLower(readable),
			),
			Recommendation: fmt.Sprintf(
				"Add a Data Processing Addendum (DPA) that includes %s provisions. Reference "+
					"standard contractual clauses approved by the European Commission.",
				strings.ToLower(readable),
			),
		})
	}
	return issues
}

func checkSOX(fullText string, clauses []contract.Clause) []contract.RiskFinding {
	var issues []contract.RiskFinding
	for _, req := range soxRequirements {
		if req.pattern.MatchString(fullText) {
			continue
		}
		readable := readableName(req.name)
		issues = append(issues, contract.RiskFinding{
			ClauseID:  relevantClauseID(clauses, "payment", "scope", "obligations"),
			RiskLevel: contract.RiskMedium,
			Description: fmt.Sprintf(
				"SOX compliance gap: Missing '%s' provision. Contracts exceeding $100K "+
					"should include %s requirements for regulatory compliance.",
				readable, strings.ToLower(readable),
			),
			Recommendation: fmt.Sprintf(
				"Add %s clause requiring the vendor to maintain adequate controls and "+
					"provide audit access.",
				strings.ToLower(readable),
			),
		})
	}
	return issues
}

func checkGeneral(fullText string, clauses []contract.Clause) []contract.RiskFinding {
	var issues []contract.RiskFinding
	for _, req := range generalRequirements {
		if req.pattern.MatchString(fullText) {
			continue
		}
		readable := readableName(req.name)
		issues = append(issues, contract.RiskFinding{
			ClauseID:  relevantClauseID(clauses, req.name),
			RiskLevel: contract.RiskLow,
			Description: fmt.Sprintf(
				"Missing standard clause: '%s'. While not always legally required, this "+
					"clause is considered best practice and is present in most enterprise "+
					"agreements.",
				readable,
			),
			Recommendation: fmt.Sprintf(
				"Consider adding a '%s' clause to strengthen the agreement and reduce ambiguity.",
				readable,
			),
		})
	}
	return issues
}

func relevantClauseID(clauses []contract.Clause, preferredSections ...string) string {
	for _, section := range preferredSections {
		for _, clause := range clauses {
			if strings.Contains(strings.ToLower(clause.Section), strings.ToLower(section)) {
				return clause.ID
			}
		}
	}
	if len(clauses) > 0 {
		return clauses[0].ID
	}
	return "COMPLIANCE"
}

func readableName(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
