// Package templates holds the standard clause catalog. The safe clause
// texts are the negotiation fallback language proposed when a contract
// carries risky terms.
package templates

import (
	"log"
	"regexp"
	"strings"
)

const (
	limitationOfLiabilitySafe = "Each party's total aggregate liability under this Agreement shall not exceed " +
		"the total fees paid or payable during the twelve (12) months preceding the " +
		"event giving rise to the claim. In no event shall either party be liable for " +
		"any indirect, incidental, special, consequential, or punitive damages."

	autoRenewalSafe = "This Agreement shall renew for successive twelve-month periods unless either " +
		"party provides written notice of non-renewal at least sixty (60) days prior " +
		"to the end of the then-current term. Upon renewal, pricing adjustments shall " +
		"not exceed 5% of the prior term's fees without mutual written agreement."

	nonCompeteSafe = "For twelve (12) months following termination, neither party shall directly " +
		"compete with the other party in the specific product categories that were " +
		"the subject of this Agreement, limited to the geographic regions where the " +
		"other party actively conducts business."

	terminationBalanced = "Either party may terminate this Agreement (a) for cause upon thirty (30) days " +
		"written notice if the other party materially breaches any provision and fails " +
		"to cure within the notice period, or (b) for convenience upon sixty (60) days " +
		"written notice. Upon termination for convenience, the terminating party shall " +
		"pay for all services rendered through the effective date of termination."

	ipOwnershipBalanced = "All pre-existing intellectual property remains the property of the originating " +
		"party. Work product created specifically for and paid for by Customer under " +
		"this Agreement shall be owned by Customer upon full payment. Provider retains " +
		"ownership of its pre-existing tools, methodologies, and general know-how."

	confidentialityStandard = "Each party agrees to maintain the confidentiality of the other party's " +
		"proprietary information using at least the same degree of care it uses to " +
		"protect its own confidential information, but no less than reasonable care. " +
		"This obligation shall survive termination for a period of three (3) years, " +
		"except for trade secrets which shall be protected indefinitely."

	indemnificationMutual = "Each party shall indemnify, defend, and hold harmless the other party from " +
		"any third-party claims, damages, losses, and reasonable expenses (including " +
		"attorney fees) arising from the indemnifying party's (a) negligence or willful " +
		"misconduct, (b) breach of this Agreement, or (c) violation of applicable law."

	slaWithTeeth = "Provider guarantees 99.9% uptime availability measured monthly. If availability " +
		"falls below the guaranteed level: (a) below 99.9%: 10% service credit; " +
		"(b) below 99.5%: 25% service credit; (c) below 99.0%: Customer may terminate " +
		"without penalty. Service credits are applied to the next invoice and are " +
		"Customer's sole remedy for downtime."

	dataProtectionGDPR = "Provider shall process personal data only on documented instructions from " +
		"Customer. Provider shall implement appropriate technical and organizational " +
		"measures to ensure a level of security appropriate to the risk, including " +
		"encryption of data in transit and at rest. Provider shall notify Customer " +
		"within 72 hours of becoming aware of any personal data breach."

	forceMajeureStandard = "Neither party shall be liable for any delay or failure to perform its " +
		"obligations under this Agreement due to causes beyond its reasonable control, " +
		"including natural disasters, war, terrorism, pandemics, government actions, " +
		"or infrastructure failures. The affected party shall promptly notify the other " +
		"party and use commercially reasonable efforts to resume performance."
)

// Catalog maps contract types to their standard clause templates.
var Catalog = map[string]map[string]string{
	"saas_agreement": {
		"limitation_of_liability": limitationOfLiabilitySafe,
		"auto_renewal":            autoRenewalSafe,
		"termination":             terminationBalanced,
		"ip_ownership":            ipOwnershipBalanced,
		"confidentiality":         confidentialityStandard,
		"indemnification":         indemnificationMutual,
		"sla":                     slaWithTeeth,
		"data_protection":         dataProtectionGDPR,
		"force_majeure":           forceMajeureStandard,
	},
	"nda": {
		"confidentiality": confidentialityStandard,
		"non_compete":     nonCompeteSafe,
		"termination":     terminationBalanced,
	},
	"vendor_msa": {
		"limitation_of_liability": limitationOfLiabilitySafe,
		"termination":             terminationBalanced,
		"ip_ownership":            ipOwnershipBalanced,
		"sla":                     slaWithTeeth,
		"indemnification":         indemnificationMutual,
		"data_protection":         dataProtectionGDPR,
		"force_majeure":           forceMajeureStandard,
	},
	"employment": {
		"non_compete":     nonCompeteSafe,
		"confidentiality": confidentialityStandard,
		"ip_ownership":    ipOwnershipBalanced,
		"termination":     terminationBalanced,
	},
	"consulting": {
		"limitation_of_liability": limitationOfLiabilitySafe,
		"termination":             terminationBalanced,
		"ip_ownership":            ipOwnershipBalanced,
		"confidentiality":         confidentialityStandard,
		"indemnification":         indemnificationMutual,
	},
	"licensing": {
		"limitation_of_liability": limitationOfLiabilitySafe,
		"termination":             terminationBalanced,
		"ip_ownership":            ipOwnershipBalanced,
		"confidentiality":         confidentialityStandard,
		"indemnification":         indemnificationMutual,
	},
}

func normalize(name string) string {
	lowered := strings.ToLower(name)
	lowered = strings.ReplaceAll(lowered, " ", "_")
	return strings.ReplaceAll(lowered, "-", "_")
}

// ForType returns a copy of the clause templates for a contract type, or
// an empty map for unknown types.
func ForType(contractType string) map[string]string {
	set, ok := Catalog[normalize(contractType)]
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(set))
	for name, text := range set {
		out[name] = text
	}
	return out
}

// StandardClauses returns the clause names expected for a contract type.
func StandardClauses(contractType string) []string {
	set := ForType(contractType)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	return names
}

// SafeClauseText returns the safe wording for a clause category, or empty
// when the catalog has none for that type.
func SafeClauseText(contractType, clauseName string) string {
	return ForType(contractType)[normalize(clauseName)]
}

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Merge replaces {{name}} placeholders with values from vars. Unresolved
// placeholders are left in place.
func Merge(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	if remaining := placeholderPattern.FindAllString(result, -1); len(remaining) > 0 {
		log.Printf("templates: unresolved placeholders %v", remaining)
	}
	return result
}
