package risk

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
)

// Aggregate computes the overall risk level from clause-level findings
// using a weighted scoring model:
//
//	average score <= 1.5 -> low
//	average score <= 2.2 -> medium
//	average score <= 3.0 -> high
//	average score >  3.0 -> critical
//
// Any critical finding raises the result to at least high, as does any
// high finding when the average exceeds 2.0. Empty input is low.
func Aggregate(findings []contract.RiskFinding) contract.RiskLevel {
	if len(findings) == 0 {
		return contract.RiskLow
	}

	total := 0
	hasCritical := false
	hasHigh := false
	for _, finding := range findings {
		total += finding.RiskLevel.Rank()
		switch finding.RiskLevel {
		case contract.RiskCritical:
			hasCritical = true
		case contract.RiskHigh:
			hasHigh = true
		}
	}
	avg := float64(total) / float64(len(findings))

	var overall contract.RiskLevel
	switch {
	case hasCritical:
		overall = contract.MaxRisk(contract.RiskHigh, scoreToLevel(avg))
	case hasHigh && avg > 2.0:
		overall = contract.RiskHigh
	default:
		overall = scoreToLevel(avg)
	}

	log.Printf("risk: matrix assessments=%d avg=%.2f overall=%s", len(findings), avg, overall)
	return overall
}

func scoreToLevel(score float64) contract.RiskLevel {
	switch {
	case score <= 1.5:
		return contract.RiskLow
	case score <= 2.2:
		return contract.RiskMedium
	case score <= 3.0:
		return contract.RiskHigh
	default:
		return contract.RiskCritical
	}
}

var (
	dollarPattern     = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`)
	unlimitedPattern  = regexp.MustCompile(`(?i)unlimited|no limit|without limit`)
	multiplierPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:times|x)\s*(?:the|total|annual)`)
)

// EstimateLiability estimates potential exposure from clause text: the sum
// of explicit dollar amounts, floored at $10M when unlimited-liability
// language is present, scaled by any fee-multiplier wording.
func EstimateLiability(clauseText string) float64 {
	total := 0.0
	for _, amount := range dollarPattern.FindAllString(clauseText, -1) {
		cleaned := strings.NewReplacer("$", "", ",", "").Replace(amount)
		value, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		total += value
	}

	if unlimitedPattern.MatchString(clauseText) {
		if total < 10_000_000 {
			total = 10_000_000
		}
		log.Printf("risk: unlimited liability language, estimated exposure %.0f", total)
	}

	if match := multiplierPattern.FindStringSubmatch(clauseText); match != nil && total > 0 {
		multiplier, err := strconv.Atoi(match[1])
		if err == nil {
			total *= float64(multiplier)
		}
	}
	return total
}
