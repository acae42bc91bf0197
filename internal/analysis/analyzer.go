// Package analysis extracts structured contract metadata and clauses from
// raw text using regex heuristics, so the pipeline runs without any
// external service.
package analysis

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/util"
)

// Contract type detection patterns, checked in order; first match wins.
var typePatterns = []struct {
	ctype   contract.Type
	pattern *regexp.Regexp
}{
	{contract.TypeNDA, regexp.MustCompile(`(?i)non-disclosure\s+agreement|\bnda\b|confidentiality\s+agreement`)},
	{contract.TypeSaaS, regexp.MustCompile(`(?i)saas\s+agreement|software.as.a.service|subscription\s+agreement`)},
	{contract.TypeVendorMSA, regexp.MustCompile(`(?i)master\s+service\s+agreement|\bmsa\b|vendor\s+agreement`)},
	{contract.TypeEmployment, regexp.MustCompile(`(?i)employment\s+agreement|offer\s+letter|employment\s+contract`)},
	{contract.TypeConsulting, regexp.MustCompile(`(?i)consulting\s+agreement|consultant\s+contract|independent\s+contractor`)},
	{contract.TypeLicensing, regexp.MustCompile(`(?i)licen[sc]ing\s+agreement|license\s+agreement|licen[sc]e\s+grant`)},
}

var partyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)by\s+and\s+between\s+(.+?)\s*\(".*?"\)\s+and\s+(.+?)\s*\(".*?"\)`),
	regexp.MustCompile(`(?i)between\s+(.+?)\s*\(".*?"\)\s+and\s+(.+?)\s*\(".*?"\)`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:effective\s+(?:date|as\s+of)|entered\s+into\s+as\s+of|commenc(?:e|ing)\s+on)\s+(\w+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)(?:as\s+of)\s+(\w+\s+\d{1,2},?\s+\d{4})`),
}

var expirationPattern = regexp.MustCompile(`(?i)(?:initial\s+term\s+of|continue\s+for)\s+(?:an?\s+)?([\w-]+)\s*\(?\d*\)?\s*(?:months?|years?)`)

var termWordToMonths = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4,
	"six": 6, "twelve": 12, "twenty-four": 24,
	"twenty": 20, "thirty-six": 36,
}

var valuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:total\s+(?:contract\s+)?value|total\s+compensation)[:\s]*\$?([\d,]+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)\$([\d,]+(?:\.\d+)?)\s*(?:annually|per\s+year|per\s+annum)`),
	regexp.MustCompile(`(?i)(?:annual|yearly)\s+.*?\$?([\d,]+(?:\.\d+)?)`),
}

// Analyst performs full contract analysis: type, parties, dates, value and
// clause extraction.
type Analyst struct{}

func NewAnalyst() *Analyst {
	return &Analyst{}
}

func (a *Analyst) Analyze(ctx context.Context, text string) (*contract.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contractType := detectContractType(text)
	parties := extractParties(text)
	clauses := ExtractClauses(text)
	totalValue := extractValue(text)

	analysis := &contract.Analysis{
		ContractType:   contractType,
		Parties:        parties,
		EffectiveDate:  extractEffectiveDate(text),
		ExpirationDate: extractExpirationDate(text),
		TotalValue:     totalValue,
		Clauses:        clauses,
		Summary:        generateSummary(contractType, parties, clauses, totalValue),
	}

	log.Printf("analysis: type=%s parties=%d clauses=%d value=%.2f",
		contractType, len(parties), len(clauses), totalValue)
	return analysis, nil
}

func detectContractType(text string) contract.Type {
	for _, candidate := range typePatterns {
		if candidate.pattern.MatchString(text) {
			return candidate.ctype
		}
	}
	return contract.TypeConsulting
}

func extractParties(text string) []string {
	for _, pattern := range partyPatterns {
		match := pattern.FindStringSubmatch(text)
		if match != nil {
			return []string{strings.TrimSpace(match[1]), strings.TrimSpace(match[2])}
		}
	}
	return nil
}

func extractEffectiveDate(text string) string {
	for _, pattern := range datePatterns {
		match := pattern.FindStringSubmatch(text)
		if match != nil {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}

func extractExpirationDate(text string) string {
	match := expirationPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	termWord := strings.ToLower(match[1])
	months, ok := termWordToMonths[termWord]
	if !ok {
		parsed, err := strconv.Atoi(termWord)
		if err != nil {
			parsed = 12
		}
		months = parsed
	}
	return fmt.Sprintf("%d months from effective date", months)
}

func extractValue(text string) float64 {
	for _, pattern := range valuePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			continue
		}
		return value
	}
	return 0
}

func generateSummary(contractType contract.Type, parties []string, clauses []contract.Clause, totalValue float64) string {
	partyStr := "Unknown parties"
	if len(parties) > 0 {
		partyStr = strings.Join(parties, " and ")
	}

	riskyCount := 0
	flagSet := map[string]struct{}{}
	var uniqueFlags []string
	for _, clause := range clauses {
		if !clause.IsStandard {
			riskyCount++
		}
		for _, flag := range clause.RiskFlags {
			if _, seen := flagSet[flag]; !seen {
				flagSet[flag] = struct{}{}
				uniqueFlags = append(uniqueFlags, flag)
			}
		}
	}
	standardCount := len(clauses) - riskyCount

	parts := []string{
		fmt.Sprintf("This is a %s between %s.", typeLabel(contractType), partyStr),
	}
	if totalValue > 0 {
		parts = append(parts, fmt.Sprintf("Total contract value: $%s.", util.FormatUSD(totalValue)))
	}
	parts = append(parts, fmt.Sprintf(
		"The contract contains %d identified clauses: %d standard and %d requiring review.",
		len(clauses), standardCount, riskyCount,
	))

	if len(uniqueFlags) > 0 {
		readable := make([]string, len(uniqueFlags))
		for i, flag := range uniqueFlags {
			readable[i] = strings.ReplaceAll(flag, "_", " ")
		}
		parts = append(parts, fmt.Sprintf("Risk flags identified: %s.", strings.Join(readable, ", ")))
	}

	if riskyCount > 0 {
		parts = append(parts, "Recommendation: Engage risk assessment and negotiation teams before proceeding with execution.")
	} else {
		parts = append(parts, "Overall assessment: Contract terms appear standard and low-risk.")
	}
	return strings.Join(parts, " ")
}

func typeLabel(contractType contract.Type) string {
	return titleFromSection(strings.ToUpper(string(contractType)))
}
