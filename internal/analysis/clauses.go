package analysis

import (
	"regexp"
	"strings"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/util"
)

// Section heading patterns. Extraction order follows this list, so the
// resulting clause order is stable.
var sectionPatterns = []struct {
	name    string
	heading *regexp.Regexp
}{
	{"TERM", headingPattern(`TERM\b|RENEWAL|DURATION`)},
	{"PAYMENT", headingPattern(`PAYMENT|COMPENSATION|FEES|PRICING`)},
	{"CONFIDENTIALITY", headingPattern(`CONFIDENTIALITY|CONFIDENTIAL|NON-DISCLOSURE`)},
	{"INDEMNIFICATION", headingPattern(`INDEMNIFICATION|INDEMNIFY`)},
	{"TERMINATION", headingPattern(`TERMINATION`)},
	{"LIABILITY", headingPattern(`LIMITATION OF LIABILITY|LIABILITY`)},
	{"IP", headingPattern(`INTELLECTUAL PROPERTY|IP OWNERSHIP`)},
	{"WARRANTY", headingPattern(`WARRANTY|WARRANTIES`)},
	{"GOVERNING_LAW", headingPattern(`GOVERNING LAW|JURISDICTION|APPLICABLE LAW`)},
	{"FORCE_MAJEURE", headingPattern(`FORCE MAJEURE`)},
	{"NON_COMPETE", headingPattern(`NON-COMPETE|NON COMPETE|NONCOMPETE`)},
	{"NON_SOLICITATION", headingPattern(`NON-SOLICITATION|NON SOLICITATION`)},
	{"SLA", headingPattern(`SERVICE LEVEL|SLA|UPTIME`)},
	{"DATA_PROTECTION", headingPattern(`DATA PROTECTION|DATA PRIVACY|GDPR`)},
	{"EQUITY", headingPattern(`EQUITY|STOCK OPTION|SHARES`)},
	{"BENEFITS", headingPattern(`BENEFITS`)},
	{"SCOPE", headingPattern(`SCOPE OF SERVICES|SCOPE|DUTIES|POSITION`)},
	{"DEFINITION", headingPattern(`DEFINITION|DEFINITIONS`)},
	{"OBLIGATIONS", headingPattern(`OBLIGATIONS`)},
	{"REMEDIES", headingPattern(`REMEDIES`)},
}

func headingPattern(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?mi)^[ \t]*\d+\.?[ \t]*(?:` + alternatives + `)[^\n]*$`)
}

// nextHeading marks where the following numbered section begins.
var nextHeading = regexp.MustCompile(`\n[ \t]*\d+\.[ \t]+[A-Z]`)

// Risk flag checks applied to extracted clause text, in flag order.
var riskFlagChecks = []struct {
	name  string
	match func(string) bool
}{
	{"unlimited_liability", regexp.MustCompile(`(?i)unlimited|no limit|without limit`).MatchString},
	{"auto_renewal", regexp.MustCompile(`(?i)automatically renew|auto[- ]?renew`).MatchString},
	{"unilateral_termination", regexp.MustCompile(`(?i)(?:provider|vendor|company)\s+may\s+terminate.*?without\s+cause`).MatchString},
	{"broad_non_compete", regexp.MustCompile(`(?i)worldwide|global|any market`).MatchString},
	{"long_non_compete", regexp.MustCompile(`(?i)(?:thirty-six|36|twenty-four|24|48|forty-eight)\s*(?:\(\d+\))?\s*months?\s*(?:following|after)`).MatchString},
	{"one_sided_indemnification", oneSidedIndemnification},
	{"broad_confidentiality", regexp.MustCompile(`(?i)ALL\s+information\s+(?:disclosed\s+)?(?:by\s+either\s+party\s+)?in\s+ANY\s+form`).MatchString},
	{"ip_favors_provider", regexp.MustCompile(`(?i)owned\s+exclusively\s+by\s+(?:provider|vendor|company)`).MatchString},
	{"high_interest_rate", regexp.MustCompile(`(?i)(?:1\.5%|2%|1\.75%)\s*per\s*month`).MatchString},
	{"missing_data_protection", regexp.MustCompile(`(?i)GDPR|data\s+protection|CCPA`).MatchString},
}

var oneSidedIndemnity = regexp.MustCompile(`(?i)(?:customer|client|employee)\s+shall\s+indemnify`)

// oneSidedIndemnification matches indemnity language that names a single
// obligated party with no mutuality wording on the same line.
func oneSidedIndemnification(text string) bool {
	loc := oneSidedIndemnity.FindStringIndex(text)
	if loc == nil {
		return false
	}
	rest := strings.ToLower(text[loc[1]:])
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return !strings.Contains(rest, "each party") && !strings.Contains(rest, "mutual")
}

// ExtractClauses scans the contract text for known section headings and
// returns the body of each section found, tagged with risk flags. A clause
// with no flags is standard.
func ExtractClauses(text string) []contract.Clause {
	var clauses []contract.Clause

	for _, section := range sectionPatterns {
		loc := section.heading.FindStringIndex(text)
		if loc == nil {
			continue
		}

		body := text[loc[1]:]
		if boundary := nextHeading.FindStringIndex(body); boundary != nil {
			body = body[:boundary[0]]
		}
		clauseText := strings.TrimSpace(body)
		if clauseText == "" {
			continue
		}

		riskFlags := detectRiskFlags(clauseText)
		clauses = append(clauses, contract.Clause{
			ID:         util.NewShortID(),
			Title:      titleFromSection(section.name),
			Text:       clauseText,
			Section:    section.name,
			IsStandard: len(riskFlags) == 0,
			RiskFlags:  riskFlags,
		})
	}
	return clauses
}

func detectRiskFlags(clauseText string) []string {
	var flags []string
	for _, flag := range riskFlagChecks {
		if flag.match(clauseText) {
			flags = append(flags, flag.name)
		}
	}
	return flags
}

func titleFromSection(section string) string {
	words := strings.Split(strings.ToLower(strings.ReplaceAll(section, "_", " ")), " ")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// Risky phrases checked in addition to flag patterns.
var riskyPhrases = []string{
	"unlimited",
	"without limitation",
	"sole discretion",
	"irrevocable",
	"perpetual license",
	"worldwide",
	"any and all claims",
}

// CheckStandardTerms reports whether a clause appears to use standard,
// commercially safe terms.
func CheckStandardTerms(clause contract.Clause) bool {
	if len(clause.RiskFlags) > 0 {
		return false
	}
	textLower := strings.ToLower(clause.Text)
	for _, phrase := range riskyPhrases {
		if strings.Contains(textLower, phrase) {
			return false
		}
	}
	return true
}

// CompareVersions diffs two contract texts line by line and returns
// human-readable change descriptions.
func CompareVersions(oldText, newText string) []string {
	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")

	var changes []string
	for _, op := range diffLines(oldLines, newLines) {
		switch op.kind {
		case diffRemoved:
			changes = append(changes, "Removed: "+strings.TrimSpace(op.line))
		case diffAdded:
			changes = append(changes, "Added: "+strings.TrimSpace(op.line))
		}
	}
	return changes
}

type diffKind int

const (
	diffEqual diffKind = iota
	diffRemoved
	diffAdded
)

type diffOp struct {
	kind diffKind
	line string
}

// diffLines computes a longest-common-subsequence diff over lines.
func diffLines(oldLines, newLines []string) []diffOp {
	rows := len(oldLines) + 1
	cols := len(newLines) + 1
	lcs := make([][]int, rows)
	for i := range lcs {
		lcs[i] = make([]int, cols)
	}
	for i := len(oldLines) - 1; i >= 0; i-- {
		for j := len(newLines) - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []diffOp
	i, j := 0, 0
	for i < len(oldLines) && j < len(newLines) {
		switch {
		case oldLines[i] == newLines[j]:
			ops = append(ops, diffOp{diffEqual, oldLines[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, diffOp{diffRemoved, oldLines[i]})
			i++
		default:
			ops = append(ops, diffOp{diffAdded, newLines[j]})
			j++
		}
	}
	for ; i < len(oldLines); i++ {
		ops = append(ops, diffOp{diffRemoved, oldLines[i]})
	}
	for ; j < len(newLines); j++ {
		ops = append(ops, diffOp{diffAdded, newLines[j]})
	}
	return ops
}
