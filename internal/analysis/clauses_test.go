package analysis

import (
	"reflect"
	"testing"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
)

func TestExtractClauses(t *testing.T) {
	clauses := ExtractClauses(msaText)

	sections := make([]string, len(clauses))
	for i, clause := range clauses {
		sections[i] = clause.Section
	}
	want := []string{"TERM", "PAYMENT", "INDEMNIFICATION", "LIABILITY", "GOVERNING_LAW"}
	if !reflect.DeepEqual(sections, want) {
		t.Fatalf("expected sections %v, got %v", want, sections)
	}

	bySection := make(map[string]contract.Clause)
	for _, clause := range clauses {
		if clause.ID == "" {
			t.Errorf("clause %s has no ID", clause.Section)
		}
		bySection[clause.Section] = clause
	}

	if bySection["TERM"].Title != "Term" {
		t.Errorf("unexpected title %q", bySection["TERM"].Title)
	}
	if got := bySection["TERM"].RiskFlags; !reflect.DeepEqual(got, []string{"auto_renewal"}) {
		t.Errorf("TERM flags = %v", got)
	}
	if got := bySection["PAYMENT"].RiskFlags; !reflect.DeepEqual(got, []string{"high_interest_rate"}) {
		t.Errorf("PAYMENT flags = %v", got)
	}
	if got := bySection["INDEMNIFICATION"].RiskFlags; !reflect.DeepEqual(got, []string{"one_sided_indemnification"}) {
		t.Errorf("INDEMNIFICATION flags = %v", got)
	}
	if got := bySection["LIABILITY"].RiskFlags; !reflect.DeepEqual(got, []string{"unlimited_liability"}) {
		t.Errorf("LIABILITY flags = %v", got)
	}
	if !bySection["GOVERNING_LAW"].IsStandard {
		t.Error("governing law clause should be standard")
	}
	if bySection["LIABILITY"].IsStandard {
		t.Error("flagged clause must not be standard")
	}
}

func TestExtractClausesNoSections(t *testing.T) {
	if clauses := ExtractClauses("Plain prose with no numbered sections at all."); clauses != nil {
		t.Errorf("expected no clauses, got %v", clauses)
	}
}

func TestTermHeadingDoesNotMatchTermination(t *testing.T) {
	text := `AGREEMENT

1. TERMINATION
Either party may terminate with 30 days notice.
`
	clauses := ExtractClauses(text)
	if len(clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(clauses))
	}
	if clauses[0].Section != "TERMINATION" {
		t.Errorf("expected TERMINATION section, got %s", clauses[0].Section)
	}
}

func TestOneSidedIndemnificationMutualExcluded(t *testing.T) {
	mutual := "Customer shall indemnify Provider and each party shall bear its own losses."
	if oneSidedIndemnification(mutual) {
		t.Error("mutual indemnity wording should not flag")
	}

	oneSided := "Customer shall indemnify Provider against all claims."
	if !oneSidedIndemnification(oneSided) {
		t.Error("one-sided indemnity should flag")
	}

	if oneSidedIndemnification("The provider carries insurance.") {
		t.Error("no indemnity language should not flag")
	}
}

func TestCheckStandardTerms(t *testing.T) {
	flagged := contract.Clause{Text: "ordinary terms", RiskFlags: []string{"auto_renewal"}}
	if CheckStandardTerms(flagged) {
		t.Error("flagged clause is not standard")
	}

	risky := contract.Clause{Text: "Licensee receives a perpetual license at sole discretion."}
	if CheckStandardTerms(risky) {
		t.Error("risky phrasing is not standard")
	}

	clean := contract.Clause{Text: "Payment is due within 30 days of invoice."}
	if !CheckStandardTerms(clean) {
		t.Error("clean clause should be standard")
	}
}

func TestCompareVersions(t *testing.T) {
	oldText := "line one\nline two\nline three"
	newText := "line one\nline 2\nline three\nline four"

	changes := CompareVersions(oldText, newText)
	want := []string{
		"Removed: line two",
		"Added: line 2",
		"Added: line four",
	}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("expected %v, got %v", want, changes)
	}
}

func TestCompareVersionsIdentical(t *testing.T) {
	if changes := CompareVersions("same\ntext", "same\ntext"); changes != nil {
		t.Errorf("expected no changes, got %v", changes)
	}
}
