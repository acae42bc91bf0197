package risk

import (
	"context"
	"strings"
	"testing"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
)

func TestAssessFlaggedClause(t *testing.T) {
	analysis := &contract.Analysis{
		ContractType: contract.TypeConsulting,
		Clauses: []contract.Clause{
			{
				ID:        "c1",
				Title:     "Liability",
				Section:   "LIABILITY",
				Text:      "Liability is unlimited for all damages.",
				RiskFlags: []string{"unlimited_liability"},
			},
		},
	}

	clauseFindings, _, err := NewAssessor().Assess(context.Background(), analysis)
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if len(clauseFindings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(clauseFindings))
	}

	finding := clauseFindings[0]
	if finding.ClauseID != "c1" {
		t.Errorf("unexpected clause id %s", finding.ClauseID)
	}
	if finding.RiskLevel != contract.RiskCritical {
		t.Errorf("unlimited liability should be critical, got %s", finding.RiskLevel)
	}
	if !strings.Contains(finding.Description, "Estimated liability exposure: $10,000,000.00.") {
		t.Errorf("description missing liability estimate: %s", finding.Description)
	}
	if !strings.Contains(finding.PrecedentReference, "PREC-001") {
		t.Errorf("expected precedent reference, got %q", finding.PrecedentReference)
	}
}

func TestAssessStandardClause(t *testing.T) {
	analysis := &contract.Analysis{
		ContractType: contract.TypeConsulting,
		Clauses: []contract.Clause{
			{ID: "c1", Title: "Payment", Section: "PAYMENT", Text: "Net 30 payment terms."},
		},
	}

	clauseFindings, _, err := NewAssessor().Assess(context.Background(), analysis)
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if len(clauseFindings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(clauseFindings))
	}
	if clauseFindings[0].RiskLevel != contract.RiskLow {
		t.Errorf("unflagged clause should be low risk, got %s", clauseFindings[0].RiskLevel)
	}
	if !strings.Contains(clauseFindings[0].Description, "Clause 'Payment' uses standard terms") {
		t.Errorf("unexpected description: %s", clauseFindings[0].Description)
	}
}

func TestAssessUnknownFlagSkipped(t *testing.T) {
	analysis := &contract.Analysis{
		ContractType: contract.TypeConsulting,
		Clauses: []contract.Clause{
			{ID: "c1", Section: "SCOPE", Text: "text", RiskFlags: []string{"made_up_flag"}},
		},
	}
	clauseFindings, _, err := NewAssessor().Assess(context.Background(), analysis)
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if len(clauseFindings) != 0 {
		t.Errorf("unknown flags should produce no findings, got %d", len(clauseFindings))
	}
}

func TestComplianceGDPRGaps(t *testing.T) {
	analysis := &contract.Analysis{
		ContractType: contract.TypeSaaS,
		Clauses: []contract.Clause{
			{ID: "c1", Section: "SCOPE", Text: "The provider hosts the software."},
		},
	}

	issues := checkCompliance(analysis)

	var gdpr []contract.RiskFinding
	for _, issue := range issues {
		if strings.Contains(issue.Description, "GDPR compliance gap") {
			gdpr = append(gdpr, issue)
		}
	}
	if len(gdpr) != 5 {
		t.Fatalf("expected all 5 GDPR gaps for a SaaS contract, got %d", len(gdpr))
	}
	for _, issue := range gdpr {
		if issue.RiskLevel != contract.RiskHigh {
			t.Errorf("GDPR gaps should be high risk, got %s", issue.RiskLevel)
		}
		if issue.ClauseID != "c1" {
			t.Errorf("expected fallback to first clause, got %s", issue.ClauseID)
		}
		if !strings.Contains(issue.Recommendation, "Data Processing Addendum") {
			t.Errorf("recommendation missing DPA: %s", issue.Recommendation)
		}
	}
}

func TestComplianceGDPRSatisfied(t *testing.T) {
	analysis := &contract.Analysis{
		ContractType: contract.TypeSaaS,
		Clauses: []contract.Clause{
			{ID: "c1", Section: "DATA_PROTECTION", Text: "Processing rests on a lawful basis with consent. " +
				"Breach notification within 72 hours. Data subject rights to access and erasure are honored. " +
				"Sub-processor changes require notice. Transfers use standard contractual clauses."},
		},
	}

	issues := checkCompliance(analysis)
	for _, issue := range issues {
		if strings.Contains(issue.Description, "GDPR compliance gap") {
			t.Errorf("unexpected GDPR gap: %s", issue.Description)
		}
	}
}

func TestComplianceSOXTriggeredByValue(t *testing.T) {
	analysis := &contract.Analysis{
		ContractType: contract.TypeConsulting,
		TotalValue:   150_000,
		Clauses: []contract.Clause{
			{ID: "c1", Section: "PAYMENT", Text: "Fees payable quarterly."},
		},
	}

	issues := checkCompliance(analysis)
	soxCount := 0
	for _, issue := range issues {
		if strings.Contains(issue.Description, "SOX compliance gap") {
			soxCount++
			if issue.RiskLevel != contract.RiskMedium {
				t.Errorf("SOX gaps should be medium, got %s", issue.RiskLevel)
			}
		}
	}
	if soxCount != 3 {
		t.Errorf("expected 3 SOX gaps, got %d", soxCount)
	}
}

func TestComplianceGeneralAlwaysChecked(t *testing.T) {
	analysis := &contract.Analysis{
		ContractType: contract.TypeConsulting,
		Clauses: []contract.Clause{
			{ID: "c1", Section: "SCOPE", Text: "Consultant provides advisory services."},
		},
	}

	issues := checkCompliance(analysis)
	generalCount := 0
	for _, issue := range issues {
		if strings.Contains(issue.Description, "Missing standard clause") {
			generalCount++
			if issue.RiskLevel != contract.RiskLow {
				t.Errorf("general gaps should be low, got %s", issue.RiskLevel)
			}
		}
	}
	if generalCount != 5 {
		t.Errorf("expected 5 general gaps, got %d", generalCount)
	}
}

func TestComplianceNoClausesFallbackID(t *testing.T) {
	analysis := &contract.Analysis{ContractType: contract.TypeConsulting}
	issues := checkCompliance(analysis)
	if len(issues) == 0 {
		t.Fatal("expected general gaps even with no clauses")
	}
	for _, issue := range issues {
		if issue.ClauseID != "COMPLIANCE" {
			t.Errorf("expected COMPLIANCE fallback id, got %s", issue.ClauseID)
		}
	}
}

func TestLookupPrecedent(t *testing.T) {
	ref := LookupPrecedent("unlimited_liability")
	if !strings.Contains(ref, "PREC-001") || !strings.Contains(ref, "Recommendation:") {
		t.Errorf("unexpected precedent reference: %s", ref)
	}
	if LookupPrecedent("nonexistent_topic") != "" {
		t.Error("unknown topic should return empty reference")
	}
}
