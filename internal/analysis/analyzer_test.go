package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
)

const msaText = `MASTER SERVICE AGREEMENT

This Master Service Agreement is entered into as of January 15, 2025
by and between Acme Corporation ("Customer") and CloudServices Inc. ("Provider").

1. TERM AND RENEWAL
This Agreement shall continue for an initial term of twelve (12) months
and shall automatically renew for successive one-year terms.

2. PAYMENT TERMS
Total contract value: $300,000. Late payments accrue interest at 1.5% per month.

3. LIMITATION OF LIABILITY
Provider disclaims all warranties. Customer agrees Provider has unlimited
liability exclusions and Customer bears losses without limit.

4. INDEMNIFICATION
Customer shall indemnify Provider against any and all claims arising from use of the services.

5. GOVERNING LAW
This Agreement is governed by the laws of the State of Delaware.
`

func TestAnalyzeContractMetadata(t *testing.T) {
	analysis, err := NewAnalyst().Analyze(context.Background(), msaText)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.ContractType != contract.TypeVendorMSA {
		t.Errorf("expected vendor_msa, got %s", analysis.ContractType)
	}
	if len(analysis.Parties) != 2 {
		t.Fatalf("expected 2 parties, got %v", analysis.Parties)
	}
	if analysis.Parties[0] != "Acme Corporation" || analysis.Parties[1] != "CloudServices Inc." {
		t.Errorf("unexpected parties: %v", analysis.Parties)
	}
	if analysis.EffectiveDate != "January 15, 2025" {
		t.Errorf("unexpected effective date %q", analysis.EffectiveDate)
	}
	if analysis.ExpirationDate != "12 months from effective date" {
		t.Errorf("unexpected expiration %q", analysis.ExpirationDate)
	}
	if analysis.TotalValue != 300000 {
		t.Errorf("expected value 300000, got %.2f", analysis.TotalValue)
	}
}

func TestAnalyzeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewAnalyst().Analyze(ctx, msaText); err == nil {
		t.Error("expected error from canceled context")
	}
}

func TestDetectContractType(t *testing.T) {
	cases := []struct {
		text string
		want contract.Type
	}{
		{"This Non-Disclosure Agreement protects secrets.", contract.TypeNDA},
		{"This SaaS Agreement covers the subscription.", contract.TypeSaaS},
		{"EMPLOYMENT AGREEMENT between the company and the employee.", contract.TypeEmployment},
		{"This License Agreement grants usage rights.", contract.TypeLicensing},
		{"Consulting Agreement for services rendered.", contract.TypeConsulting},
		{"An agreement with standard boilerplate terms.", contract.TypeConsulting},
	}
	for _, tc := range cases {
		if got := detectContractType(tc.text); got != tc.want {
			t.Errorf("detectContractType(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestDetectContractTypeIgnoresEmbeddedAcronyms(t *testing.T) {
	// "standard" contains "nda"; it must not read as an NDA.
	if got := detectContractType("A standard services agreement."); got == contract.TypeNDA {
		t.Error("embedded 'nda' substring misdetected as NDA")
	}
}

func TestGenerateSummary(t *testing.T) {
	analysis, err := NewAnalyst().Analyze(context.Background(), msaText)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	summary := analysis.Summary
	if !strings.Contains(summary, "Acme Corporation and CloudServices Inc.") {
		t.Errorf("summary missing parties: %s", summary)
	}
	if !strings.Contains(summary, "$300,000.00") {
		t.Errorf("summary missing value: %s", summary)
	}
	if !strings.Contains(summary, "Risk flags identified:") {
		t.Errorf("summary missing risk flags: %s", summary)
	}
	if !strings.Contains(summary, "Recommendation: Engage risk assessment") {
		t.Errorf("summary missing recommendation: %s", summary)
	}
}

func TestGenerateSummaryLowRisk(t *testing.T) {
	clauses := []contract.Clause{
		{Section: "GOVERNING_LAW", Title: "Governing Law", IsStandard: true},
	}
	summary := generateSummary(contract.TypeConsulting, nil, clauses, 0)
	if !strings.Contains(summary, "Unknown parties") {
		t.Errorf("summary missing unknown-parties fallback: %s", summary)
	}
	if !strings.Contains(summary, "Contract terms appear standard and low-risk.") {
		t.Errorf("summary missing low-risk closer: %s", summary)
	}
}
