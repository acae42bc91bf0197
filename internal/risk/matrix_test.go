package risk

import (
	"testing"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
)

func findings(levels ...contract.RiskLevel) []contract.RiskFinding {
	out := make([]contract.RiskFinding, len(levels))
	for i, level := range levels {
		out[i] = contract.RiskFinding{ClauseID: "c", RiskLevel: level}
	}
	return out
}

func TestAggregate(t *testing.T) {
	cases := []struct {
		name   string
		levels []contract.RiskLevel
		want   contract.RiskLevel
	}{
		{"empty", nil, contract.RiskLow},
		{"all low", []contract.RiskLevel{contract.RiskLow, contract.RiskLow}, contract.RiskLow},
		{"low and medium", []contract.RiskLevel{contract.RiskLow, contract.RiskMedium, contract.RiskMedium}, contract.RiskMedium},
		{"high pulls average up", []contract.RiskLevel{contract.RiskMedium, contract.RiskHigh, contract.RiskHigh}, contract.RiskHigh},
		{"single high below average gate", []contract.RiskLevel{contract.RiskLow, contract.RiskLow, contract.RiskLow, contract.RiskHigh}, contract.RiskLow},
		{"critical floors at high", []contract.RiskLevel{contract.RiskLow, contract.RiskLow, contract.RiskLow, contract.RiskLow, contract.RiskCritical}, contract.RiskHigh},
		{"all critical", []contract.RiskLevel{contract.RiskCritical, contract.RiskCritical}, contract.RiskCritical},
		{"high with elevated average", []contract.RiskLevel{contract.RiskHigh, contract.RiskMedium}, contract.RiskHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Aggregate(findings(tc.levels...)); got != tc.want {
				t.Errorf("Aggregate(%v) = %s, want %s", tc.levels, got, tc.want)
			}
		})
	}
}

func TestScoreToLevel(t *testing.T) {
	cases := []struct {
		score float64
		want  contract.RiskLevel
	}{
		{1.0, contract.RiskLow},
		{1.5, contract.RiskLow},
		{1.6, contract.RiskMedium},
		{2.2, contract.RiskMedium},
		{2.3, contract.RiskHigh},
		{3.0, contract.RiskHigh},
		{3.1, contract.RiskCritical},
		{4.0, contract.RiskCritical},
	}
	for _, tc := range cases {
		if got := scoreToLevel(tc.score); got != tc.want {
			t.Errorf("scoreToLevel(%.1f) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestEstimateLiability(t *testing.T) {
	if got := EstimateLiability("Fees are $50,000 plus $25,000 for support."); got != 75000 {
		t.Errorf("expected 75000, got %.0f", got)
	}

	if got := EstimateLiability("Liability is unlimited."); got != 10_000_000 {
		t.Errorf("unlimited language should floor at $10M, got %.0f", got)
	}

	if got := EstimateLiability("Cap of $20,000,000 with liability otherwise unlimited."); got != 20_000_000 {
		t.Errorf("explicit amount above floor should stand, got %.0f", got)
	}

	if got := EstimateLiability("Damages capped at 3 times the annual fees of $100,000."); got != 300_000 {
		t.Errorf("multiplier should scale the total, got %.0f", got)
	}

	if got := EstimateLiability("No dollar figures here."); got != 0 {
		t.Errorf("expected 0, got %.0f", got)
	}
}
