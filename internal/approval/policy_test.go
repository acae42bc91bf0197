package approval

import (
	"context"
	"reflect"
	"testing"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
)

func levels(steps []contract.ApprovalStep) []contract.ApprovalLevel {
	out := make([]contract.ApprovalLevel, len(steps))
	for i, step := range steps {
		out[i] = step.Level
	}
	return out
}

func TestChainByRiskLevel(t *testing.T) {
	cases := []struct {
		name string
		risk contract.RiskLevel
		want []contract.ApprovalLevel
	}{
		{"low auto-approves", contract.RiskLow, []contract.ApprovalLevel{contract.ApprovalAuto}},
		{"medium needs a manager", contract.RiskMedium, []contract.ApprovalLevel{contract.ApprovalManager}},
		{"high escalates to legal", contract.RiskHigh, []contract.ApprovalLevel{
			contract.ApprovalManager, contract.ApprovalVP, contract.ApprovalLegal}},
		{"critical adds the cfo", contract.RiskCritical, []contract.ApprovalLevel{
			contract.ApprovalManager, contract.ApprovalVP, contract.ApprovalLegal, contract.ApprovalCFO}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			steps, notes, err := NewPolicy().Chain(context.Background(), tc.risk, 0, contract.TypeConsulting)
			if err != nil {
				t.Fatalf("Chain failed: %v", err)
			}
			if got := levels(steps); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("chain = %v, want %v", got, tc.want)
			}
			if len(notes) != 1 || notes[0] != "Approval chain validated. No modifications required." {
				t.Errorf("unexpected notes: %v", notes)
			}
		})
	}
}

func TestChainStepsStartPending(t *testing.T) {
	steps, _, err := NewPolicy().Chain(context.Background(), contract.RiskHigh, 0, contract.TypeConsulting)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}
	for _, step := range steps {
		if step.Decision != contract.DecisionPending {
			t.Errorf("step %s decision = %s, want pending", step.Level, step.Decision)
		}
		if step.Approver != DefaultApprover(step.Level) {
			t.Errorf("step %s approver = %q", step.Level, step.Approver)
		}
	}
}

func TestChainValueEscalation(t *testing.T) {
	cases := []struct {
		name  string
		value float64
		want  []contract.ApprovalLevel
	}{
		{"below manager threshold", 10_000, []contract.ApprovalLevel{contract.ApprovalManager}},
		{"vp threshold", 300_000, []contract.ApprovalLevel{contract.ApprovalManager, contract.ApprovalVP}},
		{"legal threshold", 600_000, []contract.ApprovalLevel{
			contract.ApprovalManager, contract.ApprovalVP, contract.ApprovalLegal}},
		{"cfo threshold", 2_000_000, []contract.ApprovalLevel{
			contract.ApprovalManager, contract.ApprovalVP, contract.ApprovalLegal, contract.ApprovalCFO}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			steps, _, err := NewPolicy().Chain(context.Background(), contract.RiskMedium, tc.value, contract.TypeConsulting)
			if err != nil {
				t.Fatalf("Chain failed: %v", err)
			}
			if got := levels(steps); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("chain = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestChainLowRiskHighValueDropsAuto(t *testing.T) {
	steps, _, err := NewPolicy().Chain(context.Background(), contract.RiskLow, 1_500_000, contract.TypeConsulting)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}
	got := levels(steps)
	want := []contract.ApprovalLevel{
		contract.ApprovalManager, contract.ApprovalVP, contract.ApprovalLegal, contract.ApprovalCFO}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("chain = %v, want %v", got, want)
	}
}

func TestChainEmploymentRequiresLegal(t *testing.T) {
	steps, _, err := NewPolicy().Chain(context.Background(), contract.RiskLow, 0, contract.TypeEmployment)
	if err != nil {
		t.Fatalf("Chain failed: %v", err)
	}
	got := levels(steps)
	if !reflect.DeepEqual(got, []contract.ApprovalLevel{contract.ApprovalLegal}) {
		t.Errorf("chain = %v, want [legal]", got)
	}
}

func TestChainCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewPolicy().Chain(ctx, contract.RiskLow, 0, contract.TypeConsulting); err == nil {
		t.Error("expected error from canceled context")
	}
}

func TestValidateChainAddsLegalForEmployment(t *testing.T) {
	validated, notes := validateChain(
		[]contract.ApprovalLevel{contract.ApprovalManager},
		contract.RiskMedium, 0, contract.TypeEmployment)

	if !contains(validated, contract.ApprovalLegal) {
		t.Errorf("legal missing from %v", validated)
	}
	if len(notes) != 1 || notes[0] != "Added LEGAL approval: employment contracts require legal review per company policy." {
		t.Errorf("unexpected notes: %v", notes)
	}
}

func TestValidateChainAddsVPForValue(t *testing.T) {
	validated, notes := validateChain(
		[]contract.ApprovalLevel{contract.ApprovalManager},
		contract.RiskMedium, 300_000, contract.TypeConsulting)

	if !contains(validated, contract.ApprovalVP) {
		t.Errorf("vp missing from %v", validated)
	}
	want := "Added VP approval: contract value ($300,000.00) exceeds $250K threshold."
	if len(notes) != 1 || notes[0] != want {
		t.Errorf("unexpected notes: %v", notes)
	}
}

func TestValidateChainAddsCFOForCritical(t *testing.T) {
	validated, notes := validateChain(
		[]contract.ApprovalLevel{contract.ApprovalManager, contract.ApprovalVP, contract.ApprovalLegal},
		contract.RiskCritical, 0, contract.TypeConsulting)

	if !contains(validated, contract.ApprovalCFO) {
		t.Errorf("cfo missing from %v", validated)
	}
	if len(notes) != 1 || notes[0] != "Added CFO approval: CRITICAL risk level requires executive-level authorization." {
		t.Errorf("unexpected notes: %v", notes)
	}
}

func TestValidateChainReplacesAutoForNonLowRisk(t *testing.T) {
	validated, notes := validateChain(
		[]contract.ApprovalLevel{contract.ApprovalAuto},
		contract.RiskMedium, 0, contract.TypeConsulting)

	if contains(validated, contract.ApprovalAuto) {
		t.Errorf("auto still present in %v", validated)
	}
	if !reflect.DeepEqual(validated, []contract.ApprovalLevel{contract.ApprovalManager}) {
		t.Errorf("validated = %v, want [manager]", validated)
	}
	if len(notes) != 1 || notes[0] != "Replaced AUTO approval with MANAGER: non-LOW risk contracts cannot be auto-approved per compliance policy." {
		t.Errorf("unexpected notes: %v", notes)
	}
}

func TestValidateChainSortsBySeniority(t *testing.T) {
	validated, _ := validateChain(
		[]contract.ApprovalLevel{contract.ApprovalLegal, contract.ApprovalManager, contract.ApprovalVP},
		contract.RiskHigh, 0, contract.TypeConsulting)

	want := []contract.ApprovalLevel{contract.ApprovalManager, contract.ApprovalVP, contract.ApprovalLegal}
	if !reflect.DeepEqual(validated, want) {
		t.Errorf("validated = %v, want %v", validated, want)
	}
}

func TestDefaultApprover(t *testing.T) {
	if got := DefaultApprover(contract.ApprovalAuto); got != "System (Auto-Approval)" {
		t.Errorf("auto approver = %q", got)
	}
	if got := DefaultApprover(contract.ApprovalCFO); got != "Chief Financial Officer" {
		t.Errorf("cfo approver = %q", got)
	}
	if got := DefaultApprover(contract.ApprovalLevel("intern")); got != "Unknown" {
		t.Errorf("unknown level approver = %q", got)
	}
}
