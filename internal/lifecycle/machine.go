// Package lifecycle orchestrates a contract session through the pipeline:
// intake, analysis, risk assessment, negotiation and approval routing. The
// automated flow runs in Run; human decisions arrive through Approve,
// Reject, Renegotiate and Execute.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/session"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/stream"
)

// ErrInvalidStage rejects an action the session's current stage does not
// permit.
var ErrInvalidStage = errors.New("invalid lifecycle stage")

// ErrValidation rejects an action whose input fails a business rule.
var ErrValidation = errors.New("validation failed")

// Contract text shorter than this is rejected at intake.
const minContractLength = 50

const maxCounterTermLen = 100

// AnalysisProvider extracts structured analysis from raw contract text.
type AnalysisProvider interface {
	Analyze(ctx context.Context, text string) (*contract.Analysis, error)
}

// RiskProvider evaluates an analysis for clause and compliance risk and
// folds findings into an overall level.
type RiskProvider interface {
	Assess(ctx context.Context, analysis *contract.Analysis) (clauseFindings, complianceFindings []contract.RiskFinding, err error)
	Aggregate(findings []contract.RiskFinding) contract.RiskLevel
}

// Negotiator develops counter-positions for high-risk findings.
type Negotiator interface {
	Develop(ctx context.Context, findings []contract.RiskFinding, clauses []contract.Clause, contractType contract.Type) ([]contract.NegotiationPosition, error)
}

// ApprovalPolicy builds the validated approval chain for a contract.
type ApprovalPolicy interface {
	Chain(ctx context.Context, risk contract.RiskLevel, value float64, contractType contract.Type) ([]contract.ApprovalStep, []string, error)
}

// Config tunes machine behavior.
type Config struct {
	// Auto-approval ceiling, checked only on the low-risk branch.
	AutoApproveThreshold contract.RiskLevel
	// Per-provider call deadline. Zero means no deadline.
	ProviderTimeout time.Duration
	// Renegotiation rounds allowed per session.
	MaxNegotiationRounds int
	// Timestamp source, defaults to time.Now.
	Now func() time.Time
}

// ParseThreshold maps a configured threshold string to a risk level,
// falling back to low for unknown values.
func ParseThreshold(value string) contract.RiskLevel {
	level := contract.RiskLevel(strings.ToLower(strings.TrimSpace(value)))
	if level.Rank() == 0 {
		return contract.RiskLow
	}
	return level
}

// Machine drives sessions through the lifecycle and publishes progress on
// the event bus.
type Machine struct {
	store      session.Store
	bus        *stream.Bus
	analyst    AnalysisProvider
	assessor   RiskProvider
	strategist Negotiator
	policy     ApprovalPolicy
	cfg        Config
	nowFn      func() time.Time

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func New(store session.Store, bus *stream.Bus, analyst AnalysisProvider, assessor RiskProvider, strategist Negotiator, policy ApprovalPolicy, cfg Config) *Machine {
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	if cfg.AutoApproveThreshold.Rank() == 0 {
		cfg.AutoApproveThreshold = contract.RiskLow
	}
	return &Machine{
		store:      store,
		bus:        bus,
		analyst:    analyst,
		assessor:   assessor,
		strategist: strategist,
		policy:     policy,
		cfg:        cfg,
		nowFn:      nowFn,
		cancels:    make(map[string]context.CancelFunc),
	}
}

// Run executes the automated flow for a session. Low-risk contracts are
// auto-approved and executed; medium risk parks at standard review; high
// and critical risk get negotiation positions and a multi-level chain.
// Failures record the error on the session and end the stream.
func (m *Machine) Run(ctx context.Context, sessionID string) {
	runCtx, cancel := context.WithCancel(ctx)
	m.registerCancel(sessionID, cancel)
	defer m.unregisterCancel(sessionID)
	defer cancel()

	if err := m.run(runCtx, sessionID); err != nil {
		m.fail(sessionID, err)
	}
}

// Cancel stops a running flow for the session, if any. It reports whether
// a flow was running.
func (m *Machine) Cancel(sessionID string) bool {
	m.mu.Lock()
	cancel, ok := m.cancels[sessionID]
	m.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (m *Machine) run(ctx context.Context, id string) error {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	text := sess.ContractText

	// Intake.
	m.bus.Emit(id, stream.EventIntake,
		map[string]any{"text_length": len(text)},
		"Contract received. Starting lifecycle processing.")
	if len(strings.TrimSpace(text)) < minContractLength {
		return errors.New("Contract text is too short. Minimum 50 characters required.")
	}
	now := m.nowFn().UTC()
	if _, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		s.Stage = contract.StageIntake
		s.AddVersion(now, "Initial contract submission")
		return nil
	}); err != nil {
		return err
	}

	// Analysis.
	if _, err := m.setStage(ctx, id, contract.StageAnalyzing); err != nil {
		return err
	}
	m.bus.Emit(id, stream.EventAnalyzing, nil,
		"Analysis crew started. Legal analyst is reviewing the contract.")
	m.bus.Emit(id, stream.EventExtractingClauses, nil,
		"Extracting clauses and key terms from contract text.")

	analysis, err := m.analyze(ctx, text)
	if err != nil {
		return err
	}
	clauseFindings, complianceFindings, err := m.assess(ctx, analysis)
	if err != nil {
		return err
	}
	allRisks := append(append([]contract.RiskFinding(nil), clauseFindings...), complianceFindings...)

	if _, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		s.Analysis = analysis
		s.Risks = allRisks
		return nil
	}); err != nil {
		return err
	}
	m.bus.Emit(id, stream.EventClausesExtracted,
		map[string]any{
			"clause_count":  len(analysis.Clauses),
			"contract_type": string(analysis.ContractType),
			"parties":       analysis.Parties,
		},
		fmt.Sprintf("Extracted %d clauses. Contract type: %s.", len(analysis.Clauses), analysis.ContractType))
	m.bus.Emit(id, stream.EventAnalysisComplete,
		map[string]any{
			"summary":           analysis.Summary,
			"total_value":       analysis.TotalValue,
			"risk_assessments":  len(clauseFindings),
			"compliance_issues": len(complianceFindings),
		},
		"Contract analysis complete.")

	// Overall risk.
	if _, err := m.setStage(ctx, id, contract.StageRiskAssessing); err != nil {
		return err
	}
	m.bus.Emit(id, stream.EventRiskAssessing,
		map[string]any{"assessment_count": len(allRisks)},
		"Calculating overall risk from clause assessments.")

	overall := m.assessor.Aggregate(allRisks)
	breakdown := riskBreakdown(allRisks)
	if _, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		s.OverallRisk = overall
		return nil
	}); err != nil {
		return err
	}
	m.bus.Emit(id, stream.EventRiskAssessmentDone,
		map[string]any{"overall_risk": string(overall), "breakdown": breakdown},
		fmt.Sprintf("Overall risk: %s. Breakdown: %d low, %d medium, %d high, %d critical.",
			overall, breakdown["low"], breakdown["medium"], breakdown["high"], breakdown["critical"]))

	// Routing forks on risk level. The auto-approve ceiling is only
	// consulted on the low branch; medium and above always get humans.
	switch overall {
	case contract.RiskLow:
		if overall.Rank() > m.cfg.AutoApproveThreshold.Rank() {
			return m.standardReview(ctx, id, overall, analysis)
		}
		if err := m.autoApprove(ctx, id, overall); err != nil {
			return err
		}
		if err := m.executeStep(ctx, id); err != nil {
			return err
		}
		return m.complete(ctx, id)
	case contract.RiskMedium:
		return m.standardReview(ctx, id, overall, analysis)
	default:
		if err := m.negotiate(ctx, id, allRisks, analysis); err != nil {
			return err
		}
		return m.multiLevelApproval(ctx, id, overall, analysis)
	}
}

func (m *Machine) autoApprove(ctx context.Context, id string, overall contract.RiskLevel) error {
	now := m.nowFn().UTC()
	step := contract.ApprovalStep{
		Level:    contract.ApprovalAuto,
		Approver: "System (Auto-Approval)",
		Decision: contract.DecisionApproved,
		Comments: fmt.Sprintf("Contract auto-approved. Overall risk: %s. Risk level meets auto-approval threshold.", overall),
	}
	step.Timestamp = now
	if _, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		s.ApprovalChain = []contract.ApprovalStep{step}
		s.Stage = contract.StageApproved
		return nil
	}); err != nil {
		return err
	}
	m.bus.Emit(id, stream.EventApproved,
		map[string]any{"approval_level": "auto", "approver": step.Approver},
		"Contract auto-approved. Low risk level meets threshold.")
	return nil
}

func (m *Machine) standardReview(ctx context.Context, id string, overall contract.RiskLevel, analysis *contract.Analysis) error {
	m.bus.Emit(id, stream.EventRoutingApproval,
		map[string]any{"route": "standard_review"},
		"Routing to standard review (manager approval).")

	steps, notes, err := m.chain(ctx, overall, analysis)
	if err != nil {
		return err
	}
	updated, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		s.ApprovalChain = steps
		s.CurrentApprovalIndex = 0
		s.Stage = contract.StageAwaitingApproval
		return nil
	})
	if err != nil {
		return err
	}
	m.bus.Emit(id, stream.EventAwaitingApproval,
		map[string]any{
			"approval_chain":   chainSummary(updated.ApprovalChain),
			"validation_notes": notes,
		},
		fmt.Sprintf("Awaiting approval from %d level(s): %s.", len(steps), levelList(steps)))
	return nil
}

func (m *Machine) negotiate(ctx context.Context, id string, findings []contract.RiskFinding, analysis *contract.Analysis) error {
	if _, err := m.setStage(ctx, id, contract.StageNegotiating); err != nil {
		return err
	}
	highRisk := 0
	for _, finding := range findings {
		if finding.RiskLevel.AtLeast(contract.RiskHigh) {
			highRisk++
		}
	}
	m.bus.Emit(id, stream.EventNegotiating,
		map[string]any{"high_risk_clauses": highRisk},
		"Negotiation crew started. Developing counter-proposals for high-risk clauses.")

	positions, err := m.develop(ctx, findings, analysis)
	if err != nil {
		return err
	}

	now := m.nowFn().UTC()
	if _, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		s.Negotiations = positions
		if len(positions) > 0 {
			changes := make([]string, len(positions))
			for i, position := range positions {
				changes[i] = "Negotiation position developed for clause " + position.ClauseID
			}
			s.AddVersion(now, changes...)
		}
		return nil
	}); err != nil {
		return err
	}

	summaries := make([]map[string]any, len(positions))
	for i, position := range positions {
		summaries[i] = map[string]any{
			"clause_id":       position.ClauseID,
			"rationale":       truncate(position.Rationale, 200),
			"leverage_points": len(position.LeveragePoints),
		}
	}
	m.bus.Emit(id, stream.EventNegotiationStrategyReady,
		map[string]any{"positions_count": len(positions), "positions": summaries},
		fmt.Sprintf("Negotiation strategy ready. %d counter-proposals developed.", len(positions)))
	return nil
}

func (m *Machine) multiLevelApproval(ctx context.Context, id string, overall contract.RiskLevel, analysis *contract.Analysis) error {
	m.bus.Emit(id, stream.EventRoutingApproval,
		map[string]any{"route": "multi_level"},
		"Routing through multi-level approval chain.")

	steps, notes, err := m.chain(ctx, overall, analysis)
	if err != nil {
		return err
	}
	updated, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		s.ApprovalChain = steps
		s.CurrentApprovalIndex = 0
		s.Stage = contract.StageAwaitingApproval
		return nil
	})
	if err != nil {
		return err
	}
	m.bus.Emit(id, stream.EventAwaitingApproval,
		map[string]any{
			"approval_chain":        chainSummary(updated.ApprovalChain),
			"negotiation_positions": len(updated.Negotiations),
			"validation_notes":      notes,
		},
		fmt.Sprintf("Contract requires %d-level approval: %s. Awaiting human decisions.", len(steps), levelList(steps)))
	return nil
}

func (m *Machine) executeStep(ctx context.Context, id string) error {
	now := m.nowFn().UTC()
	updated, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		s.Stage = contract.StageExecuted
		s.AddVersion(now, "Contract executed after all approvals received")
		return nil
	})
	if err != nil {
		return err
	}
	m.bus.Emit(id, stream.EventExecuted,
		map[string]any{
			"versions":        len(updated.Versions),
			"approval_levels": chainLevels(updated.ApprovalChain),
		},
		"Contract has been executed successfully.")
	return nil
}

func (m *Machine) complete(ctx context.Context, id string) error {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	m.bus.Emit(id, stream.EventCompleted,
		map[string]any{
			"state":        string(sess.Stage),
			"overall_risk": string(sess.OverallRisk),
			"versions":     len(sess.Versions),
		},
		"Contract lifecycle processing complete.")
	return nil
}

// fail records the failure on the session and ends the stream. It runs
// outside the flow context so cancellation cannot block the write.
func (m *Machine) fail(id string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		s.Error = cause.Error()
		s.Stage = contract.StageFailed
		return nil
	}); err != nil {
		log.Printf("lifecycle: recording failure for session %s: %v", id, err)
	}
	m.bus.Emit(id, stream.EventError,
		map[string]any{"error": cause.Error()},
		"Flow error: "+cause.Error())
}

// Approve records a human approval on the next pending step. When the
// whole chain has approved the session moves to the approved stage.
func (m *Machine) Approve(ctx context.Context, id, approver, comments string) (*contract.Session, error) {
	now := m.nowFn().UTC()
	updated, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		if s.Stage != contract.StageAwaitingApproval {
			return fmt.Errorf("%w: contract is in state '%s', not awaiting approval", ErrInvalidStage, s.Stage)
		}
		idx := s.PendingApproval()
		if idx < 0 {
			return fmt.Errorf("%w: no pending approvals found", ErrInvalidStage)
		}
		step := &s.ApprovalChain[idx]
		step.Decision = contract.DecisionApproved
		if approver != "" {
			step.Approver = approver
		}
		step.Comments = comments
		step.Timestamp = now

		if next := s.PendingApproval(); next >= 0 {
			s.CurrentApprovalIndex = next
		} else {
			s.CurrentApprovalIndex = len(s.ApprovalChain)
		}
		if s.AllApproved() {
			s.Stage = contract.StageApproved
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated.AllApproved() {
		m.bus.Emit(id, stream.EventApproved,
			map[string]any{"approval_chain": chainSummary(updated.ApprovalChain)},
			"All approvals received. Contract approved.")
	} else {
		// A rejected step elsewhere in the chain can leave no pending
		// steps while the chain is still not fully approved.
		next := "none"
		if idx := updated.PendingApproval(); idx >= 0 {
			next = string(updated.ApprovalChain[idx].Level)
		}
		m.bus.Emit(id, stream.EventApprovalProgress,
			map[string]any{"next_level": next},
			fmt.Sprintf("Approval recorded. Next: %s.", next))
	}
	return updated, nil
}

// Reject marks the next pending step rejected and moves the session to the
// rejected stage. Renegotiation can reopen it.
func (m *Machine) Reject(ctx context.Context, id, approver, comments string) (*contract.Session, error) {
	if strings.TrimSpace(comments) == "" {
		return nil, fmt.Errorf("%w: rejection comments are required", ErrValidation)
	}
	now := m.nowFn().UTC()
	updated, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		if s.Stage != contract.StageAwaitingApproval {
			return fmt.Errorf("%w: contract is in state '%s', not awaiting approval", ErrInvalidStage, s.Stage)
		}
		s.Stage = contract.StageRejected
		if idx := s.PendingApproval(); idx >= 0 {
			step := &s.ApprovalChain[idx]
			step.Decision = contract.DecisionRejected
			if approver != "" {
				step.Approver = approver
			}
			step.Comments = comments
			step.Timestamp = now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.bus.Emit(id, stream.EventRejected,
		map[string]any{"approver": approver, "comments": comments},
		"Contract rejected: "+comments)
	return updated, nil
}

// Renegotiate records counter-terms as a new version, resets the approval
// chain to pending and returns the session to awaiting approval. Rounds
// are capped per session.
func (m *Machine) Renegotiate(ctx context.Context, id string, counterTerms map[string]string, comments string) (*contract.Session, error) {
	now := m.nowFn().UTC()
	updated, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		switch s.Stage {
		case contract.StageAwaitingApproval, contract.StageRejected, contract.StageNegotiating:
		default:
			return fmt.Errorf("%w: contract is in state '%s', cannot renegotiate", ErrInvalidStage, s.Stage)
		}
		if m.cfg.MaxNegotiationRounds > 0 && s.NegotiationRounds >= m.cfg.MaxNegotiationRounds {
			return fmt.Errorf("%w: maximum negotiation rounds (%d) reached", ErrValidation, m.cfg.MaxNegotiationRounds)
		}
		s.NegotiationRounds++

		clauseIDs := make([]string, 0, len(counterTerms))
		for clauseID := range counterTerms {
			clauseIDs = append(clauseIDs, clauseID)
		}
		sort.Strings(clauseIDs)
		var changes []string
		for _, clauseID := range clauseIDs {
			changes = append(changes, fmt.Sprintf("Counter-terms submitted for clause %s: %s",
				clauseID, truncate(counterTerms[clauseID], maxCounterTermLen)))
		}
		if comments != "" {
			changes = append(changes, "Notes: "+comments)
		}
		s.AddVersion(now, changes...)

		for i := range s.ApprovalChain {
			s.ApprovalChain[i].Decision = contract.DecisionPending
			s.ApprovalChain[i].Comments = ""
		}
		s.CurrentApprovalIndex = 0
		s.Stage = contract.StageAwaitingApproval
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.bus.Emit(id, stream.EventRenegotiating,
		map[string]any{"counter_terms": counterTerms, "version": len(updated.Versions)},
		fmt.Sprintf("Counter-terms submitted. Version %d created. Approval chain reset.", len(updated.Versions)))
	return updated, nil
}

// Execute finalizes an approved contract and ends its stream.
func (m *Machine) Execute(ctx context.Context, id string) (*contract.Session, error) {
	now := m.nowFn().UTC()
	updated, err := m.store.Update(ctx, id, func(s *contract.Session) error {
		if s.Stage != contract.StageApproved {
			return fmt.Errorf("%w: contract must be in 'approved' state to execute. Current state: '%s'", ErrInvalidStage, s.Stage)
		}
		s.Stage = contract.StageExecuted
		s.AddVersion(now, "Contract executed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.bus.Emit(id, stream.EventExecuted,
		map[string]any{
			"versions":        len(updated.Versions),
			"approval_levels": chainLevels(updated.ApprovalChain),
		},
		"Contract has been executed successfully.")
	m.bus.Emit(id, stream.EventCompleted,
		map[string]any{
			"state":        string(updated.Stage),
			"overall_risk": string(updated.OverallRisk),
			"versions":     len(updated.Versions),
		},
		"Contract lifecycle processing complete.")
	return updated, nil
}

func (m *Machine) analyze(ctx context.Context, text string) (*contract.Analysis, error) {
	ctx, cancel := m.providerCtx(ctx)
	defer cancel()
	return m.analyst.Analyze(ctx, text)
}

func (m *Machine) assess(ctx context.Context, analysis *contract.Analysis) ([]contract.RiskFinding, []contract.RiskFinding, error) {
	ctx, cancel := m.providerCtx(ctx)
	defer cancel()
	return m.assessor.Assess(ctx, analysis)
}

func (m *Machine) develop(ctx context.Context, findings []contract.RiskFinding, analysis *contract.Analysis) ([]contract.NegotiationPosition, error) {
	ctx, cancel := m.providerCtx(ctx)
	defer cancel()
	return m.strategist.Develop(ctx, findings, analysis.Clauses, analysis.ContractType)
}

func (m *Machine) chain(ctx context.Context, overall contract.RiskLevel, analysis *contract.Analysis) ([]contract.ApprovalStep, []string, error) {
	ctx, cancel := m.providerCtx(ctx)
	defer cancel()
	return m.policy.Chain(ctx, overall, analysis.TotalValue, analysis.ContractType)
}

func (m *Machine) providerCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.cfg.ProviderTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.cfg.ProviderTimeout)
}

func (m *Machine) setStage(ctx context.Context, id string, stage contract.Stage) (*contract.Session, error) {
	return m.store.Update(ctx, id, func(s *contract.Session) error {
		s.Stage = stage
		return nil
	})
}

func (m *Machine) registerCancel(id string, cancel context.CancelFunc) {
	m.mu.Lock()
	m.cancels[id] = cancel
	m.mu.Unlock()
}

func (m *Machine) unregisterCancel(id string) {
	m.mu.Lock()
	delete(m.cancels, id)
	m.mu.Unlock()
}

func riskBreakdown(findings []contract.RiskFinding) map[string]int {
	breakdown := map[string]int{"low": 0, "medium": 0, "high": 0, "critical": 0}
	for _, finding := range findings {
		breakdown[string(finding.RiskLevel)]++
	}
	return breakdown
}

func chainSummary(steps []contract.ApprovalStep) []map[string]any {
	summary := make([]map[string]any, len(steps))
	for i, step := range steps {
		summary[i] = map[string]any{
			"level":    string(step.Level),
			"approver": step.Approver,
			"decision": string(step.Decision),
		}
	}
	return summary
}

func chainLevels(steps []contract.ApprovalStep) []string {
	levels := make([]string, len(steps))
	for i, step := range steps {
		levels[i] = string(step.Level)
	}
	return levels
}

func levelList(steps []contract.ApprovalStep) string {
	levels := chainLevels(steps)
	return strings.Join(levels, ", ")
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
