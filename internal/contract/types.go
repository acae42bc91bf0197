// Package contract defines the domain types shared across the lifecycle
// pipeline: contract metadata, clauses, risk findings, negotiation
// positions, approval chains and the session that ties them together.
package contract

import "time"

// Type identifies the category of a contract.
type Type string

const (
	TypeNDA        Type = "nda"
	TypeSaaS       Type = "saas_agreement"
	TypeVendorMSA  Type = "vendor_msa"
	TypeEmployment Type = "employment"
	TypeConsulting Type = "consulting"
	TypeLicensing  Type = "licensing"
)

// RiskLevel is an ordered severity scale. Comparisons must go through
// Rank; the string values are wire format only.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskRanks = map[RiskLevel]int{
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Rank returns the severity rank (1..4), or 0 for unknown levels.
func (r RiskLevel) Rank() int {
	return riskRanks[r]
}

// AtLeast reports whether r is as severe as other.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.Rank() >= other.Rank()
}

// MaxRisk returns the more severe of two levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Stage is the lifecycle stage of a contract session.
type Stage string

const (
	StageIntake           Stage = "intake"
	StageAnalyzing        Stage = "analyzing"
	StageRiskAssessing    Stage = "risk_assessing"
	StageNegotiating      Stage = "negotiating"
	StageAwaitingApproval Stage = "awaiting_approval"
	StageApproved         Stage = "approved"
	StageRejected         Stage = "rejected"
	StageRenegotiating    Stage = "renegotiating"
	StageExecuted         Stage = "executed"
	StageFailed           Stage = "failed"
)

// Terminal reports whether no further transitions leave the stage.
func (s Stage) Terminal() bool {
	return s == StageExecuted || s == StageFailed
}

// ApprovalLevel is an ordered approval seniority scale.
type ApprovalLevel string

const (
	ApprovalAuto    ApprovalLevel = "auto"
	ApprovalManager ApprovalLevel = "manager"
	ApprovalVP      ApprovalLevel = "vp"
	ApprovalLegal   ApprovalLevel = "legal"
	ApprovalCFO     ApprovalLevel = "cfo"
)

var approvalRanks = map[ApprovalLevel]int{
	ApprovalAuto:    1,
	ApprovalManager: 2,
	ApprovalVP:      3,
	ApprovalLegal:   4,
	ApprovalCFO:     5,
}

// Rank returns the seniority rank (1..5), or 0 for unknown levels.
func (l ApprovalLevel) Rank() int {
	return approvalRanks[l]
}

// Decision is the state of a single approval step.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Clause is a single extracted contract clause.
type Clause struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Section    string   `json:"section"`
	IsStandard bool     `json:"is_standard"`
	RiskFlags  []string `json:"risk_flags"`
}

// Analysis is the structured result of contract analysis.
type Analysis struct {
	ContractType   Type     `json:"contract_type"`
	Parties        []string `json:"parties"`
	EffectiveDate  string   `json:"effective_date"`
	ExpirationDate string   `json:"expiration_date"`
	TotalValue     float64  `json:"total_value"`
	Clauses        []Clause `json:"clauses"`
	Summary        string   `json:"summary"`
}

// RiskFinding is a risk assessment attached to a clause, either from
// clause-level rules or from a compliance check.
type RiskFinding struct {
	ClauseID           string    `json:"clause_id"`
	RiskLevel          RiskLevel `json:"risk_level"`
	Description        string    `json:"description"`
	Recommendation     string    `json:"recommendation"`
	PrecedentReference string    `json:"precedent_reference,omitempty"`
}

// NegotiationPosition is a proposed counter-position for a risky clause.
type NegotiationPosition struct {
	ClauseID       string   `json:"clause_id"`
	CurrentTerms   string   `json:"current_terms"`
	ProposedTerms  string   `json:"proposed_terms"`
	Rationale      string   `json:"rationale"`
	LeveragePoints []string `json:"leverage_points"`
}

// ApprovalStep is one link in a session's approval chain.
type ApprovalStep struct {
	Level     ApprovalLevel `json:"level"`
	Approver  string        `json:"approver"`
	Decision  Decision      `json:"decision"`
	Comments  string        `json:"comments"`
	Timestamp time.Time     `json:"timestamp"`
}

// Version is one entry in a session's version history.
type Version struct {
	Version   int       `json:"version"`
	Changes   []string  `json:"changes"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the full state of one contract moving through the pipeline.
type Session struct {
	ID                   string                `json:"session_id"`
	ContractText         string                `json:"contract_text"`
	Stage                Stage                 `json:"state"`
	Analysis             *Analysis             `json:"analysis"`
	Risks                []RiskFinding         `json:"risks"`
	Negotiations         []NegotiationPosition `json:"negotiations"`
	ApprovalChain        []ApprovalStep        `json:"approval_chain"`
	CurrentApprovalIndex int                   `json:"current_approval_index"`
	NegotiationRounds    int                   `json:"negotiation_rounds"`
	OverallRisk          RiskLevel             `json:"overall_risk,omitempty"`
	Versions             []Version             `json:"versions"`
	Error                string                `json:"error,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// AddVersion appends the next version entry and returns its number.
func (s *Session) AddVersion(now time.Time, changes ...string) int {
	next := len(s.Versions) + 1
	s.Versions = append(s.Versions, Version{
		Version:   next,
		Changes:   changes,
		Timestamp: now,
	})
	return next
}

// PendingApproval returns the first pending step, or -1 when none remain.
func (s *Session) PendingApproval() int {
	for i := range s.ApprovalChain {
		if s.ApprovalChain[i].Decision == DecisionPending {
			return i
		}
	}
	return -1
}

// AllApproved reports whether the chain is non-empty and fully approved.
func (s *Session) AllApproved() bool {
	if len(s.ApprovalChain) == 0 {
		return false
	}
	for i := range s.ApprovalChain {
		if s.ApprovalChain[i].Decision != DecisionApproved {
			return false
		}
	}
	return true
}

// Clone returns a deep copy safe to hand out across goroutines.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Analysis != nil {
		analysis := *s.Analysis
		analysis.Parties = append([]string(nil), s.Analysis.Parties...)
		analysis.Clauses = make([]Clause, len(s.Analysis.Clauses))
		for i, clause := range s.Analysis.Clauses {
			clause.RiskFlags = append([]string(nil), clause.RiskFlags...)
			analysis.Clauses[i] = clause
		}
		out.Analysis = &analysis
	}
	out.Risks = append([]RiskFinding(nil), s.Risks...)
	out.Negotiations = make([]NegotiationPosition, len(s.Negotiations))
	for i, position := range s.Negotiations {
		position.LeveragePoints = append([]string(nil), position.LeveragePoints...)
		out.Negotiations[i] = position
	}
	out.ApprovalChain = append([]ApprovalStep(nil), s.ApprovalChain...)
	out.Versions = make([]Version, len(s.Versions))
	for i, version := range s.Versions {
		version.Changes = append([]string(nil), version.Changes...)
		out.Versions[i] = version
	}
	return &out
}

// Event is a single lifecycle event published on the session stream.
type Event struct {
	Type      string         `json:"event_type"`
	SessionID string         `json:"session_id"`
	Data      map[string]any `json:"data"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
}
