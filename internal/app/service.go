// Package app wires the lifecycle machine, session store and event bus
// behind the HTTP surface.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/risk"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/session"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/stream"
	"github.com/samuelvinay91/contract-lifecycle-crew/internal/templates"
)

// Lifecycle is the slice of the machine the service uses.
type Lifecycle interface {
	Run(ctx context.Context, sessionID string)
	Cancel(sessionID string) bool
	Approve(ctx context.Context, id, approver, comments string) (*contract.Session, error)
	Reject(ctx context.Context, id, approver, comments string) (*contract.Session, error)
	Renegotiate(ctx context.Context, id string, counterTerms map[string]string, notes string) (*contract.Session, error)
	Execute(ctx context.Context, id string) (*contract.Session, error)
}

type Service struct {
	store     session.Store
	bus       *stream.Bus
	lifecycle Lifecycle
}

func NewService(store session.Store, bus *stream.Bus, lc Lifecycle) *Service {
	return &Service{store: store, bus: bus, lifecycle: lc}
}

// Submit creates a session and starts the pipeline run in the background.
// The run outlives the submitting request.
func (s *Service) Submit(ctx context.Context, contractText string) (map[string]any, error) {
	if strings.TrimSpace(contractText) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "contract_text is required", nil)
	}

	sess, err := s.store.Create(ctx, contractText)
	if err != nil {
		return nil, err
	}

	go s.lifecycle.Run(context.WithoutCancel(ctx), sess.ID)

	return map[string]any{
		"session_id": sess.ID,
		"status":     "accepted",
		"message":    "Contract submitted for lifecycle processing.",
		"stream_url": fmt.Sprintf("/api/v1/contracts/%s/stream", sess.ID),
	}, nil
}

func (s *Service) ListContracts(ctx context.Context) (map[string]any, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, len(sessions))
	for i, sess := range sessions {
		items[i] = map[string]any{
			"session_id":   sess.ID,
			"state":        string(sess.Stage),
			"overall_risk": string(sess.OverallRisk),
			"created_at":   sess.CreatedAt,
			"updated_at":   sess.UpdatedAt,
		}
		if sess.Analysis != nil {
			items[i]["contract_type"] = string(sess.Analysis.ContractType)
		}
	}
	return map[string]any{"sessions": items, "total": len(items)}, nil
}

func (s *Service) GetContract(ctx context.Context, id string) (*contract.Session, error) {
	return s.store.Get(ctx, id)
}

// Stream subscribes to a session's event stream after confirming the
// session exists.
func (s *Service) Stream(ctx context.Context, id string) (*stream.Subscription, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.bus.Subscribe(id), nil
}

func (s *Service) Approve(ctx context.Context, id, approver, comments string) (map[string]any, error) {
	updated, err := s.lifecycle.Approve(ctx, id, approver, comments)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"session_id":     updated.ID,
		"status":         string(updated.Stage),
		"all_approved":   updated.AllApproved(),
		"approval_chain": approvalChainPayload(updated.ApprovalChain),
	}, nil
}

func (s *Service) Reject(ctx context.Context, id, approver, comments string) (map[string]any, error) {
	updated, err := s.lifecycle.Reject(ctx, id, approver, comments)
	if err != nil {
		return nil, err
	}
	name := approver
	if name == "" {
		name = "reviewer"
	}
	return map[string]any{
		"session_id": updated.ID,
		"status":     string(updated.Stage),
		"message":    fmt.Sprintf("Contract rejected by %s.", name),
		"comments":   comments,
	}, nil
}

func (s *Service) Renegotiate(ctx context.Context, id string, counterTerms map[string]string, notes string) (map[string]any, error) {
	updated, err := s.lifecycle.Renegotiate(ctx, id, counterTerms, notes)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"session_id": updated.ID,
		"status":     string(updated.Stage),
		"version":    len(updated.Versions),
		"message":    "Counter-terms submitted. Approval chain reset for re-review.",
	}, nil
}

func (s *Service) Execute(ctx context.Context, id string) (map[string]any, error) {
	updated, err := s.lifecycle.Execute(ctx, id)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"session_id":  updated.ID,
		"status":      string(updated.Stage),
		"message":     "Contract has been executed successfully.",
		"executed_at": updated.UpdatedAt,
	}, nil
}

// DeleteContract cancels any running flow, drops the event history and
// removes the session.
func (s *Service) DeleteContract(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	s.lifecycle.Cancel(id)
	s.bus.Clear(id)
	return s.store.Delete(ctx, id)
}

// Report assembles the denormalized lifecycle report for a session.
func (s *Service) Report(ctx context.Context, id string) (map[string]any, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := map[string]any{
		"total":    len(sess.Risks),
		"low":      countRisk(sess.Risks, contract.RiskLow),
		"medium":   countRisk(sess.Risks, contract.RiskMedium),
		"high":     countRisk(sess.Risks, contract.RiskHigh),
		"critical": countRisk(sess.Risks, contract.RiskCritical),
	}

	report := map[string]any{
		"session_id":       sess.ID,
		"status":           string(sess.Stage),
		"overall_risk":     string(sess.OverallRisk),
		"analysis":         sess.Analysis,
		"risk_assessments": sess.Risks,
		"risk_summary":     summary,
		"negotiations":     sess.Negotiations,
		"approval_chain":   sess.ApprovalChain,
		"versions":         sess.Versions,
		"created_at":       sess.CreatedAt,
		"updated_at":       sess.UpdatedAt,
	}
	if sess.Analysis != nil {
		report["contract_type"] = string(sess.Analysis.ContractType)
	}
	if sess.Error != "" {
		report["error"] = sess.Error
	}
	return report, nil
}

// Templates describes the clause template catalog by contract type.
func (s *Service) Templates() map[string]any {
	info := make(map[string]any, len(templates.Catalog))
	for contractType, clauses := range templates.Catalog {
		names := make([]string, 0, len(clauses))
		for name := range clauses {
			names = append(names, name)
		}
		sort.Strings(names)
		info[contractType] = map[string]any{
			"clause_count": len(clauses),
			"clauses":      names,
		}
	}
	return map[string]any{"templates": info, "total": len(info)}
}

// Precedents returns the precedent database.
func (s *Service) Precedents() map[string]any {
	return map[string]any{
		"precedents": risk.PrecedentDatabase,
		"total":      len(risk.PrecedentDatabase),
	}
}

func approvalChainPayload(steps []contract.ApprovalStep) []map[string]any {
	chain := make([]map[string]any, len(steps))
	for i, step := range steps {
		chain[i] = map[string]any{
			"level":    string(step.Level),
			"decision": string(step.Decision),
			"approver": step.Approver,
		}
	}
	return chain
}

func countRisk(findings []contract.RiskFinding, level contract.RiskLevel) int {
	count := 0
	for _, finding := range findings {
		if finding.RiskLevel == level {
			count++
		}
	}
	return count
}
