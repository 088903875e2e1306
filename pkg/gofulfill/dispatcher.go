package gofulfill

import (
	"context"
	"fmt"
)

// Intent outcomes reported to Metrics
const (
	outcomeOK               = "ok"
	outcomeRejected         = "rejected"
	outcomeMissingParameter = "missing_parameter"
	outcomeUnknownIntent    = "unknown_intent"
)

// Dispatch routes one webhook request to the matching intent handler.
// Every path yields a Result; nothing is reported through errors.
func (m *Manager) Dispatch(ctx context.Context, req *WebhookRequest) Result {
	if req == nil {
		req = &WebhookRequest{}
	}
	intent := req.QueryResult.Intent.DisplayName
	params := req.QueryResult.Parameters

	userID := params.String(ParamUserID)
	if userID == "" {
		m.metrics.RecordIntent(intent, outcomeMissingParameter)
		return Result{Text: MsgUnknownUser}
	}

	switch intent {
	case IntentGetReport:
		return m.handleGetReport(ctx, userID, params.String(ParamFeature))
	case IntentUpgradePlan:
		return m.handleUpgradePlan(ctx, userID, params.String(ParamNewPlan))
	default:
		m.metrics.RecordIntent(intent, outcomeUnknownIntent)
		m.logger.Warn("Unhandled intent", Field{"intent", intent})
		return Result{Text: fmt.Sprintf(MsgUnknownIntentFmt, intent)}
	}
}

func (m *Manager) handleGetReport(ctx context.Context, userID, feature string) Result {
	if feature == "" {
		m.metrics.RecordIntent(IntentGetReport, outcomeMissingParameter)
		return Result{Text: MsgMissingFeature}
	}

	ent := m.CheckEntitlement(ctx, userID, feature)
	if !ent.Entitled {
		m.metrics.RecordIntent(IntentGetReport, outcomeRejected)
		return Result{Text: ent.Message}
	}

	m.metrics.RecordIntent(IntentGetReport, outcomeOK)
	return Result{OK: true, Text: fmt.Sprintf(MsgReportFmt, feature, m.ReportURL(feature, userID))}
}

func (m *Manager) handleUpgradePlan(ctx context.Context, userID, newPlan string) Result {
	if newPlan == "" {
		m.metrics.RecordIntent(IntentUpgradePlan, outcomeMissingParameter)
		return Result{Text: MsgMissingPlan}
	}

	up := m.UpgradePlan(ctx, userID, newPlan)
	if !up.Updated {
		m.metrics.RecordIntent(IntentUpgradePlan, outcomeRejected)
		return Result{Text: up.Message}
	}

	m.metrics.RecordIntent(IntentUpgradePlan, outcomeOK)
	return Result{OK: true, Text: up.Message}
}

// ReportURL builds the report link for feature and userID.
// Values are embedded as given: the link is neither signed nor time-limited.
func (m *Manager) ReportURL(feature, userID string) string {
	return m.reportBaseURL + "/" + feature + "/" + userID
}
