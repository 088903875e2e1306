package gofulfill

import (
	"strconv"
)

// Intent names handled by the dispatcher
const (
	IntentGetReport   = "GetReport"
	IntentUpgradePlan = "UpgradePlan"
)

// Parameter names read from the inbound payload
const (
	ParamUserID  = "user_id"
	ParamFeature = "feature"
	ParamNewPlan = "new_plan"
)

// WebhookRequest is the inbound payload sent by the conversational platform.
// Only the fields the dispatcher reads are modelled.
type WebhookRequest struct {
	QueryResult QueryResult `json:"queryResult"`
}

// QueryResult carries the matched intent and its extracted parameters
type QueryResult struct {
	Intent     Intent     `json:"intent"`
	Parameters Parameters `json:"parameters"`
}

// Intent identifies the matched intent by its display name
type Intent struct {
	DisplayName string `json:"displayName"`
}

// Parameters holds the raw parameter values as decoded from JSON
type Parameters map[string]interface{}

// String returns the text form of a parameter.
// Strings are returned verbatim, numbers and booleans are formatted,
// anything else (missing, null, lists, objects) yields "".
func (p Parameters) String(name string) string {
	switch v := p[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// WebhookResponse is the JSON body returned to the platform
type WebhookResponse struct {
	FulfillmentText string `json:"fulfillmentText"`
}

// Result is the outcome of dispatching one request.
// OK reports whether the request was fulfilled; failures are carried in Text
// and never turned into an HTTP status.
type Result struct {
	OK   bool
	Text string
}

// Response maps the result to the wire shape
func (r Result) Response() WebhookResponse {
	return WebhookResponse{FulfillmentText: r.Text}
}

// EntitlementResult is the outcome of an entitlement check
type EntitlementResult struct {
	Entitled bool
	Message  string
}

// UpgradeResult is the outcome of a plan upgrade
type UpgradeResult struct {
	Updated bool
	Message string
}
