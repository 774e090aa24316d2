package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one export run.
	FieldRunID = "run_id"
	// FieldActivityID is the Strava activity identifier.
	FieldActivityID = "activity_id"
	// FieldEventType classifies a warning or error for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType names the decision being logged.
	FieldDecisionType = "decision_type"
	// FieldDecisionResult is the decision outcome.
	FieldDecisionResult = "decision_result"
	// FieldDecisionReason explains the outcome.
	FieldDecisionReason = "decision_reason"
)
