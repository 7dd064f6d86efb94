package domain

import "time"

// VerificationOutcome is the recorded result of a verification attempt.
type VerificationOutcome string

const (
	OutcomeVerified VerificationOutcome = "verified"
	OutcomeFailed   VerificationOutcome = "failed"
)

// Failure reasons persisted on failed verification records.
const (
	FailureOrderNotFound     = "order_not_found"
	FailureSignatureMismatch = "signature_mismatch"
)

// VerificationRecord is the audit row written for every verification attempt.
// PK: order_id, SK: record_id (ULID, time-ordered).
// Invariant: at most one record with outcome "verified" exists per order —
// the verified write happens only after winning the order's created→verified
// compare-and-set.
type VerificationRecord struct {
	OrderID          string              `json:"order_id" dynamodbav:"order_id"`
	RecordID         string              `json:"record_id" dynamodbav:"record_id"`
	PaymentReference string              `json:"payment_reference" dynamodbav:"payment_reference"`
	Signature        string              `json:"-" dynamodbav:"signature"`
	Outcome          VerificationOutcome `json:"outcome" dynamodbav:"outcome"`
	FailureReason    string              `json:"failure_reason,omitempty" dynamodbav:"failure_reason,omitempty"`
	VerifiedAt       time.Time           `json:"verified_at" dynamodbav:"verified_at"`
}
