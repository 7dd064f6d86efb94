package domain

import "time"

// CreditGrant is the ledger row credited after a first-time successful
// verification. PK: order_id — one grant per order, enforced with a
// conditional put on top of the order status compare-and-set.
type CreditGrant struct {
	OrderID   string    `json:"order_id" dynamodbav:"order_id"`
	GrantID   string    `json:"grant_id" dynamodbav:"grant_id"`
	SubjectID string    `json:"subject_id,omitempty" dynamodbav:"subject_id,omitempty"`
	PackageID string    `json:"package_id" dynamodbav:"package_id"`
	Credits   int       `json:"credits" dynamodbav:"credits"`
	GrantedAt time.Time `json:"granted_at" dynamodbav:"granted_at"`
}
