package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer owns the gateway's completed-payment signature scheme: a hex-encoded
// HMAC-SHA256 over "orderID|paymentReference" keyed with the shared secret.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign computes the expected signature for an order/payment pair.
func (s *Signer) Sign(orderID, paymentReference string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(orderID + "|" + paymentReference))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the supplied signature against the recomputed one in
// constant time. hmac.Equal is the only comparison allowed here.
func (s *Signer) Verify(orderID, paymentReference, signature string) bool {
	expected := s.Sign(orderID, paymentReference)
	return hmac.Equal([]byte(expected), []byte(signature))
}
