package http

import (
	"github.com/go-payments-api/internal/infrastructure/dynamo"
	"github.com/go-payments-api/internal/infrastructure/razorpay"
	"github.com/go-payments-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	OrderRepo        *dynamo.OrderRepo
	VerificationRepo *dynamo.VerificationRepo
	CreditGrantRepo  *dynamo.CreditGrantRepo
	Gateway          *razorpay.Client
	Signer           *razorpay.Signer
	// Verifier may be nil when the identity backend is unavailable at startup;
	// the router then serves every request anonymously.
	Verifier middleware.TokenVerifier
}
