package firebaseauth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/go-payments-api/internal/config"
	"github.com/go-payments-api/internal/domain"
	"google.golang.org/api/option"
)

// Verifier validates Firebase ID tokens against the project's current signing
// keys. It is constructed explicitly and injected — there is no package-level
// client or init-once guard.
type Verifier struct {
	client       *auth.Client
	checkRevoked bool
}

// NewVerifier builds the Firebase app and auth client from config.
// When cfg.FirebaseCredentialsFile is empty, application-default credentials
// are used.
func NewVerifier(ctx context.Context, cfg *config.Config) (*Verifier, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}
	return &Verifier{client: client, checkRevoked: cfg.FirebaseCheckRevoked}, nil
}

// Verify validates the raw ID token and returns the verified identity.
// Classified rejections come back as *domain.AuthError; any other error is an
// infrastructure failure the caller may degrade on.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*domain.Identity, error) {
	var (
		token *auth.Token
		err   error
	)
	if v.checkRevoked {
		token, err = v.client.VerifyIDTokenAndCheckRevoked(ctx, rawToken)
	} else {
		token, err = v.client.VerifyIDToken(ctx, rawToken)
	}
	if err != nil {
		return nil, classify(err)
	}

	ident := &domain.Identity{SubjectID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		ident.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		ident.DisplayName = name
	}
	if pic, ok := token.Claims["picture"].(string); ok {
		ident.PictureURL = pic
	}
	return ident, nil
}

// classify maps SDK verification failures onto the domain auth taxonomy.
// Errors that are neither expired, revoked, nor structurally invalid are
// returned as-is so the middleware can treat them as infrastructure outages.
func classify(err error) error {
	switch {
	case auth.IsIDTokenExpired(err):
		return &domain.AuthError{Code: domain.AuthCodeTokenExpired, Reason: "token expired"}
	case auth.IsIDTokenRevoked(err):
		return &domain.AuthError{Code: domain.AuthCodeTokenRevoked, Reason: "token revoked"}
	case auth.IsIDTokenInvalid(err):
		return &domain.AuthError{Code: domain.AuthCodeTokenInvalid, Reason: "token invalid"}
	default:
		return fmt.Errorf("verify id token: %w", err)
	}
}
