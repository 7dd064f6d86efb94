package domain

// Identity is a verified caller identity produced by the identity verifier.
// It is never constructed from request bodies and lives only for the request
// that carried the credential.
type Identity struct {
	SubjectID   string `json:"subject_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PictureURL  string `json:"picture_url"`
}
