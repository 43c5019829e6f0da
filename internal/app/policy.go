package app

import (
	"crypto/subtle"

	"tcm-clinic/internal/model"
)

// Principal carries whatever a caller presented as proof of authority. Today
// that is only the deletion secret from the form field.
type Principal struct {
	DeleteSecret string
}

// DeletePolicy decides whether a principal may delete a record. The record
// may be nil when the policy is evaluated before the lookup; record-aware
// implementations must tolerate that.
type DeletePolicy interface {
	CanDelete(principal Principal, record *model.Record) bool
}

// SharedSecretPolicy authorizes deletion by exact match against one
// configured value. A placeholder, not a security boundary.
type SharedSecretPolicy struct {
	secret string
}

func NewSharedSecretPolicy(secret string) *SharedSecretPolicy {
	return &SharedSecretPolicy{secret: secret}
}

func (p *SharedSecretPolicy) CanDelete(principal Principal, _ *model.Record) bool {
	if p.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(principal.DeleteSecret), []byte(p.secret)) == 1
}
