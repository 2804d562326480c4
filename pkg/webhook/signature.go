// Package webhook verifies svix-signed webhook deliveries.
package webhook

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// ErrVerification wraps every rejected delivery
var ErrVerification = errors.New("webhook verification failed")

// Verifier checks svix signatures over "id.timestamp.body" with the library's timestamp tolerance
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier decodes a whsec_ secret
func NewVerifier(secret string) (*Verifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Sign returns the "v1,<base64>" signature for a delivery
func (v *Verifier) Sign(id string, ts time.Time, body []byte) (string, error) {
	return v.wh.Sign(id, ts, body)
}

// Verify checks the svix headers against body
func (v *Verifier) Verify(h http.Header, body []byte) error {
	if err := v.wh.Verify(body, h); err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return nil
}
