package mail

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrBadSignature     = errors.New("webhook signature verification failed")
)

// Verifier authenticates webhook payloads against a shared secret.
type Verifier struct {
	secret string
	logger *slog.Logger
}

func NewVerifier(log *slog.Logger, secret string) *Verifier {
	return &Verifier{
		secret: secret,
		logger: log.With(slog.String("component", "signature")),
	}
}

// Verify checks the HMAC-SHA256 hex signature over the raw request body.
// With no secret configured every request is accepted; that is a
// development mode and gets a warning on every call. With a secret
// configured, a missing or mismatched signature fails closed.
func (v *Verifier) Verify(body []byte, signature string) error {
	if v.secret == "" {
		v.logger.Warn("webhook secret not configured, accepting unsigned request")
		return nil
	}
	if signature == "" {
		return ErrMissingSignature
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}
