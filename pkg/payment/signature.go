package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// SignBody computes the HMAC-SHA256 signature the voucher provider uses for
// its callbacks: HMAC(secret, timestamp + "." + rawBody), hex encoded.
// Binding the timestamp into the signature prevents replay of captured
// payloads outside the skew window.
func SignBody(secret string, timestamp int64, rawBody []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", timestamp)
	h.Write(rawBody)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMAC validates a signature produced by SignBody against the raw,
// unparsed body. Parsing before verifying is not an option here: the
// signature covers exact byte content.
//
// Returns ErrMissingSignatureHeader, ErrClockSkewExceeded or
// ErrInvalidSignature.
func VerifyHMAC(secret string, rawBody []byte, signature string, timestamp int64, maxSkew time.Duration, now time.Time) error {
	if signature == "" {
		return ErrMissingSignatureHeader
	}

	if maxSkew > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > maxSkew || age < -maxSkew {
			return fmt.Errorf("%w: timestamp off by %v", ErrClockSkewExceeded, age)
		}
	}

	expected := SignBody(secret, timestamp, rawBody)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// constantTimeEqual compares two strings without leaking length or content
// timing. Both sides are hashed first so differing lengths still compare in
// constant time.
func constantTimeEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return hmac.Equal(ha[:], hb[:])
}

// headerValue performs a case-insensitive header lookup. Notification headers
// arrive as a plain map and different HTTP stacks disagree on canonical
// casing.
func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
