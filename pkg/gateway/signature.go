package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature recomputes the callback signature the provider sends with
// a captured payment: HMAC-SHA256 over "intentID|paymentID" keyed with the
// shared secret. Comparison is constant time.
func VerifySignature(secret, intentID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(intentID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) VerifySignature(intentID, paymentID, signature string) bool {
	return VerifySignature(c.keySecret, intentID, paymentID, signature)
}
