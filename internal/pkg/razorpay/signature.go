package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// PaymentPayload is the string Razorpay signs for checkout callbacks.
func PaymentPayload(orderID, paymentID string) []byte {
	return []byte(orderID + "|" + paymentID)
}

// VerifyPaymentSignature checks the razorpay_signature returned to the
// client after checkout.
func VerifyPaymentSignature(keySecret, orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" {
		return false
	}
	return verify(keySecret, PaymentPayload(orderID, paymentID), signature)
}

// VerifyWebhookSignature checks X-Razorpay-Signature over the raw request body.
func VerifyWebhookSignature(webhookSecret string, body []byte, signature string) bool {
	return verify(webhookSecret, body, signature)
}

func verify(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	given, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(given, mac.Sum(nil))
}
