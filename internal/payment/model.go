// Package payment confirms express bookings from signed payment notifications.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

const (
	EventPaymentUpdated = "payment.updated"
	StatusCompleted     = "COMPLETED"
	SignatureHeader     = "x-square-signature"
)

// Notification is the subset of the provider's webhook body the service reads.
type Notification struct {
	Type    string `json:"type"`
	EventID string `json:"event_id"`
	Data    struct {
		Object struct {
			Payment Payment `json:"payment"`
		} `json:"object"`
	} `json:"data"`
}

type Payment struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	BuyerEmailAddress string `json:"buyer_email_address"`
	AmountMoney       Money  `json:"amount_money"`
}

// Money is an amount in the currency's minor unit.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Sign returns base64(HMAC-SHA256(key, notificationURL + body)).
func Sign(key, notificationURL string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(notificationURL))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify compares signature with the expected one in constant time.
func Verify(key, notificationURL string, body []byte, signature string) bool {
	expected := Sign(key, notificationURL, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
