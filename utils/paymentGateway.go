package utils

import (
	"fmt"
	"lms/config"
	"log"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// VerifyPayment checks a payment reference against the gateway. The gateway
// must report the payment captured for at least the course price.
func VerifyPayment(paymentID string, amount uint) error {
	if config.AppConfig.PaymentApiURL == "" {
		// No gateway configured (local/dev). Accept the reference as-is.
		log.Printf("[PAYMENT] No gateway configured, accepting payment %s", paymentID)
		return nil
	}

	var result struct {
		Status string `json:"status"`
		Amount uint   `json:"amount"`
	}

	client := resty.New()
	resp, err := client.R().
		SetAuthToken(config.AppConfig.PaymentApiKey).
		SetResult(&result).
		Get(fmt.Sprintf("%s/payments/%s", config.AppConfig.PaymentApiURL, paymentID))
	if err != nil {
		log.Printf("[PAYMENT] Gateway request failed for %s: %v", paymentID, err)
		return fmt.Errorf("payment gateway unreachable")
	}

	if resp.StatusCode() != http.StatusOK {
		log.Printf("[PAYMENT] Gateway returned %d for %s", resp.StatusCode(), paymentID)
		return fmt.Errorf("payment not found")
	}

	if result.Status != "captured" && result.Status != "VERIFIED" {
		return fmt.Errorf("payment not captured")
	}
	if result.Amount < amount {
		return fmt.Errorf("payment amount mismatch")
	}

	return nil
}
