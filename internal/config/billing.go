package config

import (
	"fmt"
	"os"
)

// Billing holds the gateway credentials and the plan-to-gateway-plan-id mapping.
// It is built once at startup and passed into the billing service, so handlers
// never read the process environment at request time.
type Billing struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string

	// PlanIDs maps an internal plan key (starter, growth, scale) to the
	// recurring plan id registered with the gateway. A plan missing here is a
	// configuration error surfaced at request time, not silently defaulted.
	PlanIDs map[string]string

	GSTRate  float64
	Currency string
}

var planIDEnvVars = map[string]string{
	"starter": "RAZORPAY_PLAN_STARTER",
	"growth":  "RAZORPAY_PLAN_GROWTH",
	"scale":   "RAZORPAY_PLAN_SCALE",
}

// LoadBilling builds the billing configuration from the environment. Gateway
// credentials and the webhook secret are required; individual plan ids may be
// absent and fail at the call site that needs them.
func LoadBilling() (*Billing, error) {
	b := &Billing{
		KeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		KeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		WebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		PlanIDs:       make(map[string]string),
		GSTRate:       GetFloatEnv("GST_RATE", 0.18),
		Currency:      GetEnv("BILLING_CURRENCY", "INR"),
	}

	if b.KeyID == "" || b.KeySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set")
	}
	if b.WebhookSecret == "" {
		return nil, fmt.Errorf("RAZORPAY_WEBHOOK_SECRET must be set")
	}

	for plan, envVar := range planIDEnvVars {
		if id := os.Getenv(envVar); id != "" {
			b.PlanIDs[plan] = id
		}
	}

	return b, nil
}

// PlanID resolves an internal plan key to its gateway plan id.
func (b *Billing) PlanID(plan string) (string, bool) {
	id, ok := b.PlanIDs[plan]
	return id, ok
}

// PlanKeyByID reverse-maps a gateway plan id to the internal plan key. Webhook
// payloads only carry the gateway id.
func (b *Billing) PlanKeyByID(gatewayPlanID string) (string, bool) {
	for plan, id := range b.PlanIDs {
		if id == gatewayPlanID {
			return plan, true
		}
	}
	return "", false
}
