// Package gateway wraps the Razorpay SDK behind a typed client so the rest of
// the application never touches the SDK's map-shaped payloads or error types.
package gateway

import (
	"context"
	"errors"

	razorpay "github.com/razorpay/razorpay-go"
	rzperrors "github.com/razorpay/razorpay-go/errors"
	"github.com/razorpay/razorpay-go/utils"

	"refundly/internal/config"
)

// Subscription is the subset of the gateway's subscription entity this
// application reads.
type Subscription struct {
	ID            string
	PlanID        string
	Status        string
	PaymentMethod string
	CreatedAt     int64
}

// CreateSubscriptionParams are the inputs for a new recurring subscription.
type CreateSubscriptionParams struct {
	PlanID     string
	TotalCount int
	Notes      map[string]interface{}
}

// AddonParams describes a one-off add-on charge on an existing subscription.
type AddonParams struct {
	Name        string
	AmountPaise int64
	Currency    string
}

// Client is the gateway surface the billing service depends on.
type Client interface {
	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error)
	FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	UpdateSubscription(ctx context.Context, subscriptionID, planID string, changeNow bool) error
	CancelSubscription(ctx context.Context, subscriptionID string) error
	CreateAddon(ctx context.Context, subscriptionID string, addon AddonParams) error
	VerifyWebhookSignature(body []byte, signature string) bool
}

type razorpayClient struct {
	client        *razorpay.Client
	webhookSecret string
}

// NewRazorpayClient builds the production gateway client from billing config.
func NewRazorpayClient(cfg *config.Billing) Client {
	return &razorpayClient{
		client:        razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		webhookSecret: cfg.WebhookSecret,
	}
}

func (c *razorpayClient) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error) {
	data := map[string]interface{}{
		"plan_id":         params.PlanID,
		"total_count":     params.TotalCount,
		"customer_notify": 1,
	}
	if len(params.Notes) > 0 {
		data["notes"] = params.Notes
	}

	body, err := c.client.Subscription.Create(data, nil)
	if err != nil {
		return nil, mapError(err)
	}
	return subscriptionFromBody(body), nil
}

func (c *razorpayClient) FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	body, err := c.client.Subscription.Fetch(subscriptionID, nil, nil)
	if err != nil {
		return nil, mapError(err)
	}
	return subscriptionFromBody(body), nil
}

func (c *razorpayClient) UpdateSubscription(ctx context.Context, subscriptionID, planID string, changeNow bool) error {
	scheduleChangeAt := "cycle_end"
	if changeNow {
		scheduleChangeAt = "now"
	}
	_, err := c.client.Subscription.Update(subscriptionID, map[string]interface{}{
		"plan_id":            planID,
		"schedule_change_at": scheduleChangeAt,
	}, nil)
	return mapError(err)
}

func (c *razorpayClient) CancelSubscription(ctx context.Context, subscriptionID string) error {
	_, err := c.client.Subscription.Cancel(subscriptionID, map[string]interface{}{
		"cancel_at_cycle_end": 0,
	}, nil)
	return mapError(err)
}

func (c *razorpayClient) CreateAddon(ctx context.Context, subscriptionID string, addon AddonParams) error {
	_, err := c.client.Subscription.CreateAddon(subscriptionID, map[string]interface{}{
		"item": map[string]interface{}{
			"name":     addon.Name,
			"amount":   addon.AmountPaise,
			"currency": addon.Currency,
		},
		"quantity": 1,
	}, nil)
	return mapError(err)
}

func (c *razorpayClient) VerifyWebhookSignature(body []byte, signature string) bool {
	return utils.VerifyWebhookSignature(string(body), signature, c.webhookSecret)
}

func subscriptionFromBody(body map[string]interface{}) *Subscription {
	return &Subscription{
		ID:            stringField(body, "id"),
		PlanID:        stringField(body, "plan_id"),
		Status:        stringField(body, "status"),
		PaymentMethod: stringField(body, "payment_method"),
		CreatedAt:     int64Field(body, "created_at"),
	}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func int64Field(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var badReq *rzperrors.BadRequestError
	if errors.As(err, &badReq) {
		return &Error{Kind: KindBadRequest, Description: badReq.Error()}
	}
	var gw *rzperrors.GatewayError
	if errors.As(err, &gw) {
		return &Error{Kind: KindGateway, Description: gw.Error()}
	}
	var srv *rzperrors.ServerError
	if errors.As(err, &srv) {
		return &Error{Kind: KindServer, Description: srv.Error()}
	}
	return &Error{Kind: KindNetwork, Description: err.Error()}
}
