package billing

import "errors"

var (
	// ErrUnknownPlan means the plan key is not in the catalog. Treated as a
	// configuration error, never retried.
	ErrUnknownPlan = errors.New("unknown plan")

	// ErrPlanNotConfigured means the plan exists in the catalog but has no
	// gateway plan id in the environment.
	ErrPlanNotConfigured = errors.New("plan has no configured gateway plan id")

	// ErrAlreadySubscribed guards against duplicate subscription creation
	// from double-clicks or retried requests.
	ErrAlreadySubscribed = errors.New("merchant already has an active subscription")

	// ErrNoSubscription means there is nothing to update or cancel.
	ErrNoSubscription = errors.New("merchant has no subscription")

	// ErrUPIRestriction rejects plan changes on UPI-mandate subscriptions;
	// the gateway cannot reschedule a UPI mandate at cycle end.
	ErrUPIRestriction = errors.New("plan change not supported for UPI subscriptions")

	// ErrInvalidSignature rejects a webhook body whose HMAC does not match.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrMalformedEvent means the webhook body was signed but not parseable.
	ErrMalformedEvent = errors.New("malformed webhook event")
)
