package chatbot

// scenario maps trigger keywords to a canned reply for the support widget.
// The table is static product copy, not logic.
type scenario struct {
	Keywords    []string
	Reply       string
	Suggestions []string
}

var scenarios = []scenario{
	{
		Keywords: []string{"refund status", "where is my refund", "track"},
		Reply:    "You can track every refund from the dashboard. Each refund shows a timeline from GATHERING_DETAILS through SETTLED.",
		Suggestions: []string{
			"How long do refunds take?",
			"What does PROCESSING_AT_BANK mean?",
		},
	},
	{
		Keywords: []string{"utr", "proof", "settled"},
		Reply:    "A UTR is the bank reference number proving the transfer. We attach it to a refund when it settles.",
	},
	{
		Keywords: []string{"plan", "pricing", "upgrade", "downgrade"},
		Reply:    "Plans start at ₹999/month. Upgrades apply immediately; downgrades take effect at the end of your billing cycle.",
		Suggestions: []string{
			"What happens if I exceed my plan limit?",
		},
	},
	{
		Keywords: []string{"overage", "limit", "exceed"},
		Reply:    "Refunds beyond your plan's included quota are billed as an add-on at your plan's per-refund excess rate.",
	},
	{
		Keywords: []string{"cancel", "unsubscribe"},
		Reply:    "You can cancel anytime from billing settings. Cancellation is immediate and you keep read access to your data.",
	},
	{
		Keywords: []string{"import", "bulk", "csv"},
		Reply:    "Use bulk import on the refunds page to upload many refunds at once. Rows with errors are reported individually.",
	},
}

const fallbackReply = "I didn't catch that. You can ask about refund tracking, plans and pricing, overage billing, or bulk imports, or write to support@refundly.io."
