package dto

// WebhookResult reports how an inbound provider event was handled
type WebhookResult struct {
	Handled       bool   `json:"handled"`
	Event         string `json:"event"`
	Reference     string `json:"reference,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status,omitempty"`
	Reason        string `json:"reason,omitempty"`
}
