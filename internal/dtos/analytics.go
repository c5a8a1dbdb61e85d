package dtos

import "time"

type TipSummary struct {
	AmountCents int64     `json:"amount_cents"`
	ReaderName  string    `json:"reader_name,omitempty"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type TipAnalyticsResponse struct {
	TipCount         int64        `json:"tip_count"`
	TotalAmountCents int64        `json:"total_amount_cents"`
	LastTipAt        *time.Time   `json:"last_tip_at,omitempty"`
	RecentTips       []TipSummary `json:"recent_tips"`
}
