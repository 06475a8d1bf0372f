// Package events publishes ledger resolutions to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campaignops/internal/ledger"
)

// TypeDebtResolved is emitted once per ResolutionEvent applied to the ledger.
const TypeDebtResolved = "debt.resolved"

// Publisher delivers an encoded event. partitionKey groups related events.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
	Close() error
}

// DebtResolved is the wire payload of TypeDebtResolved.
type DebtResolved struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	CampaignRef string    `json:"campaign_ref"`
	DonationID  int       `json:"donation_id"`
	Beneficiary string    `json:"beneficiary"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	DonatedAt   time.Time `json:"donated_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PublishResolutions sends one DebtResolved per event, keyed by beneficiary.
// It stops at the first delivery error.
func PublishResolutions(ctx context.Context, p Publisher, campaignRef, currency string, events []ledger.ResolutionEvent) error {
	now := time.Now().UTC()
	for _, ev := range events {
		payload, err := json.Marshal(DebtResolved{
			EventID:     uuid.NewString(),
			Type:        TypeDebtResolved,
			CampaignRef: campaignRef,
			DonationID:  int(ev.DonationID),
			Beneficiary: ev.Beneficiary,
			Amount:      ev.Applied.String(),
			Currency:    currency,
			Status:      string(ev.Status),
			DonatedAt:   ev.Timestamp,
			OccurredAt:  now,
		})
		if err != nil {
			return fmt.Errorf("events: encode %s: %w", TypeDebtResolved, err)
		}
		if err := p.Publish(ctx, TypeDebtResolved, payload, ev.Beneficiary); err != nil {
			return fmt.Errorf("events: publish %s: %w", TypeDebtResolved, err)
		}
	}
	return nil
}
