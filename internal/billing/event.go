// Package billing verifies inbound billing-provider webhook events and
// reconciles their authoritative subscription state into the store.
package billing

import (
	"encoding/json"
	"time"
)

// Handled event types. Anything else is accepted and ignored.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventAccountUpdated      = "account.updated"
)

// Event is the verified webhook envelope.
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Created int64     `json:"created"`
	Data    EventData `json:"data"`
}

// EventData defers decoding of the payload object until the type is known.
type EventData struct {
	Object json.RawMessage `json:"object"`
}

// CheckoutSession is the payload of checkout.session.completed.
type CheckoutSession struct {
	ID            string            `json:"id"`
	CustomerEmail string            `json:"customer_email"`
	Subscription  string            `json:"subscription"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

// SubscriptionObject is the payload of customer.subscription.* events.
type SubscriptionObject struct {
	ID                 string            `json:"id"`
	Status             string            `json:"status"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	CanceledAt         int64             `json:"canceled_at"`
	Metadata           map[string]string `json:"metadata"`
}

// PeriodStart returns the provider-reported period start as a time.
func (s SubscriptionObject) PeriodStart() time.Time { return unixTime(s.CurrentPeriodStart) }

// PeriodEnd returns the provider-reported period end as a time.
func (s SubscriptionObject) PeriodEnd() time.Time { return unixTime(s.CurrentPeriodEnd) }

// AccountObject is the payload of account.updated for connected accounts.
type AccountObject struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"metadata"`
}

// CoachID resolves the owning coach from event metadata, falling back to the
// account email.
func (a AccountObject) CoachID() string {
	if coach := a.Metadata["coach_id"]; coach != "" {
		return coach
	}
	return a.Email
}

func unixTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}
