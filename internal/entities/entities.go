// Package entities defines the record shapes persisted in the single table.
// Every type carries its owner identity and satisfies store.Record so the
// store can derive its address; created_at/updated_at are assigned by the
// store, never by callers.
package entities

import (
	"time"

	"github.com/coachden/coachden/internal/store"
)

// Member and subscription status values.
const (
	MemberActive   = "active"
	MemberInactive = "inactive"

	SubscriptionActive   = "active"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// User is a coach account, one per email.
type User struct {
	Email            string    `dynamodbav:"email" validate:"required,email"`
	Name             string    `dynamodbav:"name,omitempty"`
	Role             string    `dynamodbav:"role,omitempty"`
	BillingAccountID string    `dynamodbav:"billing_account_id,omitempty"`
	CreatedAt        time.Time `dynamodbav:"created_at"`
	UpdatedAt        time.Time `dynamodbav:"updated_at"`
}

func (u User) OwnerIdentity() string  { return u.Email }
func (u User) RecordID() string       { return u.Email }
func (u User) RecordKind() store.Kind { return store.KindUser }

// Member is a client of a coach. Members are addressed by their email under
// the coach owner, which is how billing events link back to them.
type Member struct {
	Coach          string    `dynamodbav:"coach" validate:"required"`
	Email          string    `dynamodbav:"email" validate:"required,email"`
	Name           string    `dynamodbav:"name,omitempty"`
	Status         string    `dynamodbav:"status" validate:"required,oneof=active inactive"`
	SubscriptionID string    `dynamodbav:"subscription_id,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
}

func (m Member) OwnerIdentity() string  { return m.Coach }
func (m Member) RecordID() string       { return m.Email }
func (m Member) RecordKind() store.Kind { return store.KindMember }

// Billing maps a connected billing-provider account back to its coach. It is
// business-keyed: the account id addresses the record.
type Billing struct {
	AccountID string    `dynamodbav:"account_id" validate:"required"`
	Coach     string    `dynamodbav:"coach" validate:"required"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func (b Billing) OwnerIdentity() string  { return b.AccountID }
func (b Billing) RecordID() string       { return b.AccountID }
func (b Billing) RecordKind() store.Kind { return store.KindBilling }

// Subscription mirrors the billing provider's authoritative subscription
// state. Keyed by the provider subscription id; never deleted, kept for
// audit after cancellation.
type Subscription struct {
	ProviderID         string     `dynamodbav:"provider_id" validate:"required"`
	Coach              string     `dynamodbav:"coach,omitempty"`
	MemberEmail        string     `dynamodbav:"member_email,omitempty"`
	Status             string     `dynamodbav:"status" validate:"required,oneof=active past_due canceled"`
	CurrentPeriodStart time.Time  `dynamodbav:"current_period_start,omitempty"`
	CurrentPeriodEnd   time.Time  `dynamodbav:"current_period_end,omitempty"`
	CanceledAt         *time.Time `dynamodbav:"canceled_at,omitempty"`
	CreatedAt          time.Time  `dynamodbav:"created_at"`
	UpdatedAt          time.Time  `dynamodbav:"updated_at"`
}

func (s Subscription) OwnerIdentity() string  { return s.ProviderID }
func (s Subscription) RecordID() string       { return s.ProviderID }
func (s Subscription) RecordKind() store.Kind { return store.KindSubscription }

// Video is an on-demand training video owned by a coach.
type Video struct {
	Coach       string    `dynamodbav:"coach" validate:"required"`
	ID          string    `dynamodbav:"id" validate:"required"`
	Title       string    `dynamodbav:"title" validate:"required"`
	Description string    `dynamodbav:"description,omitempty"`
	URL         string    `dynamodbav:"url,omitempty"`
	CategoryID  string    `dynamodbav:"category_id,omitempty"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"`
}

func (v Video) OwnerIdentity() string  { return v.Coach }
func (v Video) RecordID() string       { return v.ID }
func (v Video) RecordKind() store.Kind { return store.KindVideo }

// Challenge is a multi-day program owned by a coach.
type Challenge struct {
	Coach       string    `dynamodbav:"coach" validate:"required"`
	ID          string    `dynamodbav:"id" validate:"required"`
	Title       string    `dynamodbav:"title" validate:"required"`
	Description string    `dynamodbav:"description,omitempty"`
	Days        int       `dynamodbav:"days,omitempty"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"`
}

func (c Challenge) OwnerIdentity() string  { return c.Coach }
func (c Challenge) RecordID() string       { return c.ID }
func (c Challenge) RecordKind() store.Kind { return store.KindChallenge }

// Live is a scheduled live class.
type Live struct {
	Coach     string    `dynamodbav:"coach" validate:"required"`
	ID        string    `dynamodbav:"id" validate:"required"`
	Title     string    `dynamodbav:"title" validate:"required"`
	StartsAt  time.Time `dynamodbav:"starts_at,omitempty"`
	URL       string    `dynamodbav:"url,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func (l Live) OwnerIdentity() string  { return l.Coach }
func (l Live) RecordID() string       { return l.ID }
func (l Live) RecordKind() store.Kind { return store.KindLive }

// Location is a physical training location.
type Location struct {
	Coach     string    `dynamodbav:"coach" validate:"required"`
	ID        string    `dynamodbav:"id" validate:"required"`
	Name      string    `dynamodbav:"name" validate:"required"`
	Address   string    `dynamodbav:"address,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func (l Location) OwnerIdentity() string  { return l.Coach }
func (l Location) RecordID() string       { return l.ID }
func (l Location) RecordKind() store.Kind { return store.KindLocation }

// Link is an external link shown on a coach profile.
type Link struct {
	Coach     string    `dynamodbav:"coach" validate:"required"`
	ID        string    `dynamodbav:"id" validate:"required"`
	Title     string    `dynamodbav:"title,omitempty"`
	URL       string    `dynamodbav:"url" validate:"required,url"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func (l Link) OwnerIdentity() string  { return l.Coach }
func (l Link) RecordID() string       { return l.ID }
func (l Link) RecordKind() store.Kind { return store.KindLink }

// LandingPage is a coach's public landing page.
type LandingPage struct {
	Coach     string    `dynamodbav:"coach" validate:"required"`
	ID        string    `dynamodbav:"id" validate:"required"`
	Slug      string    `dynamodbav:"slug,omitempty"`
	Headline  string    `dynamodbav:"headline,omitempty"`
	Published bool      `dynamodbav:"published"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func (p LandingPage) OwnerIdentity() string  { return p.Coach }
func (p LandingPage) RecordID() string       { return p.ID }
func (p LandingPage) RecordKind() store.Kind { return store.KindLandingPage }

// Payment is an audit record of a billing-provider charge. The id is the
// provider's checkout-session id, which keeps event redelivery idempotent.
type Payment struct {
	Coach          string    `dynamodbav:"coach" validate:"required"`
	ID             string    `dynamodbav:"id" validate:"required"`
	MemberEmail    string    `dynamodbav:"member_email,omitempty"`
	SubscriptionID string    `dynamodbav:"subscription_id,omitempty"`
	Amount         int64     `dynamodbav:"amount,omitempty"`
	Currency       string    `dynamodbav:"currency,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
}

func (p Payment) OwnerIdentity() string  { return p.Coach }
func (p Payment) RecordID() string       { return p.ID }
func (p Payment) RecordKind() store.Kind { return store.KindPayment }

// Category groups videos and challenges.
type Category struct {
	Coach     string    `dynamodbav:"coach" validate:"required"`
	ID        string    `dynamodbav:"id" validate:"required"`
	Name      string    `dynamodbav:"name" validate:"required"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func (c Category) OwnerIdentity() string  { return c.Coach }
func (c Category) RecordID() string       { return c.ID }
func (c Category) RecordKind() store.Kind { return store.KindCategory }
