package repo

import (
	"context"

	"github.com/coachden/coachden/internal/entities"
	"github.com/coachden/coachden/internal/store"
)

// Users holds coach accounts, one singleton record per email.
type Users struct {
	crud[entities.User]
}

func (r *Users) Create(ctx context.Context, u entities.User) (entities.User, error) {
	return r.put(ctx, u)
}

func (r *Users) Get(ctx context.Context, email string) (entities.User, error) {
	return r.crud.Get(ctx, email, email)
}

// SetBillingAccount refreshes the cached connected-account id on a coach.
func (r *Users) SetBillingAccount(ctx context.Context, email, accountID string) (entities.User, error) {
	return r.crud.Update(ctx, email, email, store.Field{Name: "billing_account_id", Value: accountID})
}

// Members holds a coach's clients, addressed by member email.
type Members struct {
	crud[entities.Member]
}

func (r *Members) Create(ctx context.Context, m entities.Member) (entities.Member, error) {
	return r.put(ctx, m)
}

// ByCoach returns all members belonging to one coach.
func (r *Members) ByCoach(ctx context.Context, coach string) ([]entities.Member, error) {
	return r.s.GetByPrefix(ctx, coach)
}

// SetStatus flips a member's status; subscriptionID is recorded when given.
func (r *Members) SetStatus(ctx context.Context, coach, email, status, subscriptionID string) (entities.Member, error) {
	fields := []store.Field{{Name: "status", Value: status}}
	if subscriptionID != "" {
		fields = append(fields, store.Field{Name: "subscription_id", Value: subscriptionID})
	}
	return r.crud.Update(ctx, coach, email, fields...)
}

// Billing maps connected billing accounts to coaches, keyed by account id.
type Billing struct {
	crud[entities.Billing]
}

func (r *Billing) Put(ctx context.Context, b entities.Billing) (entities.Billing, error) {
	return r.put(ctx, b)
}

// ByAccountID looks a record up by the connected-account business key.
func (r *Billing) ByAccountID(ctx context.Context, accountID string) (entities.Billing, error) {
	return r.crud.Get(ctx, accountID, accountID)
}

// Subscriptions mirrors provider subscription state, keyed by the provider
// subscription id.
type Subscriptions struct {
	crud[entities.Subscription]
}

func (r *Subscriptions) Put(ctx context.Context, s entities.Subscription) (entities.Subscription, error) {
	return r.put(ctx, s)
}

// ByProviderID looks a subscription up by its provider id.
func (r *Subscriptions) ByProviderID(ctx context.Context, providerID string) (entities.Subscription, error) {
	return r.crud.Get(ctx, providerID, providerID)
}

// Update applies a partial update addressed by provider id.
func (r *Subscriptions) Update(ctx context.Context, providerID string, fields ...store.Field) (entities.Subscription, error) {
	return r.crud.Update(ctx, providerID, providerID, fields...)
}

// Payments is the audit trail of provider charges per coach.
type Payments struct {
	crud[entities.Payment]
}

func (r *Payments) Record(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	return r.put(ctx, p)
}

// ByCoach returns all payment records for one coach.
func (r *Payments) ByCoach(ctx context.Context, coach string) ([]entities.Payment, error) {
	return r.s.GetByPrefix(ctx, coach)
}
