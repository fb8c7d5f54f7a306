// Package repo exposes one repository per entity kind, each a thin
// instantiation of the generic store with entity-specific sugar. No business
// logic lives here; the reconciliation engine composes these.
package repo

import (
	"context"

	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coachden/coachden/internal/awsx"
	"github.com/coachden/coachden/internal/entities"
	"github.com/coachden/coachden/internal/store"
	"github.com/coachden/coachden/internal/validation"
)

// Repositories bundles every per-kind repository over the single table.
type Repositories struct {
	Users         *Users
	Members       *Members
	Billing       *Billing
	Subscriptions *Subscriptions
	Videos        *Videos
	Challenges    *Challenges
	Lives         *Lives
	Locations     *Locations
	Links         *Links
	LandingPages  *LandingPages
	Payments      *Payments
	Categories    *Categories
}

// New wires all repositories against one table.
func New(client awsx.DynamoDBAPI, table string, log *zap.Logger) *Repositories {
	v := validation.New()

	return &Repositories{
		Users:         &Users{crud[entities.User]{store.New[entities.User](client, table, store.KindUser, log), v}},
		Members:       &Members{crud[entities.Member]{store.New[entities.Member](client, table, store.KindMember, log), v}},
		Billing:       &Billing{crud[entities.Billing]{store.New[entities.Billing](client, table, store.KindBilling, log), v}},
		Subscriptions: &Subscriptions{crud[entities.Subscription]{store.New[entities.Subscription](client, table, store.KindSubscription, log), v}},
		Videos:        &Videos{crud[entities.Video]{store.New[entities.Video](client, table, store.KindVideo, log), v}},
		Challenges:    &Challenges{crud[entities.Challenge]{store.New[entities.Challenge](client, table, store.KindChallenge, log), v}},
		Lives:         &Lives{crud[entities.Live]{store.New[entities.Live](client, table, store.KindLive, log), v}},
		Locations:     &Locations{crud[entities.Location]{store.New[entities.Location](client, table, store.KindLocation, log), v}},
		Links:         &Links{crud[entities.Link]{store.New[entities.Link](client, table, store.KindLink, log), v}},
		LandingPages:  &LandingPages{crud[entities.LandingPage]{store.New[entities.LandingPage](client, table, store.KindLandingPage, log), v}},
		Payments:      &Payments{crud[entities.Payment]{store.New[entities.Payment](client, table, store.KindPayment, log), v}},
		Categories:    &Categories{crud[entities.Category]{store.New[entities.Category](client, table, store.KindCategory, log), v}},
	}
}

// crud is the shared per-kind implementation every repository embeds.
type crud[T store.Record] struct {
	s *store.Store[T]
	v *validatorv10.Validate
}

// put validates the entity shape and writes the full record.
func (c *crud[T]) put(ctx context.Context, entity T) (T, error) {
	if err := c.v.Struct(entity); err != nil {
		var zero T
		return zero, err
	}
	return c.s.Put(ctx, entity)
}

// Get fetches one record by owner and id.
func (c *crud[T]) Get(ctx context.Context, owner, id string) (T, error) {
	return c.s.GetOne(ctx, owner, id)
}

// Update applies a partial update to the named fields only.
func (c *crud[T]) Update(ctx context.Context, owner, id string, fields ...store.Field) (T, error) {
	return c.s.Update(ctx, owner, id, fields...)
}

// Delete removes a record; absent records succeed silently.
func (c *crud[T]) Delete(ctx context.Context, owner, id string) error {
	return c.s.Delete(ctx, owner, id)
}
