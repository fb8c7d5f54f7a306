package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/coachden/coachden/internal/entities"
	"github.com/coachden/coachden/internal/notify"
	"github.com/coachden/coachden/internal/repo"
	"github.com/coachden/coachden/internal/store"
)

// Notifier enqueues best-effort member notifications.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) error
}

// Recorder counts processed events. Implementations must be best effort.
type Recorder interface {
	EventProcessed(ctx context.Context, eventType string, ok bool)
}

// EngineConfig groups the engine's collaborators. Notifier and Metrics may
// be nil.
type EngineConfig struct {
	Repos    *repo.Repositories
	Notifier Notifier
	Metrics  Recorder
	Log      *zap.Logger
}

// Engine applies verified provider events to the store. It holds no state of
// its own: every mutation goes through the repositories, keyed by provider
// subscription id, which is what makes redelivery idempotent.
type Engine struct {
	repos    *repo.Repositories
	notifier Notifier
	metrics  Recorder
	log      *zap.Logger
	nowFunc  func() time.Time
}

// NewEngine builds a reconciliation engine.
func NewEngine(cfg EngineConfig) *Engine {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		repos:    cfg.Repos,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		log:      log.Named("billing.engine"),
		nowFunc:  time.Now,
	}
}

// Process applies one verified event. It returns an error ONLY when the
// event's primary state could not be persisted, so the provider redelivers;
// everything else (unknown types, missing member links, notification
// failures) is logged and the event still counts as processed.
func (e *Engine) Process(ctx context.Context, evt *Event) error {
	var err error
	switch evt.Type {
	case EventCheckoutCompleted:
		err = e.handleCheckoutCompleted(ctx, evt)
	case EventSubscriptionUpdated:
		err = e.handleSubscriptionUpdated(ctx, evt)
	case EventSubscriptionDeleted:
		err = e.handleSubscriptionDeleted(ctx, evt)
	case EventAccountUpdated:
		err = e.handleAccountUpdated(ctx, evt)
	default:
		e.log.Info("ignoring unhandled event type",
			zap.String("event_id", evt.ID),
			zap.String("event_type", evt.Type))
	}

	if e.metrics != nil {
		e.metrics.EventProcessed(ctx, evt.Type, err == nil)
	}
	return err
}

// handleCheckoutCompleted creates/links the subscription and member after a
// successful checkout, and writes the payment audit record.
func (e *Engine) handleCheckoutCompleted(ctx context.Context, evt *Event) error {
	var session CheckoutSession
	if err := json.Unmarshal(evt.Data.Object, &session); err != nil {
		return fmt.Errorf("%w: checkout session: %v", ErrMalformedPayload, err)
	}

	coach := session.Metadata["coach_id"]
	email := session.CustomerEmail
	subID := session.Subscription
	if subID == "" || email == "" || coach == "" {
		e.log.Warn("checkout event missing linkage, nothing to reconcile",
			zap.String("event_id", evt.ID),
			zap.String("subscription_id", subID),
			zap.String("coach", coach))
		return nil
	}

	memberStatus := entities.MemberActive

	existing, err := e.repos.Subscriptions.ByProviderID(ctx, subID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		_, err = e.repos.Subscriptions.Put(ctx, entities.Subscription{
			ProviderID:  subID,
			Coach:       coach,
			MemberEmail: email,
			Status:      entities.SubscriptionActive,
		})
		if err != nil {
			return fmt.Errorf("persist subscription %s: %w", subID, err)
		}
	case err != nil:
		return fmt.Errorf("load subscription %s: %w", subID, err)
	default:
		// An out-of-order subscription.updated beat us here; only backfill
		// the linkage, never regress the provider-reported status. The member
		// mirrors that status too, not the checkout.
		if existing.Coach == "" || existing.MemberEmail == "" {
			if _, err := e.repos.Subscriptions.Update(ctx, subID,
				store.Field{Name: "coach", Value: coach},
				store.Field{Name: "member_email", Value: email},
			); err != nil {
				return fmt.Errorf("link subscription %s: %w", subID, err)
			}
		}
		memberStatus = memberStatusFor(existing.Status)
	}

	e.linkMember(ctx, coach, email, memberStatus, subID)
	e.recordPayment(ctx, coach, email, session)
	e.send(ctx, notify.Notification{
		Recipient: email,
		Template:  notify.TemplateMemberWelcome,
		Data:      map[string]string{"coach": coach},
	})
	return nil
}

// handleSubscriptionUpdated upserts the provider-reported status. Events may
// arrive before the originating checkout; the record is created on demand.
func (e *Engine) handleSubscriptionUpdated(ctx context.Context, evt *Event) error {
	var sub SubscriptionObject
	if err := json.Unmarshal(evt.Data.Object, &sub); err != nil {
		return fmt.Errorf("%w: subscription object: %v", ErrMalformedPayload, err)
	}
	if sub.ID == "" {
		e.log.Warn("subscription event without id", zap.String("event_id", evt.ID))
		return nil
	}

	status := mapProviderStatus(sub.Status)

	record, err := e.repos.Subscriptions.ByProviderID(ctx, sub.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		record = entities.Subscription{
			ProviderID:         sub.ID,
			Coach:              sub.Metadata["coach_id"],
			MemberEmail:        sub.Metadata["member_email"],
			Status:             status,
			CurrentPeriodStart: sub.PeriodStart(),
			CurrentPeriodEnd:   sub.PeriodEnd(),
		}
		if _, err := e.repos.Subscriptions.Put(ctx, record); err != nil {
			return fmt.Errorf("persist subscription %s: %w", sub.ID, err)
		}
	case err != nil:
		return fmt.Errorf("load subscription %s: %w", sub.ID, err)
	default:
		if record.Status == entities.SubscriptionCanceled {
			// Terminal state; a late update must not resurrect it.
			e.log.Info("ignoring update for canceled subscription",
				zap.String("subscription_id", sub.ID))
			return nil
		}
		if _, err := e.repos.Subscriptions.Update(ctx, sub.ID,
			store.Field{Name: "status", Value: status},
			store.Field{Name: "current_period_start", Value: sub.PeriodStart()},
			store.Field{Name: "current_period_end", Value: sub.PeriodEnd()},
		); err != nil {
			return fmt.Errorf("update subscription %s: %w", sub.ID, err)
		}
	}

	if record.Coach != "" && record.MemberEmail != "" {
		e.linkMember(ctx, record.Coach, record.MemberEmail, memberStatusFor(status), sub.ID)
		if status == entities.SubscriptionPastDue {
			e.send(ctx, notify.Notification{
				Recipient: record.MemberEmail,
				Template:  notify.TemplatePaymentFailed,
				Data:      map[string]string{"subscription_id": sub.ID},
			})
		}
	}
	return nil
}

// handleSubscriptionDeleted cancels a known subscription. An unknown id is a
// warning, not an error: there is nothing to cancel, and failing would only
// cause a redelivery storm.
func (e *Engine) handleSubscriptionDeleted(ctx context.Context, evt *Event) error {
	var sub SubscriptionObject
	if err := json.Unmarshal(evt.Data.Object, &sub); err != nil {
		return fmt.Errorf("%w: subscription object: %v", ErrMalformedPayload, err)
	}
	if sub.ID == "" {
		e.log.Warn("subscription event without id", zap.String("event_id", evt.ID))
		return nil
	}

	record, err := e.repos.Subscriptions.ByProviderID(ctx, sub.ID)
	if errors.Is(err, store.ErrNotFound) {
		e.log.Warn("deletion event for unknown subscription, nothing to cancel",
			zap.String("event_id", evt.ID),
			zap.String("subscription_id", sub.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load subscription %s: %w", sub.ID, err)
	}
	if record.Status == entities.SubscriptionCanceled {
		e.log.Info("subscription already canceled", zap.String("subscription_id", sub.ID))
		return nil
	}

	if _, err := e.repos.Subscriptions.Update(ctx, sub.ID,
		store.Field{Name: "status", Value: entities.SubscriptionCanceled},
		store.Field{Name: "canceled_at", Value: e.nowFunc().UTC()},
	); err != nil {
		return fmt.Errorf("cancel subscription %s: %w", sub.ID, err)
	}

	if record.Coach != "" && record.MemberEmail != "" {
		if _, err := e.repos.Members.SetStatus(ctx, record.Coach, record.MemberEmail,
			entities.MemberInactive, ""); err != nil {
			e.log.Warn("could not deactivate member for canceled subscription",
				zap.String("subscription_id", sub.ID),
				zap.String("member", record.MemberEmail),
				zap.Error(err))
		}
		e.send(ctx, notify.Notification{
			Recipient: record.MemberEmail,
			Template:  notify.TemplateSubscriptionCanceled,
			Data:      map[string]string{"subscription_id": sub.ID},
		})
	}
	return nil
}

// handleAccountUpdated refreshes the cached connected-account id for the
// owning coach.
func (e *Engine) handleAccountUpdated(ctx context.Context, evt *Event) error {
	var acct AccountObject
	if err := json.Unmarshal(evt.Data.Object, &acct); err != nil {
		return fmt.Errorf("%w: account object: %v", ErrMalformedPayload, err)
	}

	coach := acct.CoachID()
	if acct.ID == "" || coach == "" {
		e.log.Warn("account event missing id or coach", zap.String("event_id", evt.ID))
		return nil
	}

	if _, err := e.repos.Billing.Put(ctx, entities.Billing{
		AccountID: acct.ID,
		Coach:     coach,
	}); err != nil {
		return fmt.Errorf("persist billing account %s: %w", acct.ID, err)
	}

	if _, err := e.repos.Users.SetBillingAccount(ctx, coach, acct.ID); err != nil {
		e.log.Warn("could not refresh coach billing account",
			zap.String("coach", coach),
			zap.String("account_id", acct.ID),
			zap.Error(err))
	}
	return nil
}

// linkMember upserts the member record a subscription points at. Failures
// are logged only: the next redelivery or reconciliation pass self-heals.
func (e *Engine) linkMember(ctx context.Context, coach, email, status, subscriptionID string) {
	_, err := e.repos.Members.SetStatus(ctx, coach, email, status, subscriptionID)
	if errors.Is(err, store.ErrNotFound) {
		_, err = e.repos.Members.Create(ctx, entities.Member{
			Coach:          coach,
			Email:          email,
			Status:         status,
			SubscriptionID: subscriptionID,
		})
	}
	if err != nil {
		e.log.Warn("could not link member",
			zap.String("coach", coach),
			zap.String("member", email),
			zap.Error(err))
	}
}

// recordPayment writes the audit record for a completed checkout. The
// session id keys it, so redelivery overwrites rather than duplicates.
func (e *Engine) recordPayment(ctx context.Context, coach, email string, session CheckoutSession) {
	if session.ID == "" {
		return
	}
	if _, err := e.repos.Payments.Record(ctx, entities.Payment{
		Coach:          coach,
		ID:             session.ID,
		MemberEmail:    email,
		SubscriptionID: session.Subscription,
		Amount:         session.AmountTotal,
		Currency:       session.Currency,
	}); err != nil {
		e.log.Warn("could not record payment",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
}

// send enqueues a notification, best effort.
func (e *Engine) send(ctx context.Context, n notify.Notification) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, n); err != nil {
		e.log.Warn("could not enqueue notification",
			zap.String("template", n.Template),
			zap.String("recipient", n.Recipient),
			zap.Error(err))
	}
}
