package billing

import "github.com/coachden/coachden/internal/entities"

// mapProviderStatus folds the provider's subscription status vocabulary into
// the local three-state lifecycle.
func mapProviderStatus(provider string) string {
	switch provider {
	case "active", "trialing":
		return entities.SubscriptionActive
	case "past_due", "unpaid":
		return entities.SubscriptionPastDue
	default:
		return entities.SubscriptionCanceled
	}
}

// memberStatusFor maps a subscription status onto the linked member.
func memberStatusFor(subscriptionStatus string) string {
	if subscriptionStatus == entities.SubscriptionActive {
		return entities.MemberActive
	}
	return entities.MemberInactive
}
