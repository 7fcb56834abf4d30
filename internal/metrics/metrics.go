package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents counts processed webhook deliveries by provider and result
	// (ok, no_op, bad_signature, bad_payload, error).
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "membergate_webhook_events_total",
		Help: "Webhook deliveries by provider and processing result.",
	}, []string{"provider", "result"})

	// EntitlementDecisions counts access decisions by resource kind and the rule
	// that decided them (admin, free, member_premium, membership_included,
	// purchase, license, deny).
	EntitlementDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "membergate_entitlement_decisions_total",
		Help: "Entitlement decisions by resource kind and deciding rule.",
	}, []string{"kind", "rule"})

	// MembershipChecks counts live Telegram group-membership checks by result
	// (member, non_member, error).
	MembershipChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "membergate_membership_checks_total",
		Help: "Live group membership checks by result.",
	}, []string{"result"})
)
