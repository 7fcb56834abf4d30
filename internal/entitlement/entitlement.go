// Package entitlement decides per-resource access from a unified user, the
// resource's own flags, and proof of purchase. It is pure: callers gather the
// inputs, this package only ranks them.
package entitlement

import (
	"net/url"

	"github.com/communityhq/membergate/internal/metrics"
	"github.com/communityhq/membergate/internal/modules/identity"
)

// Resource kinds used in access decisions and metrics.
const (
	KindCourse  = "course"
	KindLesson  = "lesson"
	KindContent = "content"
	KindStream  = "stream"
	KindProduct = "product"
)

// Rules that can decide an access check, in precedence order.
const (
	RuleAdmin              = "admin"
	RuleFree               = "free"
	RuleMemberPremium      = "member_premium"
	RuleMembershipIncluded = "membership_included"
	RulePurchase           = "purchase"
	RuleLicense            = "license"
	RuleDeny               = "deny"
)

// Resource describes the thing being accessed, reduced to the flags the
// decision needs.
type Resource struct {
	Kind string
	ID   string
	Slug string

	// IsFree marks the resource accessible to everyone. For a lesson this is
	// the lesson's own flag, independent of its course.
	IsFree bool

	// IsPremium marks membership-gated content.
	IsPremium bool

	// MembershipIncluded marks a standalone product that members get without
	// a separate purchase.
	MembershipIncluded bool
}

// Proof carries the per-request evidence of purchase for a standalone
// product. Both fields are false for membership content.
type Proof struct {
	HasPurchase      bool
	HasLicenseCookie bool
}

// Decision is the outcome of an access check.
type Decision struct {
	Allowed bool
	// Rule names the precedence rule that decided the check.
	Rule string
}

// CanAccess evaluates the precedence ladder, short-circuiting at the first
// rule that grants access. A nil user is an anonymous caller.
func CanAccess(user *identity.UnifiedUser, res Resource, proof Proof) Decision {
	d := decide(user, res, proof)
	metrics.EntitlementDecisions.WithLabelValues(res.Kind, d.Rule).Inc()
	return d
}

func decide(user *identity.UnifiedUser, res Resource, proof Proof) Decision {
	if user.IsAdmin() {
		return Decision{Allowed: true, Rule: RuleAdmin}
	}
	if res.IsFree {
		return Decision{Allowed: true, Rule: RuleFree}
	}
	if user.IsMember() && res.IsPremium {
		return Decision{Allowed: true, Rule: RuleMemberPremium}
	}
	if user.IsMember() && res.MembershipIncluded {
		return Decision{Allowed: true, Rule: RuleMembershipIncluded}
	}
	if proof.HasPurchase {
		return Decision{Allowed: true, Rule: RulePurchase}
	}
	if proof.HasLicenseCookie {
		return Decision{Allowed: true, Rule: RuleLicense}
	}
	return Decision{Allowed: false, Rule: RuleDeny}
}

// DenyRedirect returns where a denied caller should be sent: anonymous users
// to login with the requested path preserved, identified users to the join
// flow for membership content or the product page for standalone goods.
func DenyRedirect(user *identity.UnifiedUser, res Resource, requestedPath string) string {
	if user == nil {
		return "/login?redirect=" + url.QueryEscape(requestedPath)
	}
	if res.Kind == KindProduct && res.Slug != "" {
		return "/p/" + res.Slug
	}
	return "/join"
}
