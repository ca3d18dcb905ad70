package domain

// DenyReason explains why an authorization decision was negative.
type DenyReason string

const (
	ReasonNone               DenyReason = ""
	ReasonIdentityUnresolved DenyReason = "identity_unresolved"
	ReasonInsufficientRole   DenyReason = "insufficient_role"
	ReasonNotOwner           DenyReason = "not_owner"
)

// Decision is the per-request outcome of Authorize. It is never persisted.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow and Deny build decisions.
func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason DenyReason) Decision { return Decision{Reason: reason} }

// Err converts a negative decision into the matching domain error.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonIdentityUnresolved:
		return ErrIdentityUnresolved
	default:
		return ErrForbidden
	}
}

// OwnedResourcePolicy is the role set required to act on an owned resource.
// Read, update and delete share it so the two gates behave identically.
var OwnedResourcePolicy = []Role{RoleAdmin, RoleEditor, RoleViewer, RoleUser}

// Authorize applies the role gate and then the ownership gate:
//  1. an empty caller identity is denied outright;
//  2. the effective roles must intersect required (when required is non-empty);
//  3. an intersecting ownership-exempt role (admin) is allowed regardless of owner;
//  4. otherwise the caller must own the resource.
func Authorize(effective RoleSet, required []Role, ownerID, callerID string) Decision {
	if callerID == "" {
		return Deny(ReasonIdentityUnresolved)
	}

	matched := false
	for _, r := range required {
		if !effective.Has(r) {
			continue
		}
		matched = true
		if _, exempt := ownershipExempt[r]; exempt {
			return Allow()
		}
	}
	if len(required) > 0 && !matched {
		return Deny(ReasonInsufficientRole)
	}

	if ownerID != "" && ownerID == callerID {
		return Allow()
	}
	return Deny(ReasonNotOwner)
}
