// Package policy holds the single authorization table for every resource
// the API exposes. Route middleware and services both consult it.
package policy

import (
	"fmt"

	"code_practice/internal/common"
	"code_practice/internal/domain/model"
)

type Action string

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionReview Action = "review"
)

type Resource string

const (
	ResourcePattern      Resource = "pattern"
	ResourceProblem      Resource = "problem"
	ResourceSubmission   Resource = "submission"
	ResourceStats        Resource = "stats"
	ResourceLeaderboard  Resource = "leaderboard"
	ResourceNotification Resource = "notification"
)

// Caller is the authenticated principal. Role is the stored role, never the token claim.
type Caller struct {
	ID   string
	Role string
}

func CallerFromUser(u *model.User) *Caller {
	if u == nil {
		return nil
	}
	return &Caller{ID: u.ID, Role: u.Role}
}

// UserID is nil-safe so callers can pass it straight to Authorize.
func (c *Caller) UserID() string {
	if c == nil {
		return ""
	}
	return c.ID
}

func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == model.RoleAdmin
}

type rule int

const (
	ruleAuthenticated rule = iota
	ruleAdmin
	ruleOwner
	ruleOwnerOrAdmin
)

func (r rule) needsOwner() bool {
	return r == ruleOwner || r == ruleOwnerOrAdmin
}

var rules = map[Resource]map[Action]rule{
	ResourcePattern: {
		ActionList:   ruleAuthenticated,
		ActionRead:   ruleAuthenticated,
		ActionCreate: ruleAdmin,
		ActionUpdate: ruleAdmin,
		ActionDelete: ruleAdmin,
	},
	ResourceProblem: {
		ActionList:   ruleAuthenticated,
		ActionRead:   ruleAuthenticated,
		ActionCreate: ruleAdmin,
		ActionUpdate: ruleAdmin,
		ActionDelete: ruleAdmin,
	},
	ResourceSubmission: {
		ActionList:   ruleAuthenticated,
		ActionRead:   ruleOwnerOrAdmin,
		ActionCreate: ruleAuthenticated,
		ActionUpdate: ruleOwner,
		ActionDelete: ruleOwnerOrAdmin,
		ActionReview: ruleAdmin,
	},
	ResourceStats: {
		ActionRead: ruleOwnerOrAdmin,
	},
	ResourceLeaderboard: {
		ActionRead: ruleAuthenticated,
	},
	ResourceNotification: {
		ActionList:   ruleOwner,
		ActionRead:   ruleOwner,
		ActionUpdate: ruleOwner,
		ActionDelete: ruleOwner,
	},
}

func lookup(action Action, resource Resource) (rule, error) {
	actions, ok := rules[resource]
	if !ok {
		return 0, fmt.Errorf("no policy for resource %q: %w", resource, common.ErrForbidden)
	}
	r, ok := actions[action]
	if !ok {
		return 0, fmt.Errorf("action %q not allowed on %s: %w", action, resource, common.ErrForbidden)
	}
	return r, nil
}

// Authorize decides whether caller may perform action on resource owned by ownerID.
// ownerID is ignored for rules that do not depend on ownership.
func Authorize(caller *Caller, action Action, resource Resource, ownerID string) error {
	if caller == nil || caller.ID == "" {
		return common.ErrUnauthorized
	}
	r, err := lookup(action, resource)
	if err != nil {
		return err
	}
	switch r {
	case ruleAuthenticated:
		return nil
	case ruleAdmin:
		if caller.IsAdmin() {
			return nil
		}
		return fmt.Errorf("admin access required: %w", common.ErrForbidden)
	case ruleOwner:
		if caller.ID == ownerID {
			return nil
		}
	case ruleOwnerOrAdmin:
		if caller.IsAdmin() || caller.ID == ownerID {
			return nil
		}
	}
	return fmt.Errorf("not allowed to %s this %s: %w", action, resource, common.ErrForbidden)
}

// AuthorizeRoute applies the parts of a rule that can be decided before the
// resource is loaded. Ownership checks pass here and are finished by the service.
func AuthorizeRoute(caller *Caller, action Action, resource Resource) error {
	if caller == nil || caller.ID == "" {
		return common.ErrUnauthorized
	}
	r, err := lookup(action, resource)
	if err != nil {
		return err
	}
	if r.needsOwner() {
		return nil
	}
	return Authorize(caller, action, resource, "")
}
