package policy

import (
	"testing"

	"code_practice/internal/common"
	"code_practice/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	student := &Caller{ID: "s1", Role: model.RoleStudent}
	other := &Caller{ID: "s2", Role: model.RoleStudent}
	admin := &Caller{ID: "a1", Role: model.RoleAdmin}

	tests := []struct {
		name     string
		caller   *Caller
		action   Action
		resource Resource
		owner    string
		want     error
	}{
		{"anonymous", nil, ActionList, ResourcePattern, "", common.ErrUnauthorized},
		{"student lists patterns", student, ActionList, ResourcePattern, "", nil},
		{"student creates pattern", student, ActionCreate, ResourcePattern, "", common.ErrForbidden},
		{"admin deletes problem", admin, ActionDelete, ResourceProblem, "", nil},
		{"owner reads submission", student, ActionRead, ResourceSubmission, "s1", nil},
		{"other reads submission", other, ActionRead, ResourceSubmission, "s1", common.ErrForbidden},
		{"admin reads submission", admin, ActionRead, ResourceSubmission, "s1", nil},
		{"admin cannot edit others submission", admin, ActionUpdate, ResourceSubmission, "s1", common.ErrForbidden},
		{"owner deletes submission", student, ActionDelete, ResourceSubmission, "s1", nil},
		{"student reviews", student, ActionReview, ResourceSubmission, "s1", common.ErrForbidden},
		{"admin reviews", admin, ActionReview, ResourceSubmission, "s1", nil},
		{"student reads own stats", student, ActionRead, ResourceStats, "s1", nil},
		{"student reads foreign stats", other, ActionRead, ResourceStats, "s1", common.ErrForbidden},
		{"admin reads foreign stats", admin, ActionRead, ResourceStats, "s1", nil},
		{"unknown action", admin, ActionReview, ResourcePattern, "", common.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.action, tt.resource, tt.owner)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthorizeRoute_DefersOwnership(t *testing.T) {
	student := &Caller{ID: "s1", Role: model.RoleStudent}

	assert.NoError(t, AuthorizeRoute(student, ActionRead, ResourceSubmission))
	assert.NoError(t, AuthorizeRoute(student, ActionUpdate, ResourceSubmission))
	assert.ErrorIs(t, AuthorizeRoute(student, ActionReview, ResourceSubmission), common.ErrForbidden)
	assert.ErrorIs(t, AuthorizeRoute(student, ActionCreate, ResourceProblem), common.ErrForbidden)
	assert.ErrorIs(t, AuthorizeRoute(nil, ActionList, ResourceProblem), common.ErrUnauthorized)
}
