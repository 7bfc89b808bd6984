package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// NewEnforcer builds the role enforcer with the static policy set.
// Admins manage users, teams and holidays; members work with their own
// time-off requests.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	policies := [][]string{
		{RoleAdmin, "user", "create"},
		{RoleAdmin, "user", "read"},
		{RoleAdmin, "user", "update"},
		{RoleAdmin, "user", "delete"},
		{RoleAdmin, "team", "create"},
		{RoleAdmin, "team", "read"},
		{RoleAdmin, "team", "update"},
		{RoleAdmin, "team", "delete"},
		{RoleAdmin, "holiday", "create"},
		{RoleAdmin, "holiday", "read"},
		{RoleAdmin, "timeoff", "create"},
		{RoleAdmin, "timeoff", "read"},
		{RoleAdmin, "timeoff", "update"},
		{RoleAdmin, "timeoff", "delete"},
		{RoleAdmin, "timeoff", "vote"},
		{RoleMember, "team", "read"},
		{RoleMember, "holiday", "read"},
		{RoleMember, "timeoff", "create"},
		{RoleMember, "timeoff", "read"},
		{RoleMember, "timeoff", "update"},
		{RoleMember, "timeoff", "delete"},
		{RoleMember, "timeoff", "vote"},
	}

	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return e, nil
}
