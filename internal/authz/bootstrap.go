package authz

import (
	"fmt"

	"github.com/marketbay/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
// 管理员管平台台面，店铺管自己的经营面，顾客管自己的订单。
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleAdmin,
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
				{Object: "/notifications", Action: "GET"},
				{Object: "/notifications/*", Action: "*"},
			},
		},
		{
			Role: constants.RoleVendor,
			Policies: []Policy{
				{Object: "/vendor/*", Action: "*"},
				{Object: "/orders", Action: "*"},
				{Object: "/orders/:id", Action: "GET"},
				{Object: "/notifications", Action: "GET"},
				{Object: "/notifications/*", Action: "*"},
			},
		},
		{
			Role: constants.RoleCustomer,
			Policies: []Policy{
				{Object: "/orders", Action: "*"},
				{Object: "/orders/:id", Action: "GET"},
				{Object: "/notifications", Action: "GET"},
				{Object: "/notifications/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
