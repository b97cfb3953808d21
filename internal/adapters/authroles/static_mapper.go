// Package authroles maps directory groups onto application roles.
package authroles

import (
	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
)

// StaticMapper assigns roles by exact group membership. Admin wins over
// user; anything else is a guest.
type StaticMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleGuest
}
