package auth

import (
	"fmt"
	"strings"
)

// Permission is a bit set of the actions a caller may perform.
type Permission uint32

const (
	PermView Permission = 1 << iota
	PermCreate
	PermEdit
	PermDelete
	PermApprove
	PermAdmin
)

const PermAll = PermView | PermCreate | PermEdit | PermDelete | PermApprove | PermAdmin

var permissionNames = []struct {
	perm Permission
	name string
}{
	{PermView, "view"},
	{PermCreate, "create"},
	{PermEdit, "edit"},
	{PermDelete, "delete"},
	{PermApprove, "approve"},
	{PermAdmin, "admin"},
}

// Has reports whether p grants want. Admin grants everything.
func (p Permission) Has(want Permission) bool {
	if p&PermAdmin != 0 {
		return true
	}
	return p&want == want
}

func (p Permission) String() string {
	var names []string
	for _, pn := range permissionNames {
		if p&pn.perm != 0 {
			names = append(names, pn.name)
		}
	}
	return strings.Join(names, ",")
}

// ParsePermissions reads a comma-separated list such as "view,create".
func ParsePermissions(s string) (Permission, error) {
	var p Permission
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if part == "all" {
			p |= PermAll
			continue
		}
		found := false
		for _, pn := range permissionNames {
			if pn.name == part {
				p |= pn.perm
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("ParsePermissions: unknown permission %q", part)
		}
	}
	return p, nil
}
