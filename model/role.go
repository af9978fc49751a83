package model

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}
