package auth

import (
	"slices"

	"github.com/khanghh/clubhub/model"
)

// Authorize reports whether role is one of allowed.
func Authorize(role model.Role, allowed ...model.Role) error {
	if !role.Valid() || !slices.Contains(allowed, role) {
		return ErrForbidden
	}
	return nil
}
