// Package address exposes delivery addresses as read by the ordering core.
package address

import (
	"context"
	"strconv"

	"fooddelivery/domain/shared"
)

// Address is a delivery address owned by one user.
type Address struct {
	ID         int64
	OwnerID    int64
	Line       string
	City       string
	PostalCode string
}

// IsOwnedBy reports whether the address belongs to userID.
func (a *Address) IsOwnedBy(userID int64) bool { return a.OwnerID == userID }

// Repository is the address lookup contract.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Address, error)
}

func NewAddressNotFoundError(id int64) error {
	return shared.NewNotFoundError("address", "id", strconv.FormatInt(id, 10))
}

// NewAddressNotOwnedError reports an address used by someone other than its owner.
func NewAddressNotOwnedError(id int64) error {
	return shared.NewForbiddenError("address", "address "+strconv.FormatInt(id, 10)+" does not belong to the current user")
}
