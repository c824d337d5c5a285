package auth

import (
	"github.com/google/uuid"

	"github.com/khattakbelt/community-api/internal/domain/model"
)

// CanMutate reports whether identity may modify a resource owned by ownerID:
// the owner itself, or any admin. Evaluated per operation, never cached.
func CanMutate(identity model.User, ownerID uuid.UUID) bool {
	return identity.Role == model.RoleAdmin || identity.ID == ownerID
}
