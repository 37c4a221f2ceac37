package tasks

import (
	"fmt"

	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
)

// RequireLevel returns [shared.ErrNotAuthenticated] for a nil profile and
// [shared.ErrForbidden] when the profile's level is below required.
func RequireLevel(p *models.Profile, required models.UserLevel) error {
	if p == nil {
		return shared.ErrNotAuthenticated
	}
	if !p.Level().Allows(required) {
		return fmt.Errorf("%w: %s requires %s", shared.ErrForbidden, p.Email(), required)
	}
	return nil
}

// CanManage reports whether p may modify a row owned by ownerID. Rows without an owner
// are never manageable.
func CanManage(p *models.Profile, ownerID string) bool {
	if p == nil || ownerID == "" {
		return false
	}
	return p.IsAdmin() || p.ID() == ownerID
}
