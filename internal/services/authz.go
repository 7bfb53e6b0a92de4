package services

import "github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"

// RequireRole is the role gate: caller's role must be one of allowed.
func RequireRole(caller *models.Account, allowed ...models.Role) error {
	if caller == nil {
		return ErrSessionInvalid
	}
	for _, r := range allowed {
		if caller.Role == r {
			return nil
		}
	}
	return roleDenied(allowed)
}

func roleDenied(allowed []models.Role) error {
	if len(allowed) == 1 {
		switch allowed[0] {
		case models.RoleDeveloper:
			return ErrDeveloperOnly
		case models.RoleAdmin:
			return ErrAdminOnly
		case models.RolePlayer:
			return newError(KindAuthorization, "Player access required")
		}
	}
	return newError(KindAuthorization, "Insufficient role")
}

// requireListingOwner is the ownership gate for listings and their metadata.
func requireListingOwner(caller *models.Account, listing *models.Listing) error {
	if caller == nil {
		return ErrSessionInvalid
	}
	if listing.DeveloperID != caller.ID {
		return ErrNotGameOwner
	}
	return nil
}

func requireReviewAuthor(caller *models.Account, review *models.Review) error {
	if caller == nil {
		return ErrSessionInvalid
	}
	if review.AuthorID != caller.ID {
		return ErrNotReviewAuthor
	}
	return nil
}
