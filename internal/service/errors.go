package service

import (
	"context"
	"errors"

	"github.com/rcliao/taskmarket/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// requireRole checks the user's profile role. A user without a profile has
// no role and fails the check.
func requireRole(ctx context.Context, profiles ProfileLookup, userID string, employer bool, field, message string) error {
	profile, err := profiles.GetProfile(ctx, userID)
	if isNotFound(err) {
		return domain.NewValidationError(field, message)
	}
	if err != nil {
		return err
	}
	if profile.IsEmployer != employer {
		return domain.NewValidationError(field, message)
	}
	return nil
}
