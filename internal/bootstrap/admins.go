package bootstrap

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/features/profile"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
)

// EnsureAdminProfiles grants is_admin to existing profiles whose email is on
// the allow-list. Profiles that do not exist yet are promoted by the guard on
// first sign-in.
func EnsureAdminProfiles(db *gorm.DB, emails []string, logger *slog.Logger) (int64, error) {
	var promoted int64
	for _, email := range emails {
		changed, err := profile.SetAdminByEmail(db, email, true)
		if err != nil {
			if database.Classify(err) == database.KindMissingTable {
				logger.Warn("admin seed skipped - profiles table missing")
				return promoted, nil
			}
			return promoted, fmt.Errorf("promote %s: %w", email, err)
		}
		if changed > 0 {
			logger.Info("admin granted from allow-list", slog.String("email", email))
		}
		promoted += changed
	}
	return promoted, nil
}
