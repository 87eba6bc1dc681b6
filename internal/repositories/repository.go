package repositories

import (
	"context"

	"github.com/HeemPlayz/arabs-giveaways/internal/models"
)

// GiveawayRepository defines the interface for giveaway data operations
type GiveawayRepository interface {
	Create(ctx context.Context, giveaway *models.Giveaway) error
	FindByMessageID(ctx context.Context, messageID string) (*models.Giveaway, error)
	// FindActive returns every non-ended giveaway, regardless of endsOn.
	// Past-due records are included so rehydration can fire them immediately.
	FindActive(ctx context.Context) ([]*models.Giveaway, error)
	FindActiveByGuild(ctx context.Context, guildID string) ([]*models.Giveaway, error)
	// MarkEnded flips the record from ACTIVE to ENDED. It reports whether this
	// call performed the transition; a false result means the record was
	// missing or another caller already ended it.
	MarkEnded(ctx context.Context, messageID string) (bool, error)
}

// AdminUserRepository defines the interface for admin user data operations
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}
