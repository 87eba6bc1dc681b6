package services

import (
	"context"
	"time"

	"github.com/HeemPlayz/arabs-giveaways/internal/models"
	"github.com/HeemPlayz/arabs-giveaways/internal/scheduler"
)

// GiveawayService defines the interface for giveaway lifecycle operations
type GiveawayService interface {
	// Create validates the options, posts the announcement, persists the
	// record and arms its completion timer.
	Create(ctx context.Context, opts *models.CreateGiveawayOptions) (*models.Giveaway, error)

	// Rehydrate re-arms timers for every non-ended giveaway after a process
	// restart and returns how many were registered.
	Rehydrate(ctx context.Context) (int, error)

	// Complete draws winners for an active giveaway and marks it ended.
	// Returns ErrNotFound for unknown, already-ended or unscheduled giveaways.
	Complete(ctx context.Context, messageID string) (*models.DrawResult, error)

	// Reroll re-draws winners for an already-ended giveaway without touching
	// its persisted state.
	Reroll(ctx context.Context, messageID string) (*models.DrawResult, error)

	// Fetch returns a giveaway by message ID, or ErrNotFound
	Fetch(ctx context.Context, messageID string) (*models.Giveaway, error)

	// List returns the active giveaways of a guild with host display info and
	// remaining time. An empty guild yields an empty slice, not an error.
	List(ctx context.Context, guildID string) ([]*models.GiveawaySummary, error)
}

// AuthService defines the interface for admin authentication operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AdminUser, error)
	Login(ctx context.Context, req *models.LoginRequest) (string, error) // Returns JWT token
}

// CompletionScheduler is the timer contract the engine depends on,
// satisfied by *scheduler.Scheduler.
type CompletionScheduler interface {
	Register(key string, fireAt time.Time, callback scheduler.Callback)
	Cancel(key string) bool
}

// Announcement carries the fields the chat platform renders into the
// giveaway announcement.
type Announcement struct {
	Prize       string
	WinnerCount int
	HostedBy    string
	EndsOn      time.Time
}

// ChatPlatform is the boundary to the chat service hosting the giveaways.
// Implementations live under internal/platform.
type ChatPlatform interface {
	// PostAnnouncement posts the announcement and returns its message ID
	PostAnnouncement(ctx context.Context, channelID string, a Announcement) (string, error)

	// AttachOptIn adds the opt-in reaction to the announcement
	AttachOptIn(ctx context.Context, channelID, messageID, emoji string) error

	// FetchOptInUsers returns the IDs of all non-bot users who reacted with
	// the opt-in emoji.
	FetchOptInUsers(ctx context.Context, channelID, messageID, emoji string) ([]string, error)

	// UpdateAnnouncement rewrites the announcement with the winner list.
	// Returns ErrMalformedAnnouncement when the message does not hold exactly
	// one embed.
	UpdateAnnouncement(ctx context.Context, channelID, messageID string, winnerIDs []string) error

	// SendNotification posts a plain message to the channel
	SendNotification(ctx context.Context, channelID, text string) error

	// ResolveUserDisplay returns a display name for the user, or a placeholder
	// when the user cannot be resolved. Never fails.
	ResolveUserDisplay(ctx context.Context, userID string) string
}
