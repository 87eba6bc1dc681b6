package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HeemPlayz/arabs-giveaways/internal/draw"
	"github.com/HeemPlayz/arabs-giveaways/internal/models"
	"github.com/HeemPlayz/arabs-giveaways/internal/repositories"
	"github.com/HeemPlayz/arabs-giveaways/internal/utils"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure GiveawayServiceImpl implements GiveawayService
var _ GiveawayService = (*GiveawayServiceImpl)(nil)

const (
	// DefaultOptInEmoji is the reaction users add to enter a giveaway
	DefaultOptInEmoji = "🎉"

	// completionRetryDelay is how long the engine waits before re-attempting
	// a completion that failed partway through.
	completionRetryDelay = time.Minute

	// completionTimeout bounds a single scheduled completion attempt
	completionTimeout = 2 * time.Minute
)

// GiveawayServiceImpl orchestrates the giveaway lifecycle: creation,
// rehydration after restart, completion, reroll and listing.
type GiveawayServiceImpl struct {
	giveawayRepo repositories.GiveawayRepository
	sched        CompletionScheduler
	platform     ChatPlatform
	optInEmoji   string
	now          func() time.Time
}

// NewGiveawayService creates a new GiveawayServiceImpl
func NewGiveawayService(
	giveawayRepo repositories.GiveawayRepository,
	sched CompletionScheduler,
	platform ChatPlatform,
) *GiveawayServiceImpl {
	return &GiveawayServiceImpl{
		giveawayRepo: giveawayRepo,
		sched:        sched,
		platform:     platform,
		optInEmoji:   DefaultOptInEmoji,
		now:          time.Now,
	}
}

// Create validates the options, announces the giveaway and persists its record
func (s *GiveawayServiceImpl) Create(ctx context.Context, opts *models.CreateGiveawayOptions) (*models.Giveaway, error) {
	if err := validateCreateOptions(opts); err != nil {
		return nil, err
	}

	startsOn := s.now()
	endsOn := startsOn.Add(opts.Duration)

	messageID, err := s.platform.PostAnnouncement(ctx, opts.ChannelID, Announcement{
		Prize:       opts.Prize,
		WinnerCount: opts.Winners,
		HostedBy:    opts.HostedBy,
		EndsOn:      endsOn,
	})
	if err != nil {
		slog.Error("Failed to post giveaway announcement", "error", err, "channelId", opts.ChannelID)
		return nil, fmt.Errorf("failed to post announcement: %w", err)
	}

	// The announcement stays usable without the seeded reaction, so a failure
	// here is not fatal.
	if err := s.platform.AttachOptIn(ctx, opts.ChannelID, messageID, s.optInEmoji); err != nil {
		slog.Warn("Failed to attach opt-in reaction", "error", err, "messageId", messageID)
	}

	giveaway := &models.Giveaway{
		MessageID: messageID,
		GuildID:   opts.GuildID,
		ChannelID: opts.ChannelID,
		Prize:     opts.Prize,
		HostedBy:  opts.HostedBy,
		Winners:   opts.Winners,
		StartsOn:  startsOn,
		EndsOn:    endsOn,
		Duration:  opts.Duration,
		Status:    models.GiveawayStatusActive,
	}
	if err := s.giveawayRepo.Create(ctx, giveaway); err != nil {
		slog.Error("Failed to persist giveaway", "error", err, "messageId", messageID)
		return nil, fmt.Errorf("failed to save giveaway: %w", err)
	}

	s.sched.Register(giveaway.MessageID, giveaway.EndsOn, s.onTimerFired)

	slog.Info("Giveaway created", "messageId", messageID, "guildId", opts.GuildID, "prize", opts.Prize, "endsOn", endsOn)
	return giveaway, nil
}

// Rehydrate re-registers every non-ended giveaway with the scheduler. Called
// once at process start; giveaways whose endsOn already passed fire
// immediately.
func (s *GiveawayServiceImpl) Rehydrate(ctx context.Context) (int, error) {
	giveaways, err := s.giveawayRepo.FindActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load active giveaways: %w", err)
	}

	for _, g := range giveaways {
		s.sched.Register(g.MessageID, g.EndsOn, s.onTimerFired)
	}

	slog.Info("Rehydrated giveaway timers", "count", len(giveaways))
	return len(giveaways), nil
}

// Complete ends an active giveaway: it cancels the timer, draws winners from
// the live entrant pool and flips the record to ENDED. Announcement update
// and notification are best-effort; the state flip is authoritative.
func (s *GiveawayServiceImpl) Complete(ctx context.Context, messageID string) (*models.DrawResult, error) {
	giveaway, err := s.findByMessageID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if giveaway.Status == models.GiveawayStatusEnded {
		return nil, ErrNotFound
	}

	// A missing timer means a duplicate fire or a stale external call
	if !s.sched.Cancel(messageID) {
		return nil, ErrNotFound
	}

	entrants, err := s.platform.FetchOptInUsers(ctx, giveaway.ChannelID, messageID, s.optInEmoji)
	if err != nil {
		// No valid draw without entrant data. Re-arm a short retry so the
		// giveaway cannot strand with a cancelled timer and ACTIVE state.
		s.rescheduleCompletion(messageID, "fetch entrants", err)
		return nil, fmt.Errorf("failed to fetch entrants: %w", err)
	}

	ended, err := s.giveawayRepo.MarkEnded(ctx, messageID)
	if err != nil {
		// Same stranding hazard as a failed entrant fetch: the timer is gone
		// but the record is still ACTIVE, so re-arm a retry here too.
		s.rescheduleCompletion(messageID, "mark giveaway ended", err)
		return nil, fmt.Errorf("failed to mark giveaway ended: %w", err)
	}
	if !ended {
		// Lost the claim to a racing completion
		return nil, ErrNotFound
	}
	giveaway.Status = models.GiveawayStatusEnded

	winners := draw.SelectWinners(entrants, giveaway.Winners)
	warnings := s.publishOutcome(ctx, giveaway, winners)

	slog.Info("Giveaway completed", "messageId", messageID, "entrants", len(entrants), "winners", len(winners))
	return &models.DrawResult{Giveaway: giveaway, Winners: winners, Warnings: warnings}, nil
}

// Reroll re-draws winners for an ended giveaway against the live entrant
// pool. The persisted state and scheduler are left untouched.
func (s *GiveawayServiceImpl) Reroll(ctx context.Context, messageID string) (*models.DrawResult, error) {
	giveaway, err := s.findByMessageID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if giveaway.Status != models.GiveawayStatusEnded {
		return nil, ErrNotFound
	}

	entrants, err := s.platform.FetchOptInUsers(ctx, giveaway.ChannelID, messageID, s.optInEmoji)
	if err != nil {
		slog.Error("Failed to fetch entrants for reroll", "error", err, "messageId", messageID)
		return nil, fmt.Errorf("failed to fetch entrants: %w", err)
	}

	winners := draw.SelectWinners(entrants, giveaway.Winners)
	warnings := s.publishOutcome(ctx, giveaway, winners)

	slog.Info("Giveaway rerolled", "messageId", messageID, "entrants", len(entrants), "winners", len(winners))
	return &models.DrawResult{Giveaway: giveaway, Winners: winners, Warnings: warnings}, nil
}

// Fetch returns a giveaway by message ID
func (s *GiveawayServiceImpl) Fetch(ctx context.Context, messageID string) (*models.Giveaway, error) {
	return s.findByMessageID(ctx, messageID)
}

// List returns the active giveaways of a guild, projected for display
func (s *GiveawayServiceImpl) List(ctx context.Context, guildID string) ([]*models.GiveawaySummary, error) {
	giveaways, err := s.giveawayRepo.FindActiveByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list giveaways: %w", err)
	}

	summaries := make([]*models.GiveawaySummary, 0, len(giveaways))
	for _, g := range giveaways {
		summaries = append(summaries, &models.GiveawaySummary{
			MessageID:     g.MessageID,
			Prize:         g.Prize,
			HostedBy:      s.platform.ResolveUserDisplay(ctx, g.HostedBy),
			TimeRemaining: g.EndsOn.Sub(s.now()),
		})
	}
	return summaries, nil
}

// onTimerFired is the scheduler callback for a giveaway reaching its end time
func (s *GiveawayServiceImpl) onTimerFired(messageID string) {
	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()

	if _, err := s.Complete(ctx, messageID); err != nil && !errors.Is(err, ErrNotFound) {
		slog.Error("Scheduled completion failed", "error", err, "messageId", messageID)
	}
}

// rescheduleCompletion re-arms the completion timer after a partial failure,
// so the giveaway cannot strand with a cancelled timer and ACTIVE state.
func (s *GiveawayServiceImpl) rescheduleCompletion(messageID, step string, cause error) {
	retryAt := s.now().Add(completionRetryDelay)
	s.sched.Register(messageID, retryAt, s.onTimerFired)
	slog.Error("Failed to "+step+", completion re-scheduled", "error", cause, "messageId", messageID, "retryAt", retryAt)
}

// publishOutcome updates the announcement and congratulates the winners.
// Both sends are best-effort: the draw already happened and the record is the
// source of truth. Failures come back as warnings so the caller sees that the
// displayed state lags the record.
func (s *GiveawayServiceImpl) publishOutcome(ctx context.Context, giveaway *models.Giveaway, winners []string) []string {
	var warnings []string
	if err := s.platform.UpdateAnnouncement(ctx, giveaway.ChannelID, giveaway.MessageID, winners); err != nil {
		slog.Error("Failed to update announcement", "error", err, "messageId", giveaway.MessageID)
		warnings = append(warnings, fmt.Sprintf("announcement update failed: %v", err))
	}

	var text string
	if len(winners) == 0 {
		text = fmt.Sprintf("Nobody entered the giveaway for **%s** — no winners this time.\n**ID**: `%s`",
			giveaway.Prize, giveaway.MessageID)
	} else {
		text = fmt.Sprintf("Congratulations %s, you won the **%s**!\n**ID**: `%s`",
			utils.MentionList(winners), giveaway.Prize, giveaway.MessageID)
	}
	if err := s.platform.SendNotification(ctx, giveaway.ChannelID, text); err != nil {
		slog.Error("Failed to send winner notification", "error", err, "messageId", giveaway.MessageID)
		warnings = append(warnings, fmt.Sprintf("winner notification failed: %v", err))
	}
	return warnings
}

func (s *GiveawayServiceImpl) findByMessageID(ctx context.Context, messageID string) (*models.Giveaway, error) {
	giveaway, err := s.giveawayRepo.FindByMessageID(ctx, messageID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch giveaway: %w", err)
	}
	return giveaway, nil
}

func validateCreateOptions(opts *models.CreateGiveawayOptions) error {
	switch {
	case opts.Duration <= 0:
		return &ValidationError{Field: "duration", Reason: "must be greater than zero"}
	case opts.GuildID == "":
		return &ValidationError{Field: "guildId", Reason: "is required"}
	case opts.ChannelID == "":
		return &ValidationError{Field: "channelId", Reason: "is required"}
	case opts.HostedBy == "":
		return &ValidationError{Field: "hostedBy", Reason: "is required"}
	case opts.Prize == "":
		return &ValidationError{Field: "prize", Reason: "is required"}
	case opts.Winners < 1:
		return &ValidationError{Field: "winners", Reason: "must be a positive integer"}
	}
	return nil
}
