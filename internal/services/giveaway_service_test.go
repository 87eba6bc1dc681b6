package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HeemPlayz/arabs-giveaways/internal/models"
	"github.com/HeemPlayz/arabs-giveaways/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// fakeGiveawayRepo is an in-memory stand-in for the mongo repository. It
// mirrors the real implementation's contract, including mongo.ErrNoDocuments
// for missing records and the conditional ACTIVE -> ENDED claim.
type fakeGiveawayRepo struct {
	mu           sync.Mutex
	giveaways    map[string]*models.Giveaway
	markEndedErr error
}

func newFakeGiveawayRepo() *fakeGiveawayRepo {
	return &fakeGiveawayRepo{giveaways: make(map[string]*models.Giveaway)}
}

func (r *fakeGiveawayRepo) Create(_ context.Context, g *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *g
	r.giveaways[g.MessageID] = &clone
	return nil
}

func (r *fakeGiveawayRepo) FindByMessageID(_ context.Context, messageID string) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[messageID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *g
	return &clone, nil
}

func (r *fakeGiveawayRepo) FindActive(_ context.Context) ([]*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Giveaway
	for _, g := range r.giveaways {
		if g.Status == models.GiveawayStatusActive {
			clone := *g
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeGiveawayRepo) FindActiveByGuild(_ context.Context, guildID string) ([]*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Giveaway
	for _, g := range r.giveaways {
		if g.GuildID == guildID && g.Status == models.GiveawayStatusActive {
			clone := *g
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeGiveawayRepo) MarkEnded(_ context.Context, messageID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markEndedErr != nil {
		return false, r.markEndedErr
	}
	g, ok := r.giveaways[messageID]
	if !ok || g.Status != models.GiveawayStatusActive {
		return false, nil
	}
	g.Status = models.GiveawayStatusEnded
	return true, nil
}

func (r *fakeGiveawayRepo) status(messageID string) models.GiveawayStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.giveaways[messageID].Status
}

type fakePlatform struct {
	mu            sync.Mutex
	entrants      []string
	fetchErr      error
	updateErr     error
	nextMessageID int
	updates       [][]string
	notifications []string
}

func (p *fakePlatform) PostAnnouncement(context.Context, string, Announcement) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextMessageID++
	return fmt.Sprintf("msg-%d", p.nextMessageID), nil
}

func (p *fakePlatform) AttachOptIn(context.Context, string, string, string) error {
	return nil
}

func (p *fakePlatform) FetchOptInUsers(context.Context, string, string, string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return append([]string(nil), p.entrants...), nil
}

func (p *fakePlatform) UpdateAnnouncement(_ context.Context, _, _ string, winnerIDs []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.updateErr != nil {
		return p.updateErr
	}
	p.updates = append(p.updates, append([]string(nil), winnerIDs...))
	return nil
}

func (p *fakePlatform) SendNotification(_ context.Context, _, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, text)
	return nil
}

func (p *fakePlatform) ResolveUserDisplay(_ context.Context, userID string) string {
	return "user-" + userID
}

func (p *fakePlatform) sentNotifications() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.notifications...)
}

func newTestEngine(t *testing.T) (*GiveawayServiceImpl, *fakeGiveawayRepo, *fakePlatform, *scheduler.Scheduler) {
	t.Helper()
	repo := newFakeGiveawayRepo()
	platform := &fakePlatform{entrants: []string{"u1", "u2", "u3"}}
	sched := scheduler.New(slog.Default())
	t.Cleanup(sched.Stop)
	svc := NewGiveawayService(repo, sched, platform)
	return svc, repo, platform, sched
}

func validOptions() *models.CreateGiveawayOptions {
	return &models.CreateGiveawayOptions{
		GuildID:   "guild-1",
		ChannelID: "channel-1",
		HostedBy:  "host-1",
		Prize:     "Nitro",
		Winners:   2,
		Duration:  time.Hour,
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _, sched := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.CreateGiveawayOptions)
		field  string
	}{
		{"zero duration", func(o *models.CreateGiveawayOptions) { o.Duration = 0 }, "duration"},
		{"negative duration", func(o *models.CreateGiveawayOptions) { o.Duration = -time.Minute }, "duration"},
		{"missing guild", func(o *models.CreateGiveawayOptions) { o.GuildID = "" }, "guildId"},
		{"missing channel", func(o *models.CreateGiveawayOptions) { o.ChannelID = "" }, "channelId"},
		{"missing host", func(o *models.CreateGiveawayOptions) { o.HostedBy = "" }, "hostedBy"},
		{"empty prize", func(o *models.CreateGiveawayOptions) { o.Prize = "" }, "prize"},
		{"zero winners", func(o *models.CreateGiveawayOptions) { o.Winners = 0 }, "winners"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.mutate(opts)

			_, err := svc.Create(ctx, opts)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
	assert.Equal(t, 0, sched.Pending(), "failed creations must not arm timers")
}

func TestCreateComputesEndsOn(t *testing.T) {
	svc, repo, _, sched := newTestEngine(t)
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	opts := validOptions()
	giveaway, err := svc.Create(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, start, giveaway.StartsOn)
	assert.Equal(t, start.Add(opts.Duration), giveaway.EndsOn)
	assert.Equal(t, opts.Duration, giveaway.Duration)
	assert.Equal(t, models.GiveawayStatusActive, giveaway.Status)
	assert.NotEmpty(t, giveaway.MessageID)

	persisted, err := repo.FindByMessageID(context.Background(), giveaway.MessageID)
	require.NoError(t, err)
	assert.Equal(t, giveaway.EndsOn, persisted.EndsOn)
	assert.Equal(t, 1, sched.Pending())
}

func TestCompleteIdempotent(t *testing.T) {
	svc, repo, platform, _ := newTestEngine(t)
	ctx := context.Background()

	giveaway, err := svc.Create(ctx, validOptions())
	require.NoError(t, err)

	result, err := svc.Complete(ctx, giveaway.MessageID)
	require.NoError(t, err)
	assert.Len(t, result.Winners, 2)
	assert.Subset(t, platform.entrants, result.Winners)
	assert.Equal(t, models.GiveawayStatusEnded, repo.status(giveaway.MessageID))
	require.Len(t, platform.sentNotifications(), 1)
	assert.Contains(t, platform.sentNotifications()[0], "Congratulations")

	// Second completion is a no-op: no second state transition, no second
	// notification.
	_, err = svc.Complete(ctx, giveaway.MessageID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, platform.sentNotifications(), 1)
}

func TestCompleteUnknownGiveaway(t *testing.T) {
	svc, _, _, _ := newTestEngine(t)

	_, err := svc.Complete(context.Background(), "no-such-message")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteWithoutRegisteredTimer(t *testing.T) {
	svc, repo, _, _ := newTestEngine(t)
	ctx := context.Background()

	// Record exists but no timer is armed, as after a duplicate fire
	require.NoError(t, repo.Create(ctx, &models.Giveaway{
		MessageID: "orphan",
		GuildID:   "guild-1",
		ChannelID: "channel-1",
		Status:    models.GiveawayStatusActive,
	}))

	_, err := svc.Complete(ctx, "orphan")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, models.GiveawayStatusActive, repo.status("orphan"))
}

func TestCompleteWithNoEntrants(t *testing.T) {
	svc, repo, platform, _ := newTestEngine(t)
	platform.entrants = nil
	ctx := context.Background()

	giveaway, err := svc.Create(ctx, validOptions())
	require.NoError(t, err)

	result, err := svc.Complete(ctx, giveaway.MessageID)
	require.NoError(t, err)

	assert.Empty(t, result.Winners)
	assert.Equal(t, models.GiveawayStatusEnded, repo.status(giveaway.MessageID))
	require.Len(t, platform.sentNotifications(), 1)
	assert.Contains(t, platform.sentNotifications()[0], "Nobody entered")
}

func TestCompleteEntrantFetchFailureKeepsGiveawayAlive(t *testing.T) {
	svc, repo, platform, sched := newTestEngine(t)
	ctx := context.Background()

	giveaway, err := svc.Create(ctx, validOptions())
	require.NoError(t, err)

	platform.fetchErr = errors.New("gateway unavailable")

	_, err = svc.Complete(ctx, giveaway.MessageID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	// The record stays active and a retry timer replaces the cancelled one
	assert.Equal(t, models.GiveawayStatusActive, repo.status(giveaway.MessageID))
	assert.Equal(t, 1, sched.Pending())

	// Once the platform recovers, completion succeeds
	platform.fetchErr = nil
	result, err := svc.Complete(ctx, giveaway.MessageID)
	require.NoError(t, err)
	assert.Len(t, result.Winners, 2)
	assert.Equal(t, models.GiveawayStatusEnded, repo.status(giveaway.MessageID))
}

func TestCompleteStoreFailureKeepsGiveawayAlive(t *testing.T) {
	svc, repo, platform, sched := newTestEngine(t)
	ctx := context.Background()

	giveaway, err := svc.Create(ctx, validOptions())
	require.NoError(t, err)

	repo.markEndedErr = errors.New("connection reset")

	_, err = svc.Complete(ctx, giveaway.MessageID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	// The record stays active and a retry timer replaces the cancelled one,
	// just as for a failed entrant fetch.
	assert.Equal(t, models.GiveawayStatusActive, repo.status(giveaway.MessageID))
	assert.Equal(t, 1, sched.Pending())
	assert.Empty(t, platform.sentNotifications())

	// Once the store recovers, completion succeeds
	repo.markEndedErr = nil
	result, err := svc.Complete(ctx, giveaway.MessageID)
	require.NoError(t, err)
	assert.Len(t, result.Winners, 2)
	assert.Equal(t, models.GiveawayStatusEnded, repo.status(giveaway.MessageID))
}

func TestCompleteSurfacesAnnouncementFailure(t *testing.T) {
	svc, repo, platform, _ := newTestEngine(t)
	ctx := context.Background()

	giveaway, err := svc.Create(ctx, validOptions())
	require.NoError(t, err)

	platform.updateErr = ErrMalformedAnnouncement

	// The display update is best-effort: the draw still lands, but the caller
	// is told the announcement could not be rewritten.
	result, err := svc.Complete(ctx, giveaway.MessageID)
	require.NoError(t, err)
	assert.Len(t, result.Winners, 2)
	assert.Equal(t, models.GiveawayStatusEnded, repo.status(giveaway.MessageID))
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "announcement update failed")
	assert.Contains(t, result.Warnings[0], ErrMalformedAnnouncement.Error())
}

func TestRerollRequiresEndedGiveaway(t *testing.T) {
	svc, repo, platform, _ := newTestEngine(t)
	ctx := context.Background()

	giveaway, err := svc.Create(ctx, validOptions())
	require.NoError(t, err)

	_, err = svc.Reroll(ctx, giveaway.MessageID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, models.GiveawayStatusActive, repo.status(giveaway.MessageID))
	assert.Empty(t, platform.sentNotifications())

	_, err = svc.Reroll(ctx, "no-such-message")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRerollAfterCompletion(t *testing.T) {
	svc, repo, platform, sched := newTestEngine(t)
	ctx := context.Background()

	giveaway, err := svc.Create(ctx, validOptions())
	require.NoError(t, err)
	_, err = svc.Complete(ctx, giveaway.MessageID)
	require.NoError(t, err)

	result, err := svc.Reroll(ctx, giveaway.MessageID)
	require.NoError(t, err)

	assert.Len(t, result.Winners, 2)
	assert.Subset(t, platform.entrants, result.Winners)
	assert.Equal(t, models.GiveawayStatusEnded, repo.status(giveaway.MessageID))
	assert.Len(t, platform.sentNotifications(), 2)
	assert.Equal(t, 0, sched.Pending(), "reroll must not arm timers")
}

func TestRehydrateArmsAllActiveGiveaways(t *testing.T) {
	svc, repo, _, sched := newTestEngine(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Giveaway{
			MessageID: fmt.Sprintf("msg-%d", i),
			GuildID:   "guild-1",
			ChannelID: "channel-1",
			Prize:     "Nitro",
			Winners:   1,
			EndsOn:    future,
			Status:    models.GiveawayStatusActive,
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.Giveaway{
		MessageID: "ended",
		GuildID:   "guild-1",
		ChannelID: "channel-1",
		EndsOn:    future,
		Status:    models.GiveawayStatusEnded,
	}))

	count, err := svc.Rehydrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, sched.Pending())

	// Rehydrating again replaces rather than duplicates
	count, err = svc.Rehydrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, sched.Pending())
}

func TestListFiltersByGuildAndStatus(t *testing.T) {
	svc, repo, _, _ := newTestEngine(t)
	ctx := context.Background()
	future := time.Now().Add(time.Hour)

	seed := []*models.Giveaway{
		{MessageID: "a1", GuildID: "guild-a", ChannelID: "c", Prize: "One", HostedBy: "h1", EndsOn: future, Status: models.GiveawayStatusActive},
		{MessageID: "a2", GuildID: "guild-a", ChannelID: "c", Prize: "Two", HostedBy: "h2", EndsOn: future, Status: models.GiveawayStatusActive},
		{MessageID: "a3", GuildID: "guild-a", ChannelID: "c", Prize: "Done", HostedBy: "h3", EndsOn: future, Status: models.GiveawayStatusEnded},
		{MessageID: "b1", GuildID: "guild-b", ChannelID: "c", Prize: "Other", HostedBy: "h4", EndsOn: future, Status: models.GiveawayStatusActive},
	}
	for _, g := range seed {
		require.NoError(t, repo.Create(ctx, g))
	}

	summaries, err := svc.List(ctx, "guild-a")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	ids := []string{summaries[0].MessageID, summaries[1].MessageID}
	assert.ElementsMatch(t, []string{"a1", "a2"}, ids)
	for _, s := range summaries {
		assert.True(t, strings.HasPrefix(s.HostedBy, "user-"), "host must be resolved for display")
		assert.Greater(t, s.TimeRemaining, time.Duration(0))
	}

	// A guild with no giveaways yields an empty slice, not an error
	summaries, err = svc.List(ctx, "guild-z")
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

func TestFetch(t *testing.T) {
	svc, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	giveaway, err := svc.Create(ctx, validOptions())
	require.NoError(t, err)

	fetched, err := svc.Fetch(ctx, giveaway.MessageID)
	require.NoError(t, err)
	assert.Equal(t, giveaway.MessageID, fetched.MessageID)

	_, err = svc.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduledFireCompletesGiveaway(t *testing.T) {
	svc, repo, platform, _ := newTestEngine(t)
	ctx := context.Background()

	opts := validOptions()
	opts.Duration = 20 * time.Millisecond
	giveaway, err := svc.Create(ctx, opts)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return repo.status(giveaway.MessageID) == models.GiveawayStatusEnded
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return len(platform.sentNotifications()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
