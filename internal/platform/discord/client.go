// Package discord implements the chat platform boundary on top of the
// Discord gateway and REST API.
package discord

import (
	"context"
	"fmt"

	"github.com/HeemPlayz/arabs-giveaways/internal/services"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/exp/slog"
)

// reactionPageSize is the Discord API maximum for one reactions page
const reactionPageSize = 100

// UserDisplayPlaceholder is returned when a user cannot be resolved
const UserDisplayPlaceholder = "Nobody#0000"

// Compile-time check to ensure Client implements services.ChatPlatform
var _ services.ChatPlatform = (*Client)(nil)

// Client wraps a discordgo session behind the services.ChatPlatform contract
type Client struct {
	session *discordgo.Session
}

// New creates a Client for the given bot token
func New(token string) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions
	return &Client{session: session}, nil
}

// Open connects the gateway session
func (c *Client) Open() error {
	return c.session.Open()
}

// Close shuts down the gateway session
func (c *Client) Close() error {
	return c.session.Close()
}

// PostAnnouncement posts the giveaway embed and returns the message ID
func (c *Client) PostAnnouncement(ctx context.Context, channelID string, a services.Announcement) (string, error) {
	msg, err := c.session.ChannelMessageSendEmbed(channelID, announcementEmbed(a), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send announcement: %w", err)
	}
	return msg.ID, nil
}

// AttachOptIn seeds the opt-in reaction on the announcement
func (c *Client) AttachOptIn(ctx context.Context, channelID, messageID, emoji string) error {
	return c.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

// FetchOptInUsers pages through the opt-in reaction and returns all non-bot
// user IDs.
func (c *Client) FetchOptInUsers(ctx context.Context, channelID, messageID, emoji string) ([]string, error) {
	entrants := make([]string, 0)
	afterID := ""
	for {
		users, err := c.session.MessageReactions(channelID, messageID, emoji, reactionPageSize, "", afterID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch reactions: %w", err)
		}
		for _, u := range users {
			if u.Bot {
				continue
			}
			entrants = append(entrants, u.ID)
		}
		if len(users) < reactionPageSize {
			return entrants, nil
		}
		afterID = users[len(users)-1].ID
	}
}

// UpdateAnnouncement rewrites the announcement embed with the winner list.
// The announcement is expected to carry exactly one embed; anything else is
// reported as services.ErrMalformedAnnouncement.
func (c *Client) UpdateAnnouncement(ctx context.Context, channelID, messageID string, winnerIDs []string) error {
	msg, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch announcement: %w", err)
	}
	if len(msg.Embeds) != 1 {
		return services.ErrMalformedAnnouncement
	}

	embed := msg.Embeds[0]
	embed.Description = winnersLine(winnerIDs)
	if _, err := c.session.ChannelMessageEditEmbed(channelID, messageID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit announcement: %w", err)
	}
	return nil
}

// SendNotification posts a plain message to the channel
func (c *Client) SendNotification(ctx context.Context, channelID, text string) error {
	if _, err := c.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// ResolveUserDisplay returns the user's tag, or a placeholder when the lookup
// fails. Resolution problems never fail the surrounding operation.
func (c *Client) ResolveUserDisplay(ctx context.Context, userID string) string {
	user, err := c.session.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		slog.Warn("Failed to resolve user, using placeholder", "error", err, "userId", userID)
		return UserDisplayPlaceholder
	}
	return user.String()
}
