package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GiveawayStatus represents the lifecycle state of a giveaway
type GiveawayStatus string

const (
	GiveawayStatusActive GiveawayStatus = "ACTIVE"
	GiveawayStatusEnded  GiveawayStatus = "ENDED"
)

// Giveaway represents a timed draw event announced in a guild channel.
// It is keyed by the announcement message ID for its whole lifetime.
type Giveaway struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MessageID string             `bson:"messageId" json:"messageId"`
	GuildID   string             `bson:"guildId" json:"guildId"`
	ChannelID string             `bson:"channelId" json:"channelId"`
	Prize     string             `bson:"prize" json:"prize"`
	HostedBy  string             `bson:"hostedBy" json:"hostedBy"`
	Winners   int                `bson:"winners" json:"winners"`
	StartsOn  time.Time          `bson:"startsOn" json:"startsOn"`
	EndsOn    time.Time          `bson:"endsOn" json:"endsOn"` // startsOn + duration, authoritative for scheduling
	Duration  time.Duration      `bson:"duration" json:"duration"`
	Status    GiveawayStatus     `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateGiveawayOptions carries the caller-supplied fields for a new giveaway
type CreateGiveawayOptions struct {
	GuildID   string        `json:"guildId"`
	ChannelID string        `json:"channelId"`
	HostedBy  string        `json:"hostedBy"`
	Prize     string        `json:"prize"`
	Winners   int           `json:"winners"`
	Duration  time.Duration `json:"duration"`
}

// DrawResult is the outcome of a completion or reroll. Winners holds user IDs
// and is empty when nobody entered. Warnings reports non-fatal delivery
// problems, such as a malformed announcement that could not be updated.
type DrawResult struct {
	Giveaway *Giveaway `json:"giveaway"`
	Winners  []string  `json:"winners"`
	Warnings []string  `json:"warnings,omitempty"`
}

// GiveawaySummary is the listing projection of an active giveaway
type GiveawaySummary struct {
	MessageID     string        `json:"messageId"`
	Prize         string        `json:"prize"`
	HostedBy      string        `json:"hostedBy"`
	TimeRemaining time.Duration `json:"timeRemaining"`
}
