package discord

import (
	"fmt"
	"time"

	"github.com/HeemPlayz/arabs-giveaways/internal/services"
	"github.com/HeemPlayz/arabs-giveaways/internal/utils"
	"github.com/bwmarrin/discordgo"
)

const announcementColor = 0xFF0000

// announcementEmbed builds the embed posted when a giveaway starts
func announcementEmbed(a services.Announcement) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: a.Prize,
		Color: announcementColor,
		Description: fmt.Sprintf("React with %s to participate!\nTime Left: %s\nHosted By: %s",
			services.DefaultOptInEmoji,
			utils.FormatDuration(time.Until(a.EndsOn)),
			utils.Mention(a.HostedBy)),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d winner(s)", a.WinnerCount),
		},
		Timestamp: a.EndsOn.Format(time.RFC3339),
	}
}

// winnersLine renders the post-draw embed description
func winnersLine(winnerIDs []string) string {
	if len(winnerIDs) == 0 {
		return "🎖️ Winner(s): no valid entrants"
	}
	return "🎖️ Winner(s): " + utils.MentionList(winnerIDs)
}
