package utils

import (
	"fmt"
	"strings"
	"time"
)

// Mention formats a user ID as a platform mention
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// MentionList joins user IDs as mentions for display in messages
func MentionList(userIDs []string) string {
	mentions := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		mentions = append(mentions, Mention(id))
	}
	return strings.Join(mentions, ", ")
}

// FormatDuration renders a duration as a compact "2d 3h 4m 5s" string for
// announcement embeds and listings. Negative durations render as "0s".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}
