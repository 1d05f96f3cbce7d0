package utils

import (
	"fmt"
	"pidroid/model"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	successColor = 0x2ECC71
	embedColor   = 0x5865F2
)

// SuccessEmbed builds the green confirmation embed used for punishment
// notifications.
func SuccessEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: description,
		Color:       successColor,
	}
}

// NoticeEmbed builds the neutral embed used for direct messages to
// punished users.
func NoticeEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: description,
		Color:       embedColor,
	}
}

// CaseEmbed renders a punishment case for moderator-facing output.
func CaseEmbed(c *model.Case) *discordgo.MessageEmbed {
	now := time.Now()
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("[%s #%s] %s", c.Type, c.CaseID, c.UserName),
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: c.UserName, Inline: true},
			{Name: "Moderator", Value: c.ModeratorName, Inline: true},
			{Name: "Reason", Value: c.CleanReason(), Inline: true},
			{Name: "Duration", Value: c.DurationString(now), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Issued " + time.Unix(c.IssuedAt, 0).UTC().Format("2006-01-02 15:04 UTC"),
		},
	}
}
