package punishments

import (
	"fmt"
	"log"
	"pidroid/model"
	"pidroid/utils"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DiscordActions implements GuildActions against a live discordgo session.
type DiscordActions struct {
	session *discordgo.Session
}

func NewDiscordActions(session *discordgo.Session) *DiscordActions {
	return &DiscordActions{session: session}
}

func (a *DiscordActions) BanUser(guildID, userID, reason string) error {
	return a.session.GuildBanCreateWithReason(guildID, userID, reason, 1)
}

func (a *DiscordActions) UnbanUser(guildID, userID string) error {
	return a.session.GuildBanDelete(guildID, userID)
}

func (a *DiscordActions) KickMember(guildID, userID, reason string) error {
	return a.session.GuildMemberDeleteWithReason(guildID, userID, reason)
}

func (a *DiscordActions) AddRole(guildID, userID, roleID string) error {
	return a.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (a *DiscordActions) RemoveRole(guildID, userID, roleID string) error {
	return a.session.GuildMemberRoleRemove(guildID, userID, roleID)
}

func (a *DiscordActions) SetTimeout(guildID, userID string, until *time.Time, reason string) error {
	return a.session.GuildMemberTimeout(guildID, userID, until)
}

// IsBanned checks the guild ban list for the user. An unknown-ban response
// is a clean "not banned", not an error.
func (a *DiscordActions) IsBanned(guildID, userID string) (bool, error) {
	_, err := a.session.GuildBan(guildID, userID)
	if err == nil {
		return true, nil
	}
	if isDiscordErrorCode(err, discordgo.ErrCodeUnknownBan) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check ban state for user %s in guild %s: %w", userID, guildID, err)
}

// MemberRoles returns the member's role ids, or an error when the user is no
// longer a member of the guild.
func (a *DiscordActions) MemberRoles(guildID, userID string) ([]string, error) {
	member, err := a.session.GuildMember(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member %s in guild %s: %w", userID, guildID, err)
	}
	return member.Roles, nil
}

// UserExists reports whether the user account still exists on Discord.
func (a *DiscordActions) UserExists(userID string) (bool, error) {
	_, err := a.session.User(userID)
	if err == nil {
		return true, nil
	}
	if isDiscordErrorCode(err, discordgo.ErrCodeUnknownUser) {
		return false, nil
	}
	return false, fmt.Errorf("failed to fetch user %s: %w", userID, err)
}

func isDiscordErrorCode(err error, code int) bool {
	restErr, ok := err.(*discordgo.RESTError)
	return ok && restErr.Message != nil && restErr.Message.Code == code
}

// DiscordNotifier implements Notifier over direct messages and channel
// embeds. All sends are fire-and-forget.
type DiscordNotifier struct {
	session *discordgo.Session
}

func NewDiscordNotifier(session *discordgo.Session) *DiscordNotifier {
	return &DiscordNotifier{session: session}
}

func (n *DiscordNotifier) NotifyUser(userID, message string) {
	utils.SendPrivateEmbedMessage(n.session, userID, utils.NoticeEmbed(message))
}

// NotifyChannel posts the punishment confirmation. When a case was created
// the full case embed is rendered; revocations fall back to a plain
// confirmation.
func (n *DiscordNotifier) NotifyChannel(channelID string, record *model.Case, message string) {
	var embed *discordgo.MessageEmbed
	if record != nil {
		embed = utils.CaseEmbed(record)
		embed.Description = message
	} else {
		embed = utils.SuccessEmbed(message)
	}
	if _, err := n.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("Error sending punishment notification to channel %s: %v", channelID, err)
	}
}
