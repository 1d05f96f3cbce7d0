package handlers

import (
	"pidroid/bot"

	"github.com/bwmarrin/discordgo"
)

// Register attaches the membership event hooks to the bot's session. The
// hooks keep the case store and Discord's live guild state consistent when
// either side changes outside the other's control.
func Register(b *bot.Bot) {
	session := b.GetSession()

	session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		HandleMemberJoin(b.GetDB(), b.GetActions(), m.GuildID, m.User.ID)
	})

	session.AddHandler(func(s *discordgo.Session, u *discordgo.GuildBanRemove) {
		HandleMemberUnban(b.GetDB(), u.GuildID, u.User.ID)
	})

	session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
		if m.BeforeUpdate == nil {
			return
		}
		removed := diffRemovedRoles(m.BeforeUpdate.Roles, m.Roles)
		HandleMemberRolesRemoved(b.GetDB(), m.GuildID, m.User.ID, removed)
	})

	session.AddHandler(func(s *discordgo.Session, r *discordgo.GuildRoleDelete) {
		HandleRoleDelete(b.GetDB(), r.GuildID, r.RoleID)
	})

	session.AddHandler(func(s *discordgo.Session, c *discordgo.ChannelDelete) {
		HandleChannelDelete(b.GetDB(), c.GuildID, c.ID)
	})
}

// diffRemovedRoles returns the roles present before the update but absent
// after it.
func diffRemovedRoles(before, after []string) []string {
	current := make(map[string]struct{}, len(after))
	for _, id := range after {
		current[id] = struct{}{}
	}
	var removed []string
	for _, id := range before {
		if _, ok := current[id]; !ok {
			removed = append(removed, id)
		}
	}
	return removed
}
