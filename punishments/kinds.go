package punishments

import (
	"fmt"
	"pidroid/model"
	"time"
)

// Ban permanently or temporarily bans a user from the guild.
type Ban struct {
	base
}

func NewBan(req Request, userID, userName string) *Ban {
	return &Ban{newBase(req, model.PunishmentBan, userID, userName)}
}

// Issue bans the user. Any active jail, mute or timeout is revoked first
// since a banned user cannot simultaneously serve a lesser punishment.
// Notifications go out before the ban itself, while the user can still be
// reached.
func (p *Ban) Issue() (*model.Case, error) {
	for _, kind := range []model.PunishmentType{model.PunishmentJail, model.PunishmentMute, model.PunishmentTimeout} {
		if err := p.revokeEntry(kind); err != nil {
			return nil, err
		}
	}
	record, err := p.createEntry()
	if err != nil {
		return nil, err
	}

	p.notifyChat(p.withReason(fmt.Sprintf("%s was banned", p.userName)))
	p.notifyUser(p.withReason(fmt.Sprintf("You have been banned from %s server", p.req.GuildName)))

	if err := p.req.Actions.BanUser(p.req.GuildID, p.userID, p.reason); err != nil {
		return nil, fmt.Errorf("failed to ban user %s: %w", p.userID, err)
	}
	return record, nil
}

// Revoke lifts the ban. A missing Discord-side ban is ignored, since its
// absence is the desired end state.
func (p *Ban) Revoke() error {
	if err := p.revokeEntry(model.PunishmentBan); err != nil {
		return err
	}
	swallowRevokeError(model.PunishmentBan, p.userID, p.req.Actions.UnbanUser(p.req.GuildID, p.userID))

	p.notifyChat(fmt.Sprintf("%s was unbanned!", p.userName))
	p.notifyUser(fmt.Sprintf("You have been unbanned from %s server!", p.req.GuildName))
	return nil
}

// Kick removes a member from the guild. Kicks have no revoke path.
type Kick struct {
	base
}

func NewKick(req Request, userID, userName string) *Kick {
	return &Kick{newBase(req, model.PunishmentKick, userID, userName)}
}

// Issue kicks the member, revoking any active jail, mute or timeout first.
func (p *Kick) Issue() (*model.Case, error) {
	for _, kind := range []model.PunishmentType{model.PunishmentJail, model.PunishmentMute, model.PunishmentTimeout} {
		if err := p.revokeEntry(kind); err != nil {
			return nil, err
		}
	}
	record, err := p.createEntry()
	if err != nil {
		return nil, err
	}

	p.notifyChat(p.withReason(fmt.Sprintf("%s was kicked", p.userName)))
	p.notifyUser(p.withReason(fmt.Sprintf("You have been kicked from %s server", p.req.GuildName)))

	if err := p.req.Actions.KickMember(p.req.GuildID, p.userID, p.reason); err != nil {
		return nil, fmt.Errorf("failed to kick user %s: %w", p.userID, err)
	}
	return record, nil
}

// Jail confines a member with the guild's configured jail role.
type Jail struct {
	base
	roleID string
}

func NewJail(req Request, userID, userName, roleID string) *Jail {
	return &Jail{newBase(req, model.PunishmentJail, userID, userName), roleID}
}

// Issue jails the member by assigning the jail role.
func (p *Jail) Issue() (*model.Case, error) {
	record, err := p.createEntry()
	if err != nil {
		return nil, err
	}
	if err := p.req.Actions.AddRole(p.req.GuildID, p.userID, p.roleID); err != nil {
		return nil, fmt.Errorf("failed to assign jail role to user %s: %w", p.userID, err)
	}

	p.notifyChat(p.withReason(fmt.Sprintf("%s was jailed", p.userName)))
	p.notifyUser(p.withReason(fmt.Sprintf("You have been jailed in %s server", p.req.GuildName)))
	return record, nil
}

// Revoke unjails the member. A role already absent is not an error.
func (p *Jail) Revoke() error {
	if err := p.revokeEntry(model.PunishmentJail); err != nil {
		return err
	}
	swallowRevokeError(model.PunishmentJail, p.userID, p.req.Actions.RemoveRole(p.req.GuildID, p.userID, p.roleID))

	p.notifyChat(fmt.Sprintf("%s was unjailed!", p.userName))
	p.notifyUser(fmt.Sprintf("You have been unjailed in %s server!", p.req.GuildName))
	return nil
}

// Mute silences a member with the guild's configured mute role.
type Mute struct {
	base
	roleID string
}

func NewMute(req Request, userID, userName, roleID string) *Mute {
	return &Mute{newBase(req, model.PunishmentMute, userID, userName), roleID}
}

// Issue mutes the member by assigning the mute role.
func (p *Mute) Issue() (*model.Case, error) {
	record, err := p.createEntry()
	if err != nil {
		return nil, err
	}
	if err := p.req.Actions.AddRole(p.req.GuildID, p.userID, p.roleID); err != nil {
		return nil, fmt.Errorf("failed to assign mute role to user %s: %w", p.userID, err)
	}

	p.notifyChat(p.withReason(fmt.Sprintf("%s was muted", p.userName)))
	p.notifyUser(p.withReason(fmt.Sprintf("You have been muted in %s server", p.req.GuildName)))
	return record, nil
}

// Revoke unmutes the member. A role already absent is not an error.
func (p *Mute) Revoke() error {
	if err := p.revokeEntry(model.PunishmentMute); err != nil {
		return err
	}
	swallowRevokeError(model.PunishmentMute, p.userID, p.req.Actions.RemoveRole(p.req.GuildID, p.userID, p.roleID))

	p.notifyChat(fmt.Sprintf("%s was unmuted!", p.userName))
	p.notifyUser(fmt.Sprintf("You have been unmuted in %s server!", p.req.GuildName))
	return nil
}

// Warning records a formal warning. Warnings never touch Discord state and
// expire on their own; moderators can invalidate them early instead of
// revoking.
type Warning struct {
	base
}

func NewWarning(req Request, userID, userName string) *Warning {
	return &Warning{newBase(req, model.PunishmentWarning, userID, userName)}
}

// Issue records the warning, defaulting its expiry when none was set.
func (p *Warning) Issue() (*model.Case, error) {
	if p.expiresAt == model.NeverExpires {
		expiry := DefaultWarningDuration
		if p.req.WarningExpiry > 0 {
			expiry = p.req.WarningExpiry
		}
		p.SetDuration(expiry)
	}
	record, err := p.createEntry()
	if err != nil {
		return nil, err
	}

	p.notifyChat(fmt.Sprintf("%s has been warned: %s", p.userName, p.reason))
	p.notifyUser(fmt.Sprintf("You have been warned in %s server: %s", p.req.GuildName, p.reason))
	return record, nil
}

// Timeout uses Discord's native timeout mechanism instead of a role.
type Timeout struct {
	base
}

func NewTimeout(req Request, userID, userName string) *Timeout {
	return &Timeout{newBase(req, model.PunishmentTimeout, userID, userName)}
}

// Issue times the member out until the configured expiry.
func (p *Timeout) Issue() (*model.Case, error) {
	record, err := p.createEntry()
	if err != nil {
		return nil, err
	}

	var until *time.Time
	if p.expiresAt != model.NeverExpires {
		t := time.Unix(p.expiresAt, 0)
		until = &t
	}
	if err := p.req.Actions.SetTimeout(p.req.GuildID, p.userID, until, p.reason); err != nil {
		return nil, fmt.Errorf("failed to time out user %s: %w", p.userID, err)
	}

	p.notifyChat(p.withReason(fmt.Sprintf("%s was timed out", p.userName)))
	p.notifyUser(p.withReason(fmt.Sprintf("You have been timed out in %s server", p.req.GuildName)))
	return record, nil
}

// Revoke clears the native timeout field.
func (p *Timeout) Revoke() error {
	if err := p.revokeEntry(model.PunishmentTimeout); err != nil {
		return err
	}
	swallowRevokeError(model.PunishmentTimeout, p.userID, p.req.Actions.SetTimeout(p.req.GuildID, p.userID, nil, "Timeout removed"))

	p.notifyChat(fmt.Sprintf("Timeout for %s was removed!", p.userName))
	p.notifyUser(fmt.Sprintf("Your timeout has been removed in %s server!", p.req.GuildName))
	return nil
}
