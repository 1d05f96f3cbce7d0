package bot

import (
	"pidroid/model"
	"pidroid/punishments"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// Bot owns the Discord session, the database handle and the scheduler.
type Bot struct {
	Session *discordgo.Session
	DB      *sqlx.DB

	config    atomic.Value // *model.Config
	actions   *punishments.DiscordActions
	notifier  *punishments.DiscordNotifier
	scheduler *Scheduler
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	// Member join/update and unban events drive the punishment hooks.
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildBans

	b := &Bot{
		Session:  dg,
		DB:       db,
		actions:  punishments.NewDiscordActions(dg),
		notifier: punishments.NewDiscordNotifier(dg),
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

// GetActions returns the Discord-side mutation capabilities shared by the
// reconciliation loop and the event hooks.
func (b *Bot) GetActions() punishments.GuildActions {
	return b.actions
}

// GetNotifier returns the best-effort notification channel implementation.
func (b *Bot) GetNotifier() punishments.Notifier {
	return b.notifier
}

// NewRequest assembles the explicit punishment request for a moderator
// action in a guild.
func (b *Bot) NewRequest(guildID, guildName, channelID, moderatorID, moderatorName string) punishments.Request {
	return punishments.Request{
		DB:            b.DB,
		Actions:       b.actions,
		Notifier:      b.notifier,
		GuildID:       guildID,
		GuildName:     guildName,
		ChannelID:     channelID,
		ModeratorID:   moderatorID,
		ModeratorName: moderatorName,
		WarningExpiry: b.GetConfig().WarningExpiry,
	}
}
