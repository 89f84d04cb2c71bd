package discord

import (
	"discord_intro_bot/internal/domain/guildconfig"

	"github.com/bwmarrin/discordgo"
)

const (
	CommandIntro       = "intro"
	CommandIntroConfig = "intro-config"

	optionText  = "text"
	optionKey   = "key"
	optionValue = "value"

	subcommandSet   = "set"
	subcommandGet   = "get"
	subcommandClear = "clear"
)

var adminPermission int64 = discordgo.PermissionAdministrator

var dmPermission = false

var IntroCommand = &discordgo.ApplicationCommand{
	Name:        CommandIntro,
	Description: "Submit your self-introduction",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.Japanese: "自己紹介を投稿します",
	},
	DMPermission: &dmPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        optionText,
			Description: "[名前] ... [VRCの名前] ... [年齢] ... [性別] ... [趣味] ... [一言] ...",
			DescriptionLocalizations: map[discordgo.Locale]string{
				discordgo.Japanese: "テンプレートに沿った自己紹介",
			},
			Required:  true,
			MaxLength: 2000,
		},
	},
}

func keyOption(required bool) *discordgo.ApplicationCommandOption {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(guildconfig.Keys))
	for _, k := range guildconfig.Keys {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: string(k), Value: string(k)})
	}
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        optionKey,
		Description: "Setting to change",
		Required:    required,
		Choices:     choices,
	}
}

var IntroConfigCommand = &discordgo.ApplicationCommand{
	Name:                     CommandIntroConfig,
	Description:              "Configure introduction handling for this server",
	DescriptionLocalizations: &map[discordgo.Locale]string{discordgo.Japanese: "自己紹介の設定"},
	DefaultMemberPermissions: &adminPermission,
	DMPermission:             &dmPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        subcommandSet,
			Description: "Set a value",
			Options: []*discordgo.ApplicationCommandOption{
				keyOption(true),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionValue,
					Description: "Role or channel ID",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        subcommandGet,
			Description: "Show current settings",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        subcommandClear,
			Description: "Clear a value",
			Options:     []*discordgo.ApplicationCommandOption{keyOption(true)},
		},
	},
}

// AllCommands contains every application command the bot registers.
var AllCommands = []*discordgo.ApplicationCommand{
	IntroCommand,
	IntroConfigCommand,
}
