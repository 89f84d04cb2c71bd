package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"discord_intro_bot/internal/app"
	"discord_intro_bot/internal/domain/guildconfig"
	"discord_intro_bot/internal/domain/intro"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Intents the bot needs: guild metadata, guild messages and their content.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

const (
	msgGuildOnly      = "このコマンドはサーバー内でのみ使用できます。"
	msgNotAuthorized  = "⛔ この操作を行う権限がありません。"
	msgStoreFailed    = "⚠️ 設定の保存に失敗しました。しばらくしてから再度お試しください。"
	msgLoadFailed     = "⚠️ 設定の読み込みに失敗しました。しばらくしてから再度お試しください。"
	msgUnknownCommand = "不明なサブコマンドです。"
	msgUnset          = "(未設定)"
)

// Processor runs a submission through the pipeline.
type Processor interface {
	Process(ctx context.Context, sub intro.Submission) app.Result
	Visibility(sub intro.Submission) app.ReplyVisibility
}

// Responder is the subset of *discordgo.Session used to answer users.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Handlers struct {
	pipeline Processor
	admin    *app.AdminService
	timeout  time.Duration
	logger   *logrus.Entry
}

func NewHandlers(pipeline Processor, admin *app.AdminService, timeout time.Duration, logger *logrus.Entry) *Handlers {
	return &Handlers{
		pipeline: pipeline,
		admin:    admin,
		timeout:  timeout,
		logger:   logger.WithField("component", "discord_handlers"),
	}
}

// Register wires the handlers into the session and router and sets the
// gateway intents. Call before Open.
func (h *Handlers) Register(s *discordgo.Session, r *Router) {
	r.AddCommandHandler(CommandIntro, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		h.HandleIntroCommand(s, i.Interaction)
	})
	r.AddCommandHandler(CommandIntroConfig, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		h.HandleConfigCommand(s, i.Interaction)
	})

	s.AddHandler(r.OnInteractionCreate)
	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		h.HandleMessage(s, m.Message)
	})
	s.AddHandler(func(s *discordgo.Session, ready *discordgo.Ready) {
		h.logger.WithField("user", ready.User.Username).Info("Discord session ready")
	})

	s.Identify.Intents = Intents
}

func (h *Handlers) eventContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.timeout)
}

// HandleMessage processes a channel message. Messages that do not mention
// any template label are ordinary chat and are not treated as submissions.
func (h *Handlers) HandleMessage(r Responder, m *discordgo.Message) {
	sub, ok := submissionFromMessage(m)
	if !ok || !intro.MentionsLabel(intro.NormalizeLines(sub.RawText)) {
		return
	}

	ctx, cancel := h.eventContext()
	defer cancel()

	res := h.pipeline.Process(ctx, sub)
	if res.State == app.StateIgnored {
		return
	}
	if _, err := r.ChannelMessageSendReply(m.ChannelID, res.Reply, m.Reference(), discordgo.WithContext(ctx)); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"guild_id":   m.GuildID,
			"channel_id": m.ChannelID,
		}).Error("Failed to reply to submission message")
	}
}

// HandleIntroCommand processes /intro. The response is deferred first since
// role and channel lookups can exceed the interaction deadline.
func (h *Handlers) HandleIntroCommand(r Responder, i *discordgo.Interaction) {
	log := h.logger.WithField("handler", "/"+CommandIntro)

	sub, ok := submissionFromInteraction(i)
	if !ok {
		respondEphemeral(r, i, msgGuildOnly, log)
		return
	}

	ctx, cancel := h.eventContext()
	defer cancel()

	err := r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flagsFor(h.pipeline.Visibility(sub))},
	}, discordgo.WithContext(ctx))
	if err != nil {
		log.WithError(err).Error("Failed to defer interaction response")
		return
	}

	res := h.pipeline.Process(ctx, sub)
	if res.State == app.StateIgnored {
		if err := r.InteractionResponseDelete(i, discordgo.WithContext(ctx)); err != nil {
			log.WithError(err).Warn("Failed to delete deferred response")
		}
		return
	}

	reply := res.Reply
	if _, err := r.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content:         &reply,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx)); err != nil {
		log.WithError(err).Error("Failed to send interaction reply")
	}
}

// HandleConfigCommand processes /intro-config set|get|clear.
func (h *Handlers) HandleConfigCommand(r Responder, i *discordgo.Interaction) {
	log := h.logger.WithField("handler", "/"+CommandIntroConfig)

	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		respondEphemeral(r, i, msgGuildOnly, log)
		return
	}
	actor := app.Actor{UserID: i.Member.User.ID, Permissions: i.Member.Permissions}
	log = log.WithFields(logrus.Fields{"guild_id": i.GuildID, "actor_id": actor.UserID})

	cmd, err := parseConfigCommand(i.ApplicationCommandData())
	if err != nil {
		respondEphemeral(r, i, msgUnknownCommand, log)
		return
	}

	ctx, cancel := h.eventContext()
	defer cancel()

	if cmd.action == subcommandGet {
		cfg, err := h.admin.GetConfig(ctx, actor, i.GuildID)
		if err != nil {
			respondEphemeral(r, i, h.adminErrorMessage(err, msgLoadFailed, log), log)
			return
		}
		respondEphemeral(r, i, renderConfig(cfg), log)
		return
	}

	key, err := h.admin.SetConfig(ctx, actor, i.GuildID, cmd.key, cmd.value)
	if err != nil {
		respondEphemeral(r, i, h.adminErrorMessage(err, msgStoreFailed, log), log)
		return
	}
	log.WithFields(logrus.Fields{"key": key, "value": cmd.value}).Info("Intro setting changed")

	if cmd.value == "" {
		respondEphemeral(r, i, fmt.Sprintf("✅ %s を解除しました。", key), log)
		return
	}
	respondEphemeral(r, i, fmt.Sprintf("✅ %s を %s に設定しました。", key, cmd.value), log)
}

func (h *Handlers) adminErrorMessage(err error, fallback string, log *logrus.Entry) string {
	switch {
	case errors.Is(err, app.ErrAdminNotAuthorized):
		log.Warn("Unauthorized config access attempt")
		return msgNotAuthorized
	case errors.Is(err, guildconfig.ErrUnknownKey):
		return "不明な設定キーです: " + err.Error()
	default:
		log.WithError(err).Error("Config operation failed")
		return fallback
	}
}

type configCommand struct {
	action string
	key    string
	value  string
}

func parseConfigCommand(data discordgo.ApplicationCommandInteractionData) (configCommand, error) {
	if len(data.Options) == 0 {
		return configCommand{}, errors.New("missing subcommand")
	}
	sub := data.Options[0]
	cmd := configCommand{action: sub.Name}
	for _, opt := range sub.Options {
		switch opt.Name {
		case optionKey:
			cmd.key = opt.StringValue()
		case optionValue:
			cmd.value = strings.TrimSpace(opt.StringValue())
		}
	}

	switch cmd.action {
	case subcommandGet:
		return cmd, nil
	case subcommandSet:
		if cmd.key == "" || cmd.value == "" {
			return configCommand{}, errors.New("set needs key and value")
		}
		return cmd, nil
	case subcommandClear:
		if cmd.key == "" {
			return configCommand{}, errors.New("clear needs key")
		}
		cmd.value = ""
		return cmd, nil
	default:
		return configCommand{}, fmt.Errorf("unknown subcommand %q", cmd.action)
	}
}

func renderConfig(cfg guildconfig.SubmissionConfig) string {
	var b strings.Builder
	b.WriteString("⚙️ 現在の設定")
	for _, k := range guildconfig.Keys {
		value := msgUnset
		if v := cfg.Get(k); v != nil {
			value = *v
		}
		fmt.Fprintf(&b, "\n%s: %s", k, value)
	}
	return b.String()
}

func respondEphemeral(r Responder, i *discordgo.Interaction, content string, log *logrus.Entry) {
	err := r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to interaction")
	}
}

func flagsFor(v app.ReplyVisibility) discordgo.MessageFlags {
	if v == app.ReplyPrivate {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

// submissionFromMessage converts a guild message from a human author.
func submissionFromMessage(m *discordgo.Message) (intro.Submission, bool) {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return intro.Submission{}, false
	}
	nick := ""
	if m.Member != nil {
		nick = m.Member.Nick
	}
	return intro.Submission{
		RawText:              m.Content,
		SubmitterID:          m.Author.ID,
		SubmitterDisplayName: displayName(nick, m.Author),
		SubmitterAvatarURL:   m.Author.AvatarURL(""),
		GuildID:              m.GuildID,
		SourceChannelID:      m.ChannelID,
		Grammar:              intro.GrammarMultiline,
	}, true
}

// submissionFromInteraction converts a guild /intro invocation.
func submissionFromInteraction(i *discordgo.Interaction) (intro.Submission, bool) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return intro.Submission{}, false
	}
	text := ""
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == optionText {
			text = opt.StringValue()
		}
	}
	return intro.Submission{
		RawText:              text,
		SubmitterID:          i.Member.User.ID,
		SubmitterDisplayName: displayName(i.Member.Nick, i.Member.User),
		SubmitterAvatarURL:   i.Member.AvatarURL(""),
		GuildID:              i.GuildID,
		SourceChannelID:      i.ChannelID,
		Grammar:              intro.GrammarInline,
	}, true
}

// displayName prefers the guild nickname, then the global name.
func displayName(nick string, u *discordgo.User) string {
	switch {
	case nick != "":
		return nick
	case u.GlobalName != "":
		return u.GlobalName
	default:
		return u.Username
	}
}
