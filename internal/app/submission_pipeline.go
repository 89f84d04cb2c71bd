package app

import (
	"context"
	"strings"
	"time"

	"discord_intro_bot/internal/domain/audit"
	"discord_intro_bot/internal/domain/guildconfig"
	"discord_intro_bot/internal/domain/intro"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is the terminal state of one pipeline run.
type State string

const (
	StateIgnored  State = "ignored" // dropped by the channel restriction, no reply
	StateRejected State = "rejected"
	StateAccepted State = "accepted"
)

// AckPolicy selects the acceptance message wording.
type AckPolicy string

const (
	// AckAdditive appends a clause for each optional step that succeeded.
	AckAdditive AckPolicy = "additive"
	// AckFixed always sends the same acceptance message.
	AckFixed AckPolicy = "fixed"
)

// ReplyVisibility controls who sees the reply to a command submission.
type ReplyVisibility string

const (
	ReplyPublic  ReplyVisibility = "public"
	ReplyPrivate ReplyVisibility = "private"
)

// Reply texts shown to submitters.
const (
	ackAdditiveBase   = "✅ 自己紹介を確認しました！"
	ackRoleClause     = "ロールを付与しました。"
	ackNotifiedClause = "通知チャンネルに投稿しました。"
	ackFixed          = "✅ 自己紹介を受け付けました！"
	rejectionHeader   = "⚠️ 自己紹介のテンプレートが正しくありません。次の項目をすべて、この順番で記入してください。"
)

// RejectionMessage is the help text sent for an invalid submission.
func RejectionMessage() string {
	return rejectionHeader + "\n" + intro.HelpText()
}

// Granter is the role-grant step.
type Granter interface {
	Grant(ctx context.Context, guildID, memberID, roleID string) (GrantResult, error)
}

// Publisher is the notification step.
type Publisher interface {
	Publish(ctx context.Context, channelID string, n Notification) (PublishResult, error)
}

// PipelineOptions are the policy knobs shared by every entry path.
type PipelineOptions struct {
	AckPolicy       AckPolicy
	ReplyVisibility ReplyVisibility
}

// Result is what the entry path needs to answer the submitter.
type Result struct {
	State      State
	Reply      string
	Visibility ReplyVisibility
	Outcome    intro.Outcome
}

// SubmissionPipeline validates a submission and fans it out to the role and
// notification steps. It holds no mutable state and is safe for concurrent use.
type SubmissionPipeline struct {
	configs   guildconfig.Reader
	granter   Granter
	publisher Publisher
	audits    audit.Repository // optional
	opts      PipelineOptions
	logger    *logrus.Entry
	now       func() time.Time
}

func NewSubmissionPipeline(
	configs guildconfig.Reader,
	granter Granter,
	publisher Publisher,
	audits audit.Repository,
	opts PipelineOptions,
	logger *logrus.Entry,
) *SubmissionPipeline {
	if opts.AckPolicy == "" {
		opts.AckPolicy = AckAdditive
	}
	if opts.ReplyVisibility == "" {
		opts.ReplyVisibility = ReplyPrivate
	}
	return &SubmissionPipeline{
		configs:   configs,
		granter:   granter,
		publisher: publisher,
		audits:    audits,
		opts:      opts,
		logger:    logger.WithField("component", "submission_pipeline"),
		now:       time.Now,
	}
}

// Process runs one submission to a terminal state.
func (p *SubmissionPipeline) Process(ctx context.Context, sub intro.Submission) Result {
	cfg := p.loadConfig(ctx, sub.GuildID)

	if cfg.RestrictedChannelID != nil && *cfg.RestrictedChannelID != sub.SourceChannelID {
		return Result{State: StateIgnored}
	}

	log := p.logger.WithFields(logrus.Fields{
		"guild_id":     sub.GuildID,
		"submitter_id": sub.SubmitterID,
		"submitter":    sub.SubmitterDisplayName,
		"grammar":      sub.Grammar.String(),
	})
	visibility := p.Visibility(sub)

	validation := intro.Validate(sub.Grammar.Normalize(sub.RawText), sub.Grammar)
	if !validation.Valid {
		log.Info("Introduction rejected: template mismatch")
		p.record(ctx, sub, false, intro.Outcome{})
		return Result{State: StateRejected, Reply: RejectionMessage(), Visibility: visibility}
	}

	outcome := intro.Outcome{FormattedText: intro.Format(validation.CleanedText)}

	if cfg.RoleID != nil {
		res, err := p.granter.Grant(ctx, sub.GuildID, sub.SubmitterID, *cfg.RoleID)
		if err != nil {
			log.WithError(err).Warn("Role grant failed")
		}
		outcome.RoleGranted = res.Granted
		outcome.AlreadyHadRole = res.AlreadyHeld
	}

	if cfg.IntroNotifyChannelID != nil {
		res, err := p.publisher.Publish(ctx, *cfg.IntroNotifyChannelID, Notification{
			Submission:    sub,
			FormattedText: outcome.FormattedText,
		})
		if err != nil {
			log.WithError(err).Warn("Notification publish failed")
		}
		outcome.Notified = res.Sent
		outcome.Mirrored = res.Mirrored
	}

	log.WithFields(logrus.Fields{
		"role_granted":     outcome.RoleGranted,
		"already_had_role": outcome.AlreadyHadRole,
		"notified":         outcome.Notified,
	}).Info("Introduction accepted")
	p.record(ctx, sub, true, outcome)

	return Result{
		State:      StateAccepted,
		Reply:      p.acknowledgement(outcome),
		Visibility: visibility,
		Outcome:    outcome,
	}
}

// loadConfig treats an unreadable store as an empty config.
func (p *SubmissionPipeline) loadConfig(ctx context.Context, guildID string) guildconfig.SubmissionConfig {
	cfg, err := p.configs.Get(ctx, guildID)
	if err != nil {
		p.logger.WithError(err).WithField("guild_id", guildID).Warn("Config unavailable, optional steps disabled")
		return guildconfig.SubmissionConfig{}
	}
	return cfg
}

// Visibility returns the reply visibility for sub; channel messages can only be
// answered publicly.
func (p *SubmissionPipeline) Visibility(sub intro.Submission) ReplyVisibility {
	if sub.Grammar == intro.GrammarMultiline {
		return ReplyPublic
	}
	return p.opts.ReplyVisibility
}

func (p *SubmissionPipeline) acknowledgement(o intro.Outcome) string {
	if p.opts.AckPolicy == AckFixed {
		return ackFixed
	}
	parts := []string{ackAdditiveBase}
	if o.RoleGranted {
		parts = append(parts, ackRoleClause)
	}
	if o.Notified {
		parts = append(parts, ackNotifiedClause)
	}
	return strings.Join(parts, " ")
}

func (p *SubmissionPipeline) record(ctx context.Context, sub intro.Submission, accepted bool, o intro.Outcome) {
	if p.audits == nil {
		return
	}
	rec := &audit.Record{
		ID:             uuid.NewString(),
		GuildID:        sub.GuildID,
		SubmitterID:    sub.SubmitterID,
		Accepted:       accepted,
		RoleGranted:    o.RoleGranted,
		AlreadyHadRole: o.AlreadyHadRole,
		Notified:       o.Notified,
		CreatedAt:      p.now().UTC(),
	}
	if err := p.audits.Create(ctx, rec); err != nil {
		p.logger.WithError(err).WithField("submitter_id", sub.SubmitterID).Warn("Failed to record submission")
	}
}
