package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discord_intro_bot/internal/app"
	"discord_intro_bot/internal/infra/config"
	idiscord "discord_intro_bot/internal/infra/discord"
	"discord_intro_bot/internal/infra/httpserver"
	"discord_intro_bot/internal/infra/logger"
	"discord_intro_bot/internal/infra/scheduler"
	"discord_intro_bot/internal/infra/telegram"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and process introductions",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	base := logrus.NewEntry(logger.Log)
	mainLogger := logger.WithComponent("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"driver":      cfg.ConfigDriver,
	}).Info("Configuration loaded.")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	st, err := openStores(ctx, cfg, base)
	if err != nil {
		return err
	}
	defer st.Close()

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("could not create Discord session: %w", err)
	}
	client := idiscord.NewSessionClient(session)

	var mirrors []app.Mirror
	if cfg.TelegramMirrorChatID != 0 {
		tg, err := telegram.NewTelebotAdapter(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("could not create Telegram client: %w", err)
		}
		mirrors = append(mirrors, telegram.NewMirror(tg, cfg.TelegramMirrorChatID))
		mainLogger.WithField("chat_id", cfg.TelegramMirrorChatID).Info("Telegram mirror enabled.")
	}

	granter := app.NewRoleGranter(client, base)
	publisher := app.NewNotificationPublisher(client, app.NotifyFormat(cfg.NotifyFormat), mirrors, base)
	pipeline := app.NewSubmissionPipeline(st.configs, granter, publisher, st.audits, app.PipelineOptions{
		AckPolicy:       app.AckPolicy(cfg.AckPolicy),
		ReplyVisibility: app.ReplyVisibility(cfg.ReplyVisibility),
	}, base)
	admin := app.NewAdminService(st.configs, cfg.DeveloperIDs)

	handlers := idiscord.NewHandlers(pipeline, admin, cfg.EventTimeout, base)
	handlers.Register(session, idiscord.NewRouter())

	if err := session.Open(); err != nil {
		return fmt.Errorf("could not open Discord session: %w", err)
	}
	defer session.Close()

	if err := registerCommands(session, cfg.CommandGuilds); err != nil {
		return err
	}
	mainLogger.Info("Application commands registered.")

	if st.audits != nil {
		retention := scheduler.NewRetentionScheduler(st.audits, base, cfg.CronSpecAuditPrune, cfg.AuditRetentionDays)
		if err := retention.Start(); err != nil {
			return err
		}
		defer retention.Stop()
	}

	srv := httpserver.New(cfg.Port, base)
	srv.Start()

	mainLogger.Info("Bot is now running. Press CTRL-C to exit.")
	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server shutdown failed")
	}
	mainLogger.Info("Application shut down gracefully.")
	return nil
}

// registerCommands overwrites the command set in each configured guild, or
// globally when none are configured.
func registerCommands(s *discordgo.Session, guildIDs []string) error {
	if len(guildIDs) == 0 {
		guildIDs = []string{""}
	}
	for _, guildID := range guildIDs {
		if _, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, idiscord.AllCommands); err != nil {
			return fmt.Errorf("cannot register commands in guild %q: %w", guildID, err)
		}
	}
	return nil
}
