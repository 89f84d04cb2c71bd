package main

import (
	"fmt"
	"io"

	"discord_intro_bot/internal/domain/guildconfig"
	"discord_intro_bot/internal/infra/config"
	"discord_intro_bot/internal/infra/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// configCmd edits guild settings directly in the configured store.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or change a guild's intro settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get <guild-id>",
	Short: "Print the settings stored for a guild",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStores, err := openConfigStore(cmd)
		if err != nil {
			return err
		}
		defer closeStores()

		cfg, err := repo.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <guild-id> <key> [value]",
	Short: "Set a guild setting; omitting the value clears it",
	Long:  "Keys: roleId, introNotifyChannelId, channelId.",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := guildconfig.ParseKey(args[1])
		if err != nil {
			return err
		}
		value := ""
		if len(args) == 3 {
			value = args[2]
		}

		repo, closeStores, err := openConfigStore(cmd)
		if err != nil {
			return err
		}
		defer closeStores()

		if err := repo.Set(cmd.Context(), args[0], key, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s updated for guild %s\n", key, args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

func openConfigStore(cmd *cobra.Command) (guildconfig.Repository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)

	st, err := openStores(cmd.Context(), cfg, logrus.NewEntry(logger.Log))
	if err != nil {
		return nil, nil, err
	}
	return st.configs, st.Close, nil
}

func printConfig(w io.Writer, cfg guildconfig.SubmissionConfig) {
	for _, k := range guildconfig.Keys {
		value := "(unset)"
		if v := cfg.Get(k); v != nil {
			value = *v
		}
		fmt.Fprintf(w, "%s: %s\n", k, value)
	}
}
