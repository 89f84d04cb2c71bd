package main

import (
	"errors"
	"fmt"
	"time"

	"discord_intro_bot/internal/infra/config"
	"discord_intro_bot/internal/infra/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect recorded introduction submissions",
}

var auditListCmd = &cobra.Command{
	Use:   "list <guild-id> <user-id>",
	Short: "List a member's most recent submissions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("could not load application configuration: %w", err)
		}
		logger.Init(cfg)

		st, err := openStores(cmd.Context(), cfg, logrus.NewEntry(logger.Log))
		if err != nil {
			return err
		}
		defer st.Close()
		if st.audits == nil {
			return errors.New("submission audit requires CONFIG_DRIVER sqlite or postgres")
		}

		records, err := st.audits.ListBySubmitter(cmd.Context(), args[0], args[1], auditLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range records {
			fmt.Fprintf(out, "%s  %s  accepted=%t role_granted=%t already_had_role=%t notified=%t\n",
				r.CreatedAt.Format(time.RFC3339), r.ID, r.Accepted, r.RoleGranted, r.AlreadyHadRole, r.Notified)
		}
		if len(records) == 0 {
			fmt.Fprintln(out, "no submissions recorded")
		}
		return nil
	},
}

func init() {
	auditListCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "Maximum number of records")
	auditCmd.AddCommand(auditListCmd)
}
