package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/repository"
)

func newPurgeCommand() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete monitoring records older than --days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", days)
			}
			rt, err := loadApp()
			if err != nil {
				return err
			}
			defer rt.close()

			ctx := contextOrBackground(cmd.Context())
			db, err := rt.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := repository.NewRecordRepo(db).DeleteOlderThan(ctx, days)
			if err != nil {
				return err
			}
			rt.log.Info("records purged", zap.Int("older_than_days", days), zap.Int64("deleted", n))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 365, "Retention window in days")
	return cmd
}
