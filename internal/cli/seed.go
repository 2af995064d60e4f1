package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/seed"
)

func newSeedCommand() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, monitoring points and readings",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			sum, err := seed.Run(ctx, db, seed.Options{Days: days, BcryptCost: rt.cfg.BcryptCost}, rt.log)
			if err != nil {
				return err
			}
			rt.log.Info("database seeded",
				zap.Int("users", sum.Users),
				zap.Int("points", sum.Points),
				zap.Int("records", sum.Records),
				zap.Int("messages", sum.Messages),
				zap.String("admin_email", seed.AdminEmail),
			)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Days of history to generate per point")
	return cmd
}
