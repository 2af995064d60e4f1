package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := database.Direction(args[0])
			if dir != database.Up && dir != database.Down {
				return fmt.Errorf("unknown direction %q: want up or down", args[0])
			}

			rt, err := loadApp()
			if err != nil {
				return err
			}
			defer rt.close()

			db, err := rt.openDB(contextOrBackground(cmd.Context()))
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := database.Migrate(db, dir)
			if err != nil {
				return err
			}
			rt.log.Info("migration finished", zap.String("direction", string(dir)), zap.Uint("version", version))
			return nil
		},
	}
}
