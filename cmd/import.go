package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"querydraft/db"
)

var importSQLCmd = &cobra.Command{
	Use:   "import-sql [dir]",
	Short: "Load reference .sql files into the store",
	Long: `Walks dir (default: the configured SQL files directory) and stores every
.sql file as a reference for query generation. Existing files with the same
name are overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.SQLFilesDir
		if len(args) == 1 {
			dir = args[0]
		}
		return runImportSQL(cmd, cfg.DBPath, dir)
	},
}

func runImportSQL(cmd *cobra.Command, dbPath, dir string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	n, err := database.ImportSQLDir(dir)
	if err != nil {
		return err
	}
	log.Info().Str("component", "cli").Str("dir", dir).Int("files", n).Msg("imported SQL files")
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d SQL file(s) from %s\n", n, dir)
	return nil
}
