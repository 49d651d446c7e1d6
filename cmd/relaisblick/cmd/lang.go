package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbehnke/relaisblick/internal/database"
	"github.com/dbehnke/relaisblick/internal/logger"
	"github.com/dbehnke/relaisblick/internal/preferences"
)

var langReset bool

var langCmd = &cobra.Command{
	Use:       "lang [de|en]",
	Short:     "Print, set or reset the display language",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(preferences.German), string(preferences.English)},
	RunE:      runLang,
}

func init() {
	langCmd.Flags().BoolVar(&langReset, "reset", false, "forget the stored language and use the default")
}

func runLang(cmd *cobra.Command, args []string) error {
	if langReset && len(args) == 1 {
		return fmt.Errorf("--reset cannot be combined with a language")
	}

	db, err := database.NewDB(database.Config{Path: cfg.GetDatabasePath()}, logger.Get())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	store := preferences.NewLanguageStore(database.NewPreferenceRepository(db.GetDB()), logger.Get())

	if langReset {
		if err := store.Reset(cmd.Context()); err != nil {
			return err
		}
	}

	if len(args) == 1 {
		lang, err := preferences.ParseLanguage(args[0])
		if err != nil {
			return err
		}
		if err := store.SetLanguage(cmd.Context(), lang); err != nil {
			return err
		}
	}

	lang, err := store.Language(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), lang)
	return nil
}
