package cmd

import (
	"fmt"

	"github.com/drillbook/drillbook/internal/store"
	"github.com/drillbook/drillbook/internal/wrongbook"
	"github.com/spf13/cobra"
)

var wrongbookCmd = &cobra.Command{
	Use:   "wrongbook",
	Short: "List the questions currently in the wrongbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		entries, err := st.ActiveWrongbookEntries(ctx)
		if err != nil {
			return fmt.Errorf("load wrongbook: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("The wrongbook is empty.")
			return nil
		}

		fmt.Printf("%d question(s) in the wrongbook\n\n", len(entries))
		for i, e := range entries {
			q, err := st.Question(ctx, e.QuestionID)
			if err != nil {
				return fmt.Errorf("load question %s: %w", e.QuestionID, err)
			}
			stem := []rune(q.Stem)
			if len(stem) > 60 {
				stem = append(stem[:60], '…')
			}
			fmt.Printf("%3d. [%d/%d] %s\n", i+1, e.Streak, wrongbook.EvictionThreshold, string(stem))
		}
		return nil
	},
}
