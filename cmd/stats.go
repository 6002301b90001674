package cmd

import (
	"fmt"

	"github.com/drillbook/drillbook/internal/store"
	"github.com/drillbook/drillbook/internal/wrongbook"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show practice statistics",
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

		stats, err := st.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}

		fmt.Printf("questions in bank   %d\n", stats.Questions)
		fmt.Printf("attempts            %d\n", stats.Attempts)
		fmt.Printf("correct             %d\n", stats.CorrectAttempts)
		if stats.Attempts > 0 {
			fmt.Printf("accuracy            %.0f%%\n", stats.Accuracy()*100)
		}
		fmt.Printf("wrongbook active    %d\n", stats.WrongbookActive)

		if stats.WrongbookActive > 0 {
			fmt.Println("\nwrongbook streaks")
			for streak := 0; streak < wrongbook.EvictionThreshold; streak++ {
				fmt.Printf("  %d correct in a row: %d\n", streak, stats.StreakCounts[streak])
			}
		}
		return nil
	},
}
