package cmd

import (
	"fmt"
	"os"

	"github.com/drillbook/drillbook/internal/docimport"
	"github.com/drillbook/drillbook/internal/store"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import question documents into the bank",
	Long: `Import parses question documents (Word .docx, Word-exported HTML,
plain text, markdown) into canonical questions and adds them to the bank.
Re-importing the same file is safe: questions are deduplicated by
content.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kindFlag, _ := cmd.Flags().GetString("kind")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		imp := docimport.NewImporter(st)
		ctx := cmd.Context()

		var totalAccepted, totalCommitted, totalRejected int
		for _, path := range args {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			kind := docimport.Kind(kindFlag)
			if kindFlag == "" {
				kind = docimport.SniffKind(path)
			}

			result, err := imp.Import(ctx, raw, kind, path)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}

			fmt.Printf("%s: %d accepted, %d new, %d rejected\n",
				path, len(result.Accepted), result.Committed, len(result.Rejected))
			for _, rej := range result.Rejected {
				fmt.Printf("  rejected (%s): %s\n", rej.Code, rej.Ref)
			}

			totalAccepted += len(result.Accepted)
			totalCommitted += result.Committed
			totalRejected += len(result.Rejected)
		}

		if len(args) > 1 {
			fmt.Printf("\ntotal: %d accepted, %d new, %d rejected\n",
				totalAccepted, totalCommitted, totalRejected)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().String("kind", "", "Force the document format: richtext, docx, html, plaintext, markdown (default: sniff from the file name)")
}
