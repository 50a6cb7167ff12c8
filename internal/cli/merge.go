package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source-id> <target-id>",
	Short: "Merge one category into another",
	Long:  "Moves every product and subcategory of the source to the target, then deletes the source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("source id: %w", err)
		}
		target, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("target id: %w", err)
		}

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		res, err := e.service.MergeCategories(cmd.Context(), source, target)
		if err != nil {
			return err
		}
		e.invalidate(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "merged %s into %s: %d products, %d subcategories moved\n",
			res.SourceID, res.TargetID, res.ProductsMoved, res.ChildrenMoved)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
