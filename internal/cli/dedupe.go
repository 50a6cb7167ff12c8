package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"phonestore/internal/catalog"
)

var dedupeApply bool

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find and merge duplicate categories",
	Long: `Finds sibling categories that differ only in case, accents, punctuation
or a plural "s" (for example "Laptop" and "Laptops") and merges each group
into the member holding the most products. Without --apply it only reports.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		out := cmd.OutOrStdout()

		groups, err := e.service.Duplicates(ctx)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Fprintln(out, "no duplicate categories")
			return nil
		}
		if !dedupeApply {
			printGroups(out, groups)
			fmt.Fprintln(out, "\nrun with --apply to merge")
			return nil
		}

		// Each merge changes the tree, so groups are recomputed after it.
		merged := 0
		for len(groups) > 0 {
			g := groups[0]
			results, err := e.service.MergeDuplicates(ctx, g)
			if err != nil {
				return err
			}
			e.invalidate(ctx)
			for _, r := range results {
				fmt.Fprintf(out, "merged %s into %s (%d products, %d subcategories)\n",
					r.SourceID, r.TargetID, r.ProductsMoved, r.ChildrenMoved)
			}
			merged += len(results)

			if groups, err = e.service.Duplicates(ctx); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "%d merges applied\n", merged)
		return nil
	},
}

func init() {
	dedupeCmd.Flags().BoolVar(&dedupeApply, "apply", false, "merge the duplicates instead of listing them")
	rootCmd.AddCommand(dedupeCmd)
}

func printGroups(w io.Writer, groups []catalog.DuplicateGroup) {
	for _, g := range groups {
		fmt.Fprintf(w, "%s [%s] products=%d\n", g.Target.Name, g.Target.ID, g.Target.ProductCount)
		for _, s := range g.Sources {
			fmt.Fprintf(w, "  ← %s [%s] products=%d\n", s.Name, s.ID, s.ProductCount)
		}
	}
}
