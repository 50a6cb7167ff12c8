package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"phonestore/internal/catalog"
	"phonestore/internal/models"
)

var treeAll bool

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the category tree",
	Long:  "Prints main categories and their subcategories with ids and product counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		tree, err := e.service.Tree(cmd.Context(), treeAll)
		if err != nil {
			return err
		}
		printTree(cmd.OutOrStdout(), tree)
		return nil
	},
}

func init() {
	treeCmd.Flags().BoolVarP(&treeAll, "all", "a", false, "include inactive categories")
	rootCmd.AddCommand(treeCmd)
}

// printTree writes one line per category, subcategories indented.
func printTree(w io.Writer, tree []models.Category) {
	if len(tree) == 0 {
		fmt.Fprintln(w, "(no categories)")
		return
	}
	for _, c := range catalog.Flatten(tree) {
		prefix := ""
		if c.Level == models.LevelSub {
			prefix = "  └─ "
		}
		fmt.Fprintln(w, treeLine(c, prefix))
	}
}

func treeLine(c models.Category, prefix string) string {
	line := fmt.Sprintf("%s%s [%s] products=%d", prefix, c.Name, c.ID, c.ProductCount)
	if !c.IsActive {
		line += " (inactive)"
	}
	return line
}
