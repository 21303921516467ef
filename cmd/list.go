/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/eslsoft/flashdeck/internal/entity"
	"github.com/eslsoft/flashdeck/internal/usecase"
	"github.com/eslsoft/flashdeck/pkg/cardfilter"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List deck cards with their learning records",
	Example: `  flashdeck list --order-by "ease_factor asc"
  flashdeck list -c pain --filter 'state == "learned"'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rawCategory, _ := cmd.Flags().GetString("category")
		category, err := entity.ParseCategory(rawCategory)
		if err != nil {
			return err
		}
		filter, _ := cmd.Flags().GetString("filter")
		orderBy, _ := cmd.Flags().GetString("order-by")

		items, err := container.Study.ListCards(cmd.Context(), usecase.ListRequest{
			Category: category,
			Filter:   filter,
			OrderBy:  orderBy,
		})
		if err != nil {
			return err
		}
		if len(items) == 0 {
			cmd.Println("No cards match")
			return nil
		}
		renderList(cmd.OutOrStdout(), items)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("category", "c", "", "only cards of this category (default all)")
	listCmd.Flags().String("filter", "", `CEL filter, e.g. 'ease_factor < 2.0'`)
	listCmd.Flags().String("order-by", "", `up to two keys, e.g. "repetitions desc, id"`)
}

func renderList(out io.Writer, items []cardfilter.Item) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Category", "State", "Difficulty", "Reps", "Interval", "Ease", "Next review"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, it := range items {
		table.Append([]string{
			it.Card.ID,
			it.Card.Category.Code(),
			it.Record.State.String(),
			it.Record.Difficulty.String(),
			strconv.Itoa(it.Record.Repetitions),
			strconv.Itoa(it.Record.IntervalDays),
			strconv.FormatFloat(it.Record.EaseFactor, 'f', 2, 64),
			dateOrDash(it.Record.NextReviewDate),
		})
	}
	table.Render()
	fmt.Fprintf(out, "%d card(s)\n", len(items))
}
