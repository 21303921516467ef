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
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List the cards due for study, in study order",
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := studyDate(cmd)
		if err != nil {
			return err
		}
		rawCategory, _ := cmd.Flags().GetString("category")
		category, err := entity.ParseCategory(rawCategory)
		if err != nil {
			return err
		}
		filter, _ := cmd.Flags().GetString("filter")
		limit, _ := cmd.Flags().GetInt("limit")

		cards, err := container.Study.DueCards(cmd.Context(), usecase.DueRequest{
			Category: category,
			Filter:   filter,
			Today:    today,
			Limit:    limit,
		})
		if err != nil {
			return err
		}
		if len(cards) == 0 {
			cmd.Printf("No cards due on %s\n", today)
			return nil
		}
		renderDue(cmd.OutOrStdout(), cards, container.Store.Lookup)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dueCmd)

	dueCmd.Flags().StringP("category", "c", "", "only cards of this category (default all)")
	dueCmd.Flags().String("filter", "", `CEL filter, e.g. 'difficulty == "hard"'`)
	dueCmd.Flags().IntP("limit", "n", 0, "maximum number of cards (0 = no limit)")
}

func renderDue(out io.Writer, cards []entity.Card, lookup usecase.RecordLookup) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "ID", "Category", "State", "Difficulty", "Next review", "Front"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for i, card := range cards {
		rec, _ := lookup(card.ID)
		next := "-"
		if rec.NextReviewDate != nil {
			next = rec.NextReviewDate.String()
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			card.ID,
			card.Category.Code(),
			rec.State.String(),
			rec.Difficulty.String(),
			next,
			card.Front,
		})
	}
	table.Render()
	fmt.Fprintf(out, "%d card(s) due\n", len(cards))
}
