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
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/eslsoft/flashdeck/internal/entity"
	"github.com/eslsoft/flashdeck/internal/usecase"
)

var showCmd = &cobra.Command{
	Use:   "show <card-id>",
	Short: "Show a card and its learning record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		card, rec, err := container.Study.Inspect(cmd.Context(), args[0])
		if err != nil {
			if usecase.IsNotFound(err) {
				return fmt.Errorf("unknown card %q", args[0])
			}
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})
		table.AppendBulk(cardRows(card, rec))
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func cardRows(card entity.Card, rec entity.CardRecord) [][]string {
	return [][]string{
		{"id", card.ID},
		{"category", card.Category.Code()},
		{"base difficulty", card.BaseDifficulty.String()},
		{"front", card.Front},
		{"back", card.Back},
		{"state", rec.State.String()},
		{"difficulty", rec.Difficulty.String()},
		{"ease factor", strconv.FormatFloat(rec.EaseFactor, 'f', 2, 64)},
		{"interval", fmt.Sprintf("%d day(s)", rec.IntervalDays)},
		{"repetitions", strconv.Itoa(rec.Repetitions)},
		{"last quality", strconv.Itoa(int(rec.LastQuality))},
		{"last review", dateOrDash(rec.LastReviewDate)},
		{"next review", dateOrDash(rec.NextReviewDate)},
	}
}

func dateOrDash(d *entity.Date) string {
	if d == nil || d.IsZero() {
		return "-"
	}
	return d.String()
}
