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
	"encoding/json"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show deck progress statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats := container.Study.Stats(cmd.Context())
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"total":           stats.Total,
				"learned":         stats.LearnedCount,
				"to_review":       stats.ToReviewCount,
				"difficult":       stats.DifficultCount,
				"mastery":         stats.MasteryPercent,
				"last_study_date": dateOrDash(container.Store.LastStudyDate()),
			})
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Total", "Learned", "To review", "Difficult", "Mastery", "Last studied"})
		table.SetBorder(false)
		table.Append([]string{
			strconv.Itoa(stats.Total),
			strconv.Itoa(stats.LearnedCount),
			strconv.Itoa(stats.ToReviewCount),
			strconv.Itoa(stats.DifficultCount),
			strconv.Itoa(stats.MasteryPercent) + "%",
			dateOrDash(container.Store.LastStudyDate()),
		})
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Bool("json", false, "print statistics as JSON")
}
