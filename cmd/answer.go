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

	"github.com/spf13/cobra"

	"github.com/eslsoft/flashdeck/internal/entity"
	"github.com/eslsoft/flashdeck/internal/usecase"
)

var answerCmd = &cobra.Command{
	Use:   "answer <card-id> <quality>",
	Short: "Record a graded answer (quality 0-5) for a card",
	Long: `Record a graded answer for a card.

Quality grades recall from 0 (blackout) to 5 (perfect); 3 or more counts as a pass.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := studyDate(cmd)
		if err != nil {
			return err
		}
		quality, err := entity.ParseQuality(args[1])
		if err != nil {
			return err
		}

		rec, err := container.Study.ProcessAnswer(cmd.Context(), args[0], quality, today)
		if err != nil {
			if usecase.IsNotFound(err) {
				return fmt.Errorf("unknown card %q", args[0])
			}
			return err
		}
		container.Study.FinishSession(cmd.Context())

		cmd.Println(describeRecord(args[0], rec))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(answerCmd)
}

func describeRecord(id string, rec entity.CardRecord) string {
	return fmt.Sprintf("%s: %s, interval %d day(s), ease %.2f, next review %s",
		id, rec.State, rec.IntervalDays, rec.EaseFactor, rec.NextReviewDate)
}
