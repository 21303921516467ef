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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eslsoft/flashdeck/internal/entity"
	"github.com/eslsoft/flashdeck/internal/usecase"
)

var errQuit = errors.New("quit")

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Run an interactive study session over the due cards",
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

		session, err := runStudySession(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), container.Study, usecase.DueRequest{
			Category: category,
			Filter:   filter,
			Today:    today,
			Limit:    limit,
		})
		if err != nil {
			return err
		}

		snap := container.Tally.Snapshot()
		cmd.Printf("\nStudied %d card(s): %d passed, %d failed\n", session.Studied, session.Passed, session.Failed)
		cmd.Printf("Daily goal: %d/%d (%d%%)\n", snap.Studied, snap.DailyGoal, snap.GoalPercent)
		cmd.Printf("Deck mastery: %d%% (%d learned of %d)\n", session.Deck.MasteryPercent, session.Deck.LearnedCount, session.Deck.Total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(studyCmd)

	studyCmd.Flags().StringP("category", "c", "", "only study cards of this category (default all)")
	studyCmd.Flags().String("filter", "", "CEL filter over cards and records")
	studyCmd.Flags().IntP("limit", "n", 0, "maximum number of cards this session (0 = no limit)")
}

// runStudySession walks the due queue once, asking for a grade after each card is revealed.
// Entering q at any prompt ends the session early.
func runStudySession(ctx context.Context, in io.Reader, out io.Writer, study usecase.StudyUsecase, req usecase.DueRequest) (entity.SessionStats, error) {
	cards, err := study.DueCards(ctx, req)
	if err != nil {
		return entity.SessionStats{}, err
	}
	if len(cards) == 0 {
		fmt.Fprintf(out, "Nothing due on %s\n", req.Today)
		return study.FinishSession(ctx), nil
	}

	scanner := bufio.NewScanner(in)
	for i, card := range cards {
		fmt.Fprintf(out, "\n[%d/%d] %s (%s)\n%s\n", i+1, len(cards), card.ID, card.Category, card.Front)
		if _, err := prompt(scanner, out, "Press enter to reveal, q to quit: "); err != nil {
			break
		}
		fmt.Fprintf(out, "Answer: %s\n", card.Back)

		quality, err := askQuality(scanner, out)
		if err != nil {
			break
		}
		rec, err := study.ProcessAnswer(ctx, card.ID, quality, req.Today)
		if err != nil {
			study.FinishSession(ctx)
			return entity.SessionStats{}, err
		}
		fmt.Fprintf(out, "Next review %s (%s)\n", rec.NextReviewDate, rec.State)
	}
	return study.FinishSession(ctx), nil
}

func askQuality(scanner *bufio.Scanner, out io.Writer) (entity.Quality, error) {
	for {
		line, err := prompt(scanner, out, "Quality 0-5 (0 blackout, 3 hard pass, 5 perfect): ")
		if err != nil {
			return 0, err
		}
		q, err := entity.ParseQuality(line)
		if err == nil {
			return q, nil
		}
		fmt.Fprintln(out, err)
	}
}

func prompt(scanner *bufio.Scanner, out io.Writer, msg string) (string, error) {
	fmt.Fprint(out, msg)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := strings.TrimSpace(scanner.Text())
	if strings.EqualFold(line, "q") {
		return "", errQuit
	}
	return line, nil
}
