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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslsoft/flashdeck/internal/adapter/deckfile"
	"github.com/eslsoft/flashdeck/internal/app"
	"github.com/eslsoft/flashdeck/internal/entity"
)

// deckAnnotation marks commands that can run without a deck file.
const (
	deckAnnotation = "flashdeck/deck"
	deckOptional   = "optional"
)

var (
	cfgFile   string
	container *app.Container
	teardown  func()
	now       = time.Now
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flashdeck",
	Short: "Spaced-repetition flashcard trainer",
	Long: `flashdeck schedules flashcard reviews with the SM-2 algorithm.

Progress is kept per card in the configured storage backend (sqlite3 by default)
and the deck itself is read from a YAML or JSON file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnFinalize(shutdown)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.env or ./config/.env)")
	rootCmd.PersistentFlags().String("date", "", "study date as YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().String("deck", "", "deck file path (default deck.yaml)")
	rootCmd.PersistentFlags().String("driver", "", "storage driver: memory, sqlite3, postgres, pgx, redis")
	rootCmd.PersistentFlags().String("log-level", "", "log level (default info)")

	bindFlagToViper("deck.path", rootCmd.PersistentFlags().Lookup("deck"))
	bindFlagToViper("storage.driver", rootCmd.PersistentFlags().Lookup("driver"))
	bindFlagToViper("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func setup(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	c, cleanup, err := app.Initialize()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	container, teardown = c, cleanup

	return loadDeck(cmd, c)
}

func loadDeck(cmd *cobra.Command, c *app.Container) error {
	path := strings.TrimSpace(c.Config.Deck.Path)
	deck, err := deckfile.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && cmd.Annotations[deckAnnotation] == deckOptional {
			c.Logger.WithField("path", path).Debug("deck file not found, continuing without deck")
			return nil
		}
		return fmt.Errorf("load deck %s: %w", path, err)
	}
	if len(deck.Duplicates) > 0 {
		c.Logger.WithField("ids", deck.Duplicates).Warn("duplicate card ids in deck, keeping first occurrence")
	}
	return c.Study.LoadDeck(cmd.Context(), deck.Cards)
}

func shutdown() {
	if teardown != nil {
		teardown()
	}
	container, teardown = nil, nil
}

// studyDate resolves the --date flag, defaulting to today.
func studyDate(cmd *cobra.Command) (entity.Date, error) {
	raw, _ := cmd.Flags().GetString("date")
	if strings.TrimSpace(raw) == "" {
		return entity.DateOf(now()), nil
	}
	return entity.ParseDate(strings.TrimSpace(raw))
}

// bindFlagToViper lets a flag override the config key it shadows.
func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}
