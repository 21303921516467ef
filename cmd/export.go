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
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/flashdeck/internal/entity"
	"github.com/eslsoft/flashdeck/internal/usecase/backup"
)

const (
	exportOutputKey     = "backup.export.output"
	exportGzipKey       = "backup.export.gzip"
	exportCategoriesKey = "backup.export.categories"
)

var exportCmd = &cobra.Command{
	Use:         "export",
	Short:       "Export learning progress as an NDJSON backup",
	Annotations: map[string]string{deckAnnotation: deckOptional},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		outputPath := viper.GetString(exportOutputKey)
		gzipEnabled := viper.GetBool(exportGzipKey)
		categories := exportCategories(viper.GetStringSlice(exportCategoriesKey))

		if outputPath == "" {
			outputPath = defaultExportFilename(gzipEnabled)
		}
		if !gzipEnabled && outputPath != "-" && strings.HasSuffix(strings.ToLower(outputPath), ".gz") {
			gzipEnabled = true
		}

		var (
			writer   = cmd.OutOrStdout()
			closeFns []func() error
		)

		if outputPath != "-" {
			if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			file, openErr := os.Create(outputPath)
			if openErr != nil {
				return fmt.Errorf("create backup file: %w", openErr)
			}
			writer = file
			closeFns = append(closeFns, file.Close)
		}

		if gzipEnabled {
			gz := gzip.NewWriter(writer)
			writer = gz
			closeFns = append([]func() error{gz.Close}, closeFns...)
		}

		defer func() {
			for _, closer := range closeFns {
				if cerr := closer(); cerr != nil && err == nil {
					err = cerr
				}
			}
		}()

		progress := newCLIProgress(cmd.ErrOrStderr())
		exportOpts := []backup.ExportOption{backup.WithProgressReporter(progress)}
		if len(categories) > 0 {
			exportOpts = append(exportOpts, backup.WithCategories(categories))
		}

		if err := container.Backup.Export(ctx, writer, exportOpts...); err != nil {
			return fmt.Errorf("export backup: %w", err)
		}

		if outputPath == "-" {
			cmd.PrintErrln("Export complete: written to stdout")
		} else {
			cmd.Printf("Export complete: %s\n", outputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "backup file path, - for stdout")
	exportCmd.Flags().Bool("gzip", false, "gzip the output")
	exportCmd.Flags().StringSlice("categories", nil, "only export these categories, comma separated or repeated")

	bindExportConfig()
}

func defaultExportFilename(gzipEnabled bool) string {
	ts := now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("flashdeck-backup-%s.jsonl", ts)
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}

func bindExportConfig() {
	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
	bindFlagToViper(exportCategoriesKey, exportCmd.Flags().Lookup("categories"))
}

type cliProgress struct {
	out         io.Writer
	total       int
	count       int
	lastPrinted int
	step        int
	started     time.Time
}

func newCLIProgress(out io.Writer) *cliProgress {
	return &cliProgress{out: out}
}

func (p *cliProgress) Start(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	p.count = 0
	p.lastPrinted = 0
	p.step = progressStep(total)
	p.started = now()
	fmt.Fprintf(p.out, "Exporting %d card(s)\n", total)
}

func (p *cliProgress) Increment(delta int) {
	if delta <= 0 {
		return
	}
	p.count += delta
	if p.count == p.total || p.count-p.lastPrinted >= p.step {
		fmt.Fprintf(p.out, "Progress: %d/%d\n", p.count, p.total)
		p.lastPrinted = p.count
	}
}

func (p *cliProgress) Finish() {
	fmt.Fprintf(p.out, "Exported %d/%d card(s) in %s\n", p.count, p.total, now().Sub(p.started).Round(time.Millisecond))
}

func progressStep(total int) int {
	if total <= 0 {
		return 1000
	}
	return min(1000, max(1, total/20))
}

// exportCategories normalizes the --categories values, dropping blanks and repeats.
func exportCategories(values []string) []string {
	categories := lo.Uniq(lo.FilterMap(values, func(v string, _ int) (string, bool) {
		c := entity.NormalizeCategory(v)
		return c.Code(), c != ""
	}))
	if len(categories) == 0 {
		return nil
	}
	return categories
}
