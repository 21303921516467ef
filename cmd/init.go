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
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eslsoft/flashdeck/internal/adapter/deckfile"
)

// initCmd prepares storage and optionally installs a deck downloaded from a URL.
var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Prepare storage and optionally download a deck",
	Long:        "Create the progress table for SQL backends and, with --url, download a deck file into deck.path. Downloads are cached under the user cache directory.",
	Annotations: map[string]string{deckAnnotation: deckOptional},
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		force, _ := cmd.Flags().GetBool("force")

		driver, _ := container.Config.StorageDriver()
		cmd.Printf("Storage ready: %s (key %s)\n", driver, container.Store.Key())

		if url == "" {
			return nil
		}
		deckPath := container.Config.Deck.Path
		if _, err := os.Stat(deckPath); err == nil && !force {
			return fmt.Errorf("deck %s already exists, use --force to replace it", deckPath)
		}

		n, err := installDeck(cmd.Context(), url, deckPath, cacheDir, noCache)
		if err != nil {
			return err
		}
		if err := loadDeck(cmd, container); err != nil {
			return err
		}
		cmd.Printf("Installed deck %s with %d card(s)\n", deckPath, n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("url", "", "deck file URL to download")
	initCmd.Flags().String("cache-dir", "", "download cache directory (default: user cache dir/flashdeck)")
	initCmd.Flags().Bool("no-cache", false, "ignore the local cache and download again")
	initCmd.Flags().Bool("force", false, "replace an existing deck file")
}

// installDeck fetches url (or reuses the cached copy), validates it and copies it to deckPath.
func installDeck(ctx context.Context, url, deckPath, cacheDirFlag string, noCache bool) (int, error) {
	cacheDir, cachePath, fromCache, err := prepareCachePath(url, cacheDirFlag, noCache)
	if err != nil {
		return 0, err
	}
	if !fromCache {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return 0, fmt.Errorf("create cache directory: %w", err)
		}
		if err := downloadFile(ctx, url, cachePath); err != nil {
			return 0, err
		}
	}

	deck, err := deckfile.Load(cachePath)
	if err != nil {
		_ = os.Remove(cachePath)
		return 0, fmt.Errorf("downloaded deck is invalid: %w", err)
	}
	if err := copyFile(cachePath, deckPath); err != nil {
		return 0, err
	}
	return len(deck.Cards), nil
}

func prepareCachePath(url, cacheDirFlag string, noCache bool) (string, string, bool, error) {
	// Determine base cache dir
	var base string
	if cacheDirFlag != "" {
		base = cacheDirFlag
	} else {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return "", "", false, fmt.Errorf("resolve user cache dir: %w", err)
		}
		base = filepath.Join(userCache, "flashdeck")
	}
	// stable filename from URL hash
	h := crc32.ChecksumIEEE([]byte(url))
	name := fmt.Sprintf("deck-%08x%s", h, deckExt(url))
	cachePath := filepath.Join(base, name)
	if !noCache {
		if st, err := os.Stat(cachePath); err == nil && st.Size() > 0 {
			return base, cachePath, true, nil
		}
	}
	return base, cachePath, false, nil
}

func deckExt(url string) string {
	if ext := filepath.Ext(url); ext == ".json" || ext == ".yml" {
		return ext
	}
	return ".yaml"
}

func downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return err
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create deck directory: %w", err)
		}
	}
	return os.WriteFile(dst, data, 0o644)
}
