package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/runx-dev/runx/internal/cache"
	"github.com/runx-dev/runx/internal/codes"
	"github.com/runx-dev/runx/internal/config"
	"github.com/runx-dev/runx/internal/discover"
	"github.com/runx-dev/runx/internal/language"
	"github.com/runx-dev/runx/internal/orchestrator"
	"github.com/runx-dev/runx/internal/ui"
	"github.com/runx-dev/runx/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "runx [file] [args...]",
	Short:        "Zero-configuration source file runner",
	Long:         `Detects a source file's language, compiles it if needed (with build caching), and runs it under optional timeout, memory, and sandbox limits.`,
	RunE:         runRoot,
	SilenceUsage: true,
	Args:         cobra.ArbitraryArgs,
}

// exitCode carries the final process exit code out of cobra's RunE flow
var exitCode int

func Execute() {
	if err := rootCmd.Execute(); err != nil && exitCode == codes.OK {
		exitCode = codes.Failure
	}

	if exitCode != codes.OK {
		os.Exit(exitCode)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().IntP("timeout", "t", config.DefaultTimeout, "Timeout in seconds for the target program (0 = unbounded)")
	rootCmd.PersistentFlags().IntP("memory", "m", config.DefaultMemory, "Memory limit in MB, enforced under a sandbox (0 = unbounded)")
	rootCmd.PersistentFlags().BoolP("sandbox", "s", false, "Run the program under a sandbox tool if one is available")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable build cache")
	rootCmd.PersistentFlags().Int("max-age", config.DefaultMaxAgeDays, "Cache retention in days")
	rootCmd.PersistentFlags().Bool("clear-cache", false, "Clear the build cache and exit")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(historyCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	if clear, _ := cmd.Flags().GetBool("clear-cache"); clear {
		return clearCache()
	}

	registry := language.Default()

	var file string
	var programArgs []string

	if len(args) > 0 {
		file = args[0]
		programArgs = args[1:]
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		file, err = discover.Newest(cwd, registry)
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("cannot read %s: %w", file, err)
	}

	// shebang beats the filename suffix
	extension := discover.Extension(file)

	cfg, err := config.NewLoader().LoadForRun(cmd, file, extension, programArgs)
	if err != nil {
		return err
	}

	reporter := ui.New(cfg.Verbose)

	store, history := openCache(cfg)
	if history != nil {
		defer history.Close()
	}

	code, err := orchestrator.New(store, history, reporter).Run(cfg)
	exitCode = code

	return err
}

// openCache opens the store and journal, degrading to nil on failure: a
// broken cache never blocks a run.
func openCache(cfg *config.Config) (*cache.Store, *cache.History) {
	store, err := cache.Open(cfg.CacheDir, cfg.MaxAge())
	if err != nil {
		log.Debug("failed to open cache, running without it", "err", err)
		return nil, nil
	}

	history, err := cache.OpenHistory(store.Dir())
	if err != nil {
		log.Debug("failed to open run history", "err", err)
		return store, nil
	}

	return store, history
}

// clearCache force-clears artifacts and the run journal, then exits
// without building or running anything.
func clearCache() error {
	store, err := cache.Open("", 0)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	if err := store.EvictAll(); err != nil {
		return err
	}

	if history, err := cache.OpenHistory(store.Dir()); err == nil {
		defer history.Close()
		_ = history.Clear()
	}

	fmt.Println("Cache cleared")
	return nil
}
