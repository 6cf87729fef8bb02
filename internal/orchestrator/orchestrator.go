// Package orchestrator ties the pipeline together: resolve language,
// consult the cache, build on a miss, execute, report.
package orchestrator

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/runx-dev/runx/internal/builder"
	"github.com/runx-dev/runx/internal/cache"
	"github.com/runx-dev/runx/internal/codes"
	"github.com/runx-dev/runx/internal/config"
	"github.com/runx-dev/runx/internal/executor"
	"github.com/runx-dev/runx/internal/language"
	"github.com/runx-dev/runx/internal/ui"
)

// Orchestrator runs one invocation end to end.
type Orchestrator struct {
	Registry *language.Registry
	Builder  *builder.Builder
	Executor *executor.Executor
	Reporter *ui.Reporter

	// Cache may be nil: opening the store is itself advisory, and a nil
	// cache simply means every build is fresh.
	Cache *cache.Store

	// History may be nil; recording is best-effort.
	History *cache.History
}

// New wires the default pipeline against the given cache (which may be nil).
func New(store *cache.Store, history *cache.History, reporter *ui.Reporter) *Orchestrator {
	return &Orchestrator{
		Registry: language.Default(),
		Builder:  builder.New(),
		Executor: executor.New(),
		Reporter: reporter,
		Cache:    store,
		History:  history,
	}
}

// Run executes the full sequence and returns the process exit code.
// Terminal errors (unsupported language, compile failure) come back as a
// non-nil error with code 1; execution outcomes map onto the exit code
// directly.
func (o *Orchestrator) Run(cfg *config.Config) (int, error) {
	spec, err := o.Registry.Resolve(cfg.Extension)
	if err != nil {
		return codes.Failure, err
	}

	// Batch eviction happens exactly once, before any lookup
	if o.Cache != nil {
		o.Cache.Sweep()
	}

	workDir, err := os.MkdirTemp("", "runx-*")
	if err != nil {
		return codes.Failure, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	artifact, cacheHit, err := o.prepare(cfg, spec, workDir)
	if err != nil {
		if ce, ok := err.(*builder.CompileError); ok {
			o.Reporter.CompileFailed(ce.Output)
		}

		return codes.Failure, err
	}

	name, args := runCommand(spec, artifact, cfg.Args)

	o.Reporter.Executing(cfg.SourceFile)

	result, err := o.Executor.Run(executor.Request{
		Name:             name,
		Args:             args,
		Timeout:          cfg.TimeoutDuration(),
		MemoryLimitBytes: cfg.MemoryBytes(),
		Sandbox:          cfg.Sandbox,
	})
	if err != nil {
		return codes.Failure, err
	}

	exitCode := o.report(cfg, result)
	o.record(cfg, spec, result, cacheHit, exitCode)

	return exitCode, nil
}

// prepare yields a runnable artifact: straight from the source for Direct
// strategies, from the cache on a hit, from a fresh build otherwise. Cache
// failures degrade silently to a build; store failures skip persisting.
func (o *Orchestrator) prepare(cfg *config.Config, spec language.Spec, workDir string) (*builder.Artifact, bool, error) {
	if spec.Strategy == language.Direct {
		return &builder.Artifact{Kind: builder.ArtifactSource, Path: cfg.SourceFile}, false, nil
	}

	flags := builder.ResolveFlags(spec)

	compilerPath, err := builder.ResolveCompiler(spec)
	if err != nil {
		return nil, false, err
	}

	var key string
	useCache := !cfg.NoCache && o.Cache != nil

	if useCache {
		key, err = cache.ComputeKeyFile(cfg.SourceFile, compilerPath, flags)
		if err != nil {
			log.Debug("cache key computation failed", "err", err)
			useCache = false
		}
	}

	if useCache {
		if artifact, ok := o.fromCache(spec, key, workDir, cfg.SourceFile); ok {
			o.Reporter.CacheHit()
			return artifact, true, nil
		}
	}

	o.Reporter.Compiling(spec.Name)
	artifact, err := o.Builder.Build(spec, compilerPath, cfg.SourceFile, flags, workDir)
	o.Reporter.Compiled()

	if err != nil {
		return nil, false, err
	}

	if useCache {
		o.toCache(key, artifact)
	}

	return artifact, false, nil
}

// fromCache tries to satisfy the build from the store.
func (o *Orchestrator) fromCache(spec language.Spec, key, workDir, sourcePath string) (*builder.Artifact, bool) {
	switch spec.Strategy {
	case language.Compile:
		entry, ok := o.Cache.Lookup(key, cache.KindExecutable)
		if !ok {
			return nil, false
		}

		return &builder.Artifact{Kind: builder.ArtifactExecutable, Path: entry.Path}, true

	case language.CompileBytecode:
		entry, ok := o.Cache.Lookup(key, cache.KindArchive)
		if !ok {
			return nil, false
		}

		// The bundled set only works restored whole; a failed restore is a miss
		if err := o.Cache.Restore(entry, workDir); err != nil {
			log.Debug("cache restore failed", "key", key, "err", err)
			return nil, false
		}

		return &builder.Artifact{
			Kind: builder.ArtifactBytecodeDir,
			Path: workDir,
			Unit: builder.UnitName(sourcePath),
		}, true
	}

	return nil, false
}

// toCache persists a fresh build, best-effort.
func (o *Orchestrator) toCache(key string, artifact *builder.Artifact) {
	var err error

	switch artifact.Kind {
	case builder.ArtifactExecutable:
		_, err = o.Cache.StoreExecutable(key, artifact.Path)
	case builder.ArtifactBytecodeDir:
		_, err = o.Cache.StoreArchive(key, artifact.Path, artifact.Files)
	}

	if err != nil {
		log.Debug("failed to persist cache entry", "key", key, "err", err)
	}
}

// runCommand builds the final argv for the executor.
func runCommand(spec language.Spec, artifact *builder.Artifact, programArgs []string) (string, []string) {
	switch artifact.Kind {
	case builder.ArtifactExecutable:
		return artifact.Path, programArgs
	case builder.ArtifactBytecodeDir:
		// runtime loads the unit from the restored directory (java -cp style)
		args := append([]string{"-cp", artifact.Path, artifact.Unit}, programArgs...)
		return spec.Runner, args
	}

	return spec.Runner, append([]string{artifact.Path}, programArgs...)
}

// report maps the execution result to a status line and exit code.
func (o *Orchestrator) report(cfg *config.Config, result executor.Result) int {
	switch result.Status {
	case executor.Success:
		o.Reporter.Success(result.Duration)
		return codes.OK
	case executor.TimedOut:
		o.Reporter.TimedOut(cfg.TimeoutDuration())
		return codes.Timeout
	case executor.Signaled:
		o.Reporter.Signaled(result.Signal)
		return codes.ForSignal(result.Signal)
	}

	o.Reporter.Failed(result.ExitCode)
	return result.ExitCode
}

// record appends the run to the history journal, best-effort.
func (o *Orchestrator) record(cfg *config.Config, spec language.Spec, result executor.Result, cacheHit bool, exitCode int) {
	if o.History == nil {
		return
	}

	err := o.History.Record(cache.Run{
		Source:    cfg.SourceFile,
		Language:  spec.Name,
		Status:    result.Status.String(),
		ExitCode:  exitCode,
		Duration:  result.Duration,
		CacheHit:  cacheHit,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Debug("failed to record run history", "err", err)
	}
}
