package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/roach88/dasha/internal/compiler"
	"github.com/roach88/dasha/internal/system"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Watch bool
}

// ValidationIssue is one rejected definition.
type ValidationIssue struct {
	Code    string `json:"code" yaml:"code" toml:"code"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty" toml:"field,omitempty"`
	Message string `json:"message" yaml:"message" toml:"message"`
	File    string `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty" toml:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid" yaml:"valid" toml:"valid"`
	Files   int               `json:"files" yaml:"files" toml:"files"`
	Systems []string          `json:"systems" yaml:"systems" toml:"systems"`
	Errors  []ValidationIssue `json:"errors,omitempty" yaml:"errors,omitempty" toml:"errors,omitempty"`
}

// WriteText implements Text.
func (r ValidationResult) WriteText(w io.Writer) error {
	if r.Valid {
		_, err := fmt.Fprintf(w, "✓ %d system(s) valid in %d file(s)\n", len(r.Systems), r.Files)
		return err
	}
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, e := range r.Errors {
		if e.File != "" {
			fmt.Fprintf(w, "%s:%d\n", e.File, e.Line)
		}
		fmt.Fprintf(w, "  %s: %s\n\n", e.Code, e.Message)
	}
	return nil
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [systems-dir]",
		Short: "Validate custom system definitions",
		Long: `Compile every .cue file under the directory (default: the configured
systems directory) and check the definitions against the built-in registry.

With --watch, validation re-runs whenever a .cue file changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.SystemsDir
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(opts, dir, cmd)
		},
	}
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "re-validate on every change")

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	if dir == "" {
		return formatter.Fail(NewExitError(ExitCommandError, "no systems directory: pass one or set systems_dir"))
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("systems directory not found: %s", dir), "")
		return NewExitError(ExitCommandError, fmt.Sprintf("systems directory not found: %s", dir))
	}

	if opts.Watch {
		return watchValidate(cmd.Context(), dir, formatter)
	}

	result := ValidateDir(dir)
	if err := formatter.Success(result); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

// ValidateDir compiles every definition under dir, collecting all errors,
// and registers the survivors alongside the built-ins.
func ValidateDir(dir string) ValidationResult {
	result := ValidationResult{Systems: []string{}}

	loaded, errs := compiler.LoadDir(dir, compiler.LoadModeCollectAll)
	if loaded != nil {
		result.Files = len(loaded.Files)
		reg, err := system.NewBuiltinRegistry()
		if err != nil {
			errs = append(errs, err)
		}
		for _, def := range loaded.Definitions {
			if reg != nil {
				if err := reg.Register(def); err != nil {
					errs = append(errs, err)
					continue
				}
			}
			result.Systems = append(result.Systems, string(def.ID))
		}
	}
	if result.Files == 0 && len(errs) == 0 {
		errs = append(errs, errors.New("no .cue files found"))
	}

	for _, err := range errs {
		result.Errors = append(result.Errors, issueOf(err))
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func issueOf(err error) ValidationIssue {
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		issue := ValidationIssue{Code: ce.Code, Field: ce.Field, Message: ce.Message}
		if ce.Pos.IsValid() {
			issue.File = ce.Pos.Filename()
			issue.Line = ce.Pos.Line()
		}
		return issue
	}
	return ValidationIssue{Code: ErrCodeValidation, Message: err.Error()}
}

// watchDebounce coalesces editor save bursts into one validation run.
const watchDebounce = 150 * time.Millisecond

// watchValidate validates once, then again after every burst of .cue
// changes, until ctx is cancelled.
func watchValidate(ctx context.Context, dir string, formatter *OutputFormatter) error {
	if ctx == nil {
		ctx = context.Background()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "start watcher", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, dir); err != nil {
		return WrapExitError(ExitCommandError, "watch "+dir, err)
	}

	report := func() {
		if err := formatter.Success(ValidateDir(dir)); err != nil {
			formatter.VerboseLog("write result: %v", err)
		}
	}
	report()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = watchTree(watcher, ev.Name)
					continue
				}
			}
			if !isDefinitionFile(ev.Name) {
				continue
			}
			formatter.VerboseLog("%s %s", ev.Op, ev.Name)
			pending = time.After(watchDebounce)
		case <-pending:
			pending = nil
			report()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.VerboseLog("watch error: %v", err)
		}
	}
}

// watchTree adds dir and every directory below it; fsnotify is not
// recursive.
func watchTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

func isDefinitionFile(path string) bool {
	ok, _ := doublestar.Match("*.cue", filepath.Base(path))
	return ok
}
