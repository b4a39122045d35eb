// Package patcher runs patch documents against files.
//
// A Patcher resolves a document's target, reads it through a
// store.FileStore, runs the interpreter over the lines and, in commit mode
// after a clean run, backs up the original and writes the result. Test
// runs never write.
package patcher

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/assetpatch/internal/interp"
	"github.com/dshills/assetpatch/internal/logger"
	"github.com/dshills/assetpatch/internal/patch"
	"github.com/dshills/assetpatch/internal/resolve"
	"github.com/dshills/assetpatch/internal/store"
)

// Errors returned by Apply.
var (
	// ErrTargetNotFound indicates the resolved target does not exist.
	ErrTargetNotFound = store.ErrTargetNotFound

	// ErrBackupOrWrite indicates the backup or the final write failed.
	ErrBackupOrWrite = errors.New("backup or write failed")

	// ErrAborted indicates a commit run stopped at a failing instruction
	// and nothing was written.
	ErrAborted = errors.New("commit aborted")

	// ErrNilDocument indicates Apply was called without a document.
	ErrNilDocument = errors.New("nil document")
)

// Options controls one Apply call.
type Options struct {
	Mode    interp.Mode
	Verbose bool
}

// Patcher applies documents through a file store.
type Patcher struct {
	store       store.FileStore
	resolver    resolve.Resolver
	interp      *interp.Interpreter
	log         *logger.Logger
	strictMarks bool
	backup      bool
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithResolver sets the resolver used for document targets.
func WithResolver(r resolve.Resolver) Option {
	return func(p *Patcher) {
		p.resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Patcher) {
		p.log = logger.OrNull(l).WithComponent("patcher")
		p.interp = interp.New(interp.WithLogger(l))
	}
}

// WithStrictMarks makes instructions staged for removal fail runs.
func WithStrictMarks(strict bool) Option {
	return func(p *Patcher) {
		p.strictMarks = strict
	}
}

// WithBackup enables or disables the backup taken before a commit write.
// Backups are enabled by default.
func WithBackup(enabled bool) Option {
	return func(p *Patcher) {
		p.backup = enabled
	}
}

// New creates a Patcher on fs.
func New(fs store.FileStore, opts ...Option) *Patcher {
	p := &Patcher{
		store:  fs,
		interp: interp.New(),
		log:    logger.NullLogger,
		backup: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve returns the path doc's target resolves to.
func (p *Patcher) Resolve(doc *patch.Document) string {
	return doc.ResolveTarget(p.resolver)
}

// Apply runs doc against its target.
//
// The returned report is non-nil whenever the target was read, including
// when an aborted commit or a failed write produces an error. A test run
// returns a nil error even when instructions fail; inspect Report.OK.
func (p *Patcher) Apply(doc *patch.Document, opts Options) (*Report, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Target:  doc.Target,
		Path:    p.Resolve(doc),
		Mode:    opts.Mode,
		Started: time.Now(),
	}
	log := p.log.WithFields(map[string]any{"run": report.RunID, "target": report.Path})

	content, err := p.store.ReadLines(report.Path)
	if err != nil {
		log.Error("read failed: %v", err)
		return nil, err
	}
	report.Original = content

	report.Result = p.interp.Apply(doc, content.Lines, interp.Options{
		Mode:        opts.Mode,
		Verbose:     opts.Verbose,
		StrictMarks: p.strictMarks,
	})
	defer func() { report.Finished = time.Now() }()

	if opts.Mode == interp.ModeTest {
		log.Info("test run: %d instructions, %d failures, %d warnings",
			report.Result.Executed, len(report.Result.Failures()), len(report.Result.Warnings()))
		return report, nil
	}

	if report.Result.Aborted {
		log.Warn("commit aborted at instruction %d", report.Result.AbortedAt)
		return report, fmt.Errorf("%w: %w", ErrAborted, report.Result.Err())
	}

	if p.backup {
		backup, err := p.store.Backup(report.Path)
		if err != nil {
			log.Error("backup failed: %v", err)
			return report, fmt.Errorf("%w: %w", ErrBackupOrWrite, err)
		}
		report.BackupPath = backup
	}

	if err := p.store.WriteLines(report.Path, content.WithLines(report.Result.Lines)); err != nil {
		log.Error("write failed: %v", err)
		return report, fmt.Errorf("%w: %w", ErrBackupOrWrite, err)
	}
	report.Written = true

	log.Info("committed %d instructions, backup %s", report.Result.Executed, report.BackupPath)
	return report, nil
}

// Test runs doc in test mode.
func (p *Patcher) Test(doc *patch.Document, verbose bool) (*Report, error) {
	return p.Apply(doc, Options{Mode: interp.ModeTest, Verbose: verbose})
}

// Commit runs doc in commit mode.
func (p *Patcher) Commit(doc *patch.Document, verbose bool) (*Report, error) {
	return p.Apply(doc, Options{Mode: interp.ModeCommit, Verbose: verbose})
}

// Check validates doc without running it.
func (p *Patcher) Check(doc *patch.Document) *CheckReport {
	path := p.Resolve(doc)
	return &CheckReport{
		Target:       doc.Target,
		Path:         path,
		TargetExists: p.store.Exists(path),
		Invalid:      doc.Validate(),
		Marked:       doc.Marked(),
	}
}
