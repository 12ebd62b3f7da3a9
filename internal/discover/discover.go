// Package discover walks a test tree and yields the test artifacts in it.
package discover

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/emberjson/runtests/internal/errors"
	"github.com/emberjson/runtests/internal/model"
)

// DefaultSuffix is the test-file suffix used when none is configured.
const DefaultSuffix = ".mojo"

// ErrConsumed is the cause of the discovery error yielded when a Sequence is iterated twice.
var ErrConsumed = stderrors.New("artifact sequence already consumed")

// Options controls which files are treated as test artifacts.
type Options struct {
	// Suffix is the designated test-file suffix. Empty means DefaultSuffix.
	Suffix string

	// Exclude holds doublestar patterns matched against root-relative slash paths.
	// Matching directories are pruned; matching files are skipped.
	Exclude []string
}

// Validate checks that every exclude pattern is well-formed.
func (o Options) Validate() error {
	for _, p := range o.Exclude {
		if !doublestar.ValidatePattern(p) {
			return errors.Configf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

func (o Options) suffix() string {
	if o.Suffix == "" {
		return DefaultSuffix
	}
	return o.Suffix
}

func (o Options) excluded(rel string) bool {
	for _, p := range o.Exclude {
		// Patterns were validated up front, so the error is always nil.
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Sequence is a lazy, finite, non-restartable sequence of artifacts.
type Sequence struct {
	root     string
	opts     Options
	consumed atomic.Bool
}

// Discover validates root and returns the artifact sequence under it.
// A missing, unreadable, or non-directory root is a discovery error,
// reported before any artifact is yielded.
func Discover(root string, opts Options) (*Sequence, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Discovery(root, err)
	}
	if !info.IsDir() {
		return nil, errors.Discovery(root, fmt.Errorf("%s is not a directory", root))
	}
	// Stat succeeds on directories we cannot list; open it to catch that early.
	f, err := os.Open(root)
	if err != nil {
		return nil, errors.Discovery(root, err)
	}
	_, err = f.ReadDir(1)
	f.Close()
	if err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Discovery(root, err)
	}

	return &Sequence{root: root, opts: opts}, nil
}

// Root returns the discovery root.
func (s *Sequence) Root() string {
	return s.root
}

// All walks the tree in lexical order, yielding each artifact exactly once.
// Directories are traversed but never yielded. A walk failure is yielded
// as a discovery error and ends the sequence. Iterating a second time
// yields a single error wrapping ErrConsumed.
func (s *Sequence) All() iter.Seq2[model.Artifact, error] {
	return func(yield func(model.Artifact, error) bool) {
		if !s.consumed.CompareAndSwap(false, true) {
			yield(model.Artifact{}, errors.Discovery(s.root, ErrConsumed))
			return
		}

		suffix := s.opts.suffix()
		stopped := false

		err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			rel, relErr := filepath.Rel(s.root, path)
			if relErr != nil {
				return relErr
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if rel != "." && s.opts.excluded(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !strings.HasSuffix(d.Name(), suffix) || s.opts.excluded(rel) {
				return nil
			}

			if !yield(model.Artifact{Path: path, Rel: rel}, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})

		if err != nil && !stopped {
			yield(model.Artifact{}, errors.Discovery(s.root, err))
		}
	}
}

// Collect drains the sequence into a slice.
func (s *Sequence) Collect() ([]model.Artifact, error) {
	var artifacts []model.Artifact
	for a, err := range s.All() {
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}
