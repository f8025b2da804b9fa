package transfer

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"resumeftp/internal/metrics"
)

// DirectoryCreator makes sure every ancestor directory of a remote path
// exists, creating missing ones in order.
type DirectoryCreator struct {
	walker DirectoryWalker
	logger *slog.Logger
}

// EnsureResult lists the directory prefixes visited and the ones created.
type EnsureResult struct {
	Segments []string
	Created  []string
}

func NewDirectoryCreator(walker DirectoryWalker, logger *slog.Logger) *DirectoryCreator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryCreator{walker: walker, logger: logger}
}

// Ensure walks the parent directories of remotePath: everything before the
// last "/". For each prefix it changes into it, creating it first when the
// change fails. The walk stops at the first prefix that can be neither
// entered nor created. On return the working directory is the deepest
// prefix reached. Rooted paths are walked by absolute prefix; relative ones
// one component at a time from the current working directory.
func (d *DirectoryCreator) Ensure(remotePath string) (EnsureResult, error) {
	result := EnsureResult{Segments: DirectorySegments(remotePath)}
	rooted := strings.HasPrefix(remotePath, "/")

	for _, dir := range result.Segments {
		step := dir
		if !rooted {
			step = path.Base(dir)
		}

		if err := d.walker.ChangeDir(step); err == nil {
			continue
		}
		if err := d.walker.MakeDir(step); err != nil {
			d.logger.Error("Failed to create remote directory", "dir", dir, "error", err)
			return result, fmt.Errorf("%w: %s: %w", ErrDirectoryCreateFailed, dir, err)
		}
		if err := d.walker.ChangeDir(step); err != nil {
			return result, fmt.Errorf("%w: enter created %s: %w", ErrDirectoryCreateFailed, dir, err)
		}
		metrics.DirectoriesCreatedTotal.Inc()
		d.logger.Debug("Created remote directory", "dir", dir)
		result.Created = append(result.Created, dir)
	}

	return result, nil
}

// DirectorySegments returns the cumulative directory prefixes of the parent
// of remotePath in one pass. "/a/b/c/file.txt" yields "/a", "/a/b", "/a/b/c";
// "a/b/file.txt" yields "a", "a/b". Empty components are skipped and a parent
// that resolves to the root yields nothing.
func DirectorySegments(remotePath string) []string {
	cut := strings.LastIndex(remotePath, "/")
	if cut < 0 {
		return nil
	}
	parent := remotePath[:cut]
	rooted := strings.HasPrefix(remotePath, "/")

	var segments []string
	var prefix strings.Builder
	if rooted {
		prefix.WriteString("/")
	}
	for _, part := range strings.Split(parent, "/") {
		if part == "" || part == "." {
			continue
		}
		if len(segments) > 0 {
			prefix.WriteString("/")
		}
		prefix.WriteString(part)
		segments = append(segments, prefix.String())
	}
	return segments
}
