package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"resumeftp/internal/metrics"
)

// Upload sends localFile to remoteFile. knownRemoteSize is the size the
// caller last saw for remoteFile; a positive value resumes from that offset.
// Missing parent directories are created first, synchronously. As with
// Download, only ErrSessionBusy is returned directly.
func (e *Engine) Upload(ctx context.Context, remoteFile, localFile string, knownRemoteSize int64) (*Progress, error) {
	if !e.acquire() {
		return nil, ErrSessionBusy
	}

	p := newProgress(DirectionUpload, remoteFile, localFile)
	logger := e.logger.With("transfer_id", p.ID(), "direction", DirectionUpload, "remote", remoteFile, "local", localFile)

	spawned := false
	defer func() {
		if !spawned {
			e.release()
		}
	}()

	info, err := os.Stat(localFile)
	if err != nil {
		e.finish(p, StatusFailed, fmt.Errorf("%w: probe local file: %w", ErrIOFailure, err), logger)
		return p, nil
	}
	if info.IsDir() {
		e.finish(p, StatusFailed, fmt.Errorf("%w: local path %s is a directory", ErrIOFailure, localFile), logger)
		return p, nil
	}
	localSize := info.Size()
	if knownRemoteSize < 0 {
		knownRemoteSize = 0
	}
	if knownRemoteSize > localSize {
		p.setTotal(localSize)
		e.finish(p, StatusFailed,
			fmt.Errorf("%w: remote %d bytes, local %d bytes", ErrRemoteAheadOfLocal, knownRemoteSize, localSize), logger)
		return p, nil
	}

	if err := e.session.EnterBinaryPassive(); err != nil {
		e.finish(p, StatusFailed, fmt.Errorf("%w: set binary passive mode: %w", ErrIOFailure, err), logger)
		return p, nil
	}

	origin, err := e.session.CurrentDir()
	if err != nil {
		logger.Warn("Could not read working directory, it will not be restored", "error", err)
		origin = ""
	}

	remoteTarget := remoteFile
	if !path.IsAbs(remoteTarget) && origin != "" {
		remoteTarget = path.Join(origin, remoteTarget)
	}

	walk, err := NewDirectoryCreator(e.session, logger).Ensure(remoteTarget)
	if err != nil {
		e.restoreDir(origin, logger)
		e.finish(p, StatusFailed, err, logger)
		return p, nil
	}

	resumed := knownRemoteSize > 0
	p.prepare(localSize, knownRemoteSize, resumed)

	if knownRemoteSize == localSize && resumed {
		e.restoreDir(origin, logger)
		e.finish(p, StatusCompleted, nil, logger)
		return p, nil
	}

	// after the walk the working directory is the parent, so a path still
	// relative must be addressed by its base name
	target := remoteTarget
	if !path.IsAbs(target) && len(walk.Segments) > 0 {
		target = path.Base(target)
	}

	metrics.TransfersStartedTotal.WithLabelValues(string(DirectionUpload), startMode(resumed)).Inc()
	logger.Info("Starting upload", "local_size", localSize, "offset", knownRemoteSize)

	spawned = true
	go e.runUpload(ctx, p, target, localFile, knownRemoteSize, origin, logger)
	return p, nil
}

func (e *Engine) runUpload(ctx context.Context, p *Progress, target, localFile string, offset int64, origin string, logger *slog.Logger) {
	active := metrics.ActiveTransfers.WithLabelValues(string(DirectionUpload))
	active.Inc()

	status, err := e.copyUpload(ctx, p, target, localFile, offset, logger)

	e.restoreDir(origin, logger)
	active.Dec()
	e.release()
	e.finish(p, status, err, logger)
}

func (e *Engine) copyUpload(ctx context.Context, p *Progress, target, localFile string, offset int64, logger *slog.Logger) (Status, error) {
	in, err := os.Open(localFile)
	if err != nil {
		return StatusFailed, fmt.Errorf("%w: open local file: %w", ErrIOFailure, err)
	}
	defer closeQuietly(in, "local", logger)

	if offset > 0 {
		e.session.SetRestartOffset(offset)
		if _, err := in.Seek(offset, io.SeekStart); err != nil {
			return StatusFailed, fmt.Errorf("%w: seek local file to %d: %w", ErrIOFailure, offset, err)
		}
	}

	out, err := e.session.OpenPutStream(target, offset, true)
	if err != nil {
		return StatusFailed, fmt.Errorf("%w: open put stream: %w", ErrIOFailure, err)
	}

	p.run()
	copyErr := e.pump(ctx, out, in, p, logger)

	closeQuietly(out, "remote", logger)
	confirmed := e.session.ConfirmCompletion()

	switch {
	case copyErr != nil:
		return StatusFailed, copyErr
	case !confirmed:
		return StatusFailed, ErrServerRejectedCompletion
	}
	return StatusCompleted, nil
}

func (e *Engine) restoreDir(origin string, logger *slog.Logger) {
	if origin == "" {
		return
	}
	if err := e.session.ChangeDir(origin); err != nil {
		logger.Warn("Failed to restore working directory", "dir", origin, "error", err)
	}
}
