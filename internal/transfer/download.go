package transfer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"

	"resumeftp/internal/metrics"
	"resumeftp/internal/models"
)

// Download copies remotePath into localPath, resuming from the local length
// when a shorter local file exists. Remote lookup and local probing happen
// before it returns; the copy runs in a background goroutine. The only
// error returned directly is ErrSessionBusy; every other failure is reported
// as a terminal status on the returned handle.
func (e *Engine) Download(ctx context.Context, remotePath, localPath string) (*Progress, error) {
	if !e.acquire() {
		return nil, ErrSessionBusy
	}

	p := newProgress(DirectionDownload, remotePath, localPath)
	logger := e.logger.With("transfer_id", p.ID(), "direction", DirectionDownload, "remote", remotePath, "local", localPath)

	spawned := false
	defer func() {
		if !spawned {
			e.release()
		}
	}()

	if err := e.session.EnterBinaryPassive(); err != nil {
		e.finish(p, StatusFailed, fmt.Errorf("%w: set binary passive mode: %w", ErrIOFailure, err), logger)
		return p, nil
	}

	entries, err := e.session.List(remotePath)
	if err != nil {
		e.finish(p, StatusFailed, fmt.Errorf("%w: list %s: %w", ErrIOFailure, remotePath, err), logger)
		return p, nil
	}

	remote, matches := matchRemoteFile(entries, remotePath)
	if matches != 1 {
		e.finish(p, StatusRemoteMissing, fmt.Errorf("%w: %s matched %d entries", ErrRemoteMissing, remotePath, matches), logger)
		return p, nil
	}

	var offset int64
	info, err := os.Stat(localPath)
	switch {
	case err == nil && info.IsDir():
		e.finish(p, StatusFailed, fmt.Errorf("%w: local path %s is a directory", ErrIOFailure, localPath), logger)
		return p, nil
	case err == nil && info.Size() >= remote.Size:
		p.setTotal(remote.Size)
		e.finish(p, StatusLocalAlreadyComplete,
			fmt.Errorf("%w: local %d bytes, remote %d bytes", ErrLocalAheadOfRemote, info.Size(), remote.Size), logger)
		return p, nil
	case err == nil:
		offset = info.Size()
	case errors.Is(err, fs.ErrNotExist):
		offset = 0
	default:
		e.finish(p, StatusFailed, fmt.Errorf("%w: probe local file: %w", ErrIOFailure, err), logger)
		return p, nil
	}

	p.prepare(remote.Size, offset, offset > 0)
	metrics.TransfersStartedTotal.WithLabelValues(string(DirectionDownload), startMode(offset > 0)).Inc()
	logger.Info("Starting download", "remote_size", remote.Size, "offset", offset)

	spawned = true
	go e.runDownload(ctx, p, remotePath, localPath, offset, logger)
	return p, nil
}

func (e *Engine) runDownload(ctx context.Context, p *Progress, remotePath, localPath string, offset int64, logger *slog.Logger) {
	active := metrics.ActiveTransfers.WithLabelValues(string(DirectionDownload))
	active.Inc()

	status, err := e.copyDownload(ctx, p, remotePath, localPath, offset, logger)

	active.Dec()
	e.release()
	e.finish(p, status, err, logger)
}

func (e *Engine) copyDownload(ctx context.Context, p *Progress, remotePath, localPath string, offset int64, logger *slog.Logger) (Status, error) {
	in, err := e.session.OpenGetStream(remotePath, offset)
	if err != nil {
		return StatusFailed, fmt.Errorf("%w: open get stream at %d: %w", ErrIOFailure, offset, err)
	}

	var out *os.File
	if offset > 0 {
		out, err = os.OpenFile(localPath, os.O_WRONLY|os.O_APPEND, 0)
	} else {
		out, err = os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	}
	if err != nil {
		closeQuietly(in, "remote", logger)
		e.session.ConfirmCompletion()
		return StatusFailed, fmt.Errorf("%w: open local file: %w", ErrIOFailure, err)
	}

	p.run()
	copyErr := e.pump(ctx, out, in, p, logger)

	// the local file is kept on every path so a later call can resume it
	localCloseErr := out.Close()
	closeQuietly(in, "remote", logger)
	confirmed := e.session.ConfirmCompletion()

	switch {
	case copyErr != nil:
		return StatusFailed, copyErr
	case localCloseErr != nil:
		return StatusFailed, fmt.Errorf("%w: close local file: %w", ErrIOFailure, localCloseErr)
	case !confirmed:
		return StatusFailed, ErrServerRejectedCompletion
	}
	return StatusCompleted, nil
}

// matchRemoteFile returns the single regular file in entries named like
// remotePath, and how many entries matched.
func matchRemoteFile(entries []models.RemoteFile, remotePath string) (models.RemoteFile, int) {
	want := path.Base(remotePath)
	var match models.RemoteFile
	count := 0
	for _, entry := range entries {
		if entry.IsDir || path.Base(entry.Name) != want {
			continue
		}
		match = entry
		count++
	}
	return match, count
}

// RemoteSize returns the size of the single regular file remotePath names.
// ok is false when the listing has no such file or more than one.
func (e *Engine) RemoteSize(remotePath string) (size int64, ok bool, err error) {
	if !e.acquire() {
		return 0, false, ErrSessionBusy
	}
	defer e.release()

	entries, err := e.session.List(remotePath)
	if err != nil {
		return 0, false, fmt.Errorf("%w: list %s: %w", ErrIOFailure, remotePath, err)
	}
	entry, matches := matchRemoteFile(entries, remotePath)
	if matches != 1 {
		return 0, false, nil
	}
	return entry.Size, true, nil
}
