package cmd

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/schollz/progressbar/v3"

	"resumeftp/internal/models"
	"resumeftp/internal/transfer"
	"resumeftp/pkg/utils"
)

const pollInterval = 200 * time.Millisecond

// watchProgress renders p on w until it reaches a terminal status. The bar
// starts at the resume offset and advances by the polled deltas. Callers
// still wait on p.Done().
func watchProgress(w io.Writer, p *transfer.Progress, operation string) {
	snap := p.Snapshot()
	if snap.Status.Terminal() || snap.TotalSize <= 0 {
		return
	}

	bar := progressbar.NewOptions64(snap.TotalSize,
		progressbar.OptionSetDescription(fmt.Sprintf("%s %s", operation, path.Base(snap.RemotePath))),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)
	_ = bar.Set64(snap.StartOffset)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.Done():
			_ = bar.Add64(p.CurrentDelta())
			if p.Status() == transfer.StatusCompleted {
				_ = bar.Finish()
			}
			fmt.Fprintln(w)
			return
		case <-ticker.C:
			_ = bar.Add64(p.CurrentDelta())
		}
	}
}

// newTransferResult summarizes a terminal handle for JSON output.
func newTransferResult(host string, p *transfer.Progress) models.TransferResult {
	snap := p.Snapshot()
	result := models.TransferResult{
		ID:               snap.ID,
		Host:             host,
		Direction:        string(snap.Direction),
		RemotePath:       snap.RemotePath,
		LocalPath:        snap.LocalPath,
		Status:           snap.Status.String(),
		Outcome:          p.Outcome(),
		Resumed:          snap.Resumed,
		StartOffset:      snap.StartOffset,
		TotalSizeBytes:   snap.TotalSize,
		TotalSizeHuman:   utils.FormatBytes(snap.TotalSize),
		TransferredBytes: snap.Transferred,
		Percentage:       snap.Percentage,
		OperationTime:    utils.FormatTime(snap.CreatedAt),
	}
	if snap.Err != nil {
		result.Error = snap.Err.Error()
	}
	if !snap.FinishedAt.IsZero() {
		result.Duration = snap.FinishedAt.Sub(snap.CreatedAt).Round(time.Millisecond).String()
	}
	return result
}
