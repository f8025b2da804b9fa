package transfer

import "errors"

// UploadStatus is the outcome of an upload split by whether it resumed.
type UploadStatus uint8

const (
	UploadInProgress UploadStatus = iota
	UploadNewFileSuccess
	UploadNewFileFailed
	UploadFromBreakSuccess
	UploadFromBreakFailed
	UploadDirectoryCreateFailed
)

var uploadStatusNames = map[UploadStatus]string{
	UploadInProgress:            "upload_in_progress",
	UploadNewFileSuccess:        "upload_new_file_success",
	UploadNewFileFailed:         "upload_new_file_failed",
	UploadFromBreakSuccess:      "upload_from_break_success",
	UploadFromBreakFailed:       "upload_from_break_failed",
	UploadDirectoryCreateFailed: "create_directory_failed",
}

func (s UploadStatus) String() string {
	return uploadStatusNames[s]
}

// UploadStatus maps an upload handle onto the resumed/fresh outcome table.
func (p *Progress) UploadStatus() UploadStatus {
	snap := p.Snapshot()
	switch {
	case !snap.Status.Terminal():
		return UploadInProgress
	case errors.Is(snap.Err, ErrDirectoryCreateFailed):
		return UploadDirectoryCreateFailed
	case snap.Resumed && snap.Status == StatusCompleted:
		return UploadFromBreakSuccess
	case snap.Resumed:
		return UploadFromBreakFailed
	case snap.Status == StatusCompleted:
		return UploadNewFileSuccess
	default:
		return UploadNewFileFailed
	}
}

// DownloadStatus is the outcome of a download split by whether it resumed.
type DownloadStatus uint8

const (
	DownloadInProgress DownloadStatus = iota
	DownloadNewSuccess
	DownloadNewFailed
	DownloadFromBreakSuccess
	DownloadFromBreakFailed
	DownloadLocalBiggerThanRemote
	DownloadRemoteFileMissing
)

var downloadStatusNames = map[DownloadStatus]string{
	DownloadInProgress:            "download_in_progress",
	DownloadNewSuccess:            "download_new_success",
	DownloadNewFailed:             "download_new_failed",
	DownloadFromBreakSuccess:      "download_from_break_success",
	DownloadFromBreakFailed:       "download_from_break_failed",
	DownloadLocalBiggerThanRemote: "local_bigger_than_remote",
	DownloadRemoteFileMissing:     "remote_file_missing",
}

func (s DownloadStatus) String() string {
	return downloadStatusNames[s]
}

func (p *Progress) DownloadStatus() DownloadStatus {
	snap := p.Snapshot()
	switch {
	case !snap.Status.Terminal():
		return DownloadInProgress
	case snap.Status == StatusRemoteMissing:
		return DownloadRemoteFileMissing
	case snap.Status == StatusLocalAlreadyComplete:
		return DownloadLocalBiggerThanRemote
	case snap.Resumed && snap.Status == StatusCompleted:
		return DownloadFromBreakSuccess
	case snap.Resumed:
		return DownloadFromBreakFailed
	case snap.Status == StatusCompleted:
		return DownloadNewSuccess
	default:
		return DownloadNewFailed
	}
}

// Outcome names the direction-specific result of a handle.
func (p *Progress) Outcome() string {
	if p.Direction() == DirectionUpload {
		return p.UploadStatus().String()
	}
	return p.DownloadStatus().String()
}
