package transfer

// Status is the lifecycle state of a transfer. Pending and Running are the
// only non-terminal states; once terminal a status never changes.
type Status uint8

const (
	// StatusPending means the handle was returned but the worker has not started copying.
	StatusPending Status = iota
	// StatusRunning means bytes are flowing.
	StatusRunning
	// StatusCompleted means the copy finished and the server confirmed it.
	StatusCompleted
	// StatusFailed means the attempt ended with an error; see Progress.Err.
	StatusFailed
	// StatusLocalAlreadyComplete means the local file was at least as large as the remote one.
	StatusLocalAlreadyComplete
	// StatusRemoteMissing means the remote path did not match exactly one file.
	StatusRemoteMissing
)

var statusNames = map[Status]string{
	StatusPending:              "pending",
	StatusRunning:              "running",
	StatusCompleted:            "completed",
	StatusFailed:               "failed",
	StatusLocalAlreadyComplete: "local_already_complete",
	StatusRemoteMissing:        "remote_missing",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s >= StatusCompleted && s <= StatusRemoteMissing
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Direction tells which way bytes flow.
type Direction string

const (
	DirectionDownload Direction = "download"
	DirectionUpload   Direction = "upload"
)
