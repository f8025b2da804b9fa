package transfer

import "errors"

var (
	ErrRemoteMissing            = errors.New("remote file missing or ambiguous")
	ErrLocalAheadOfRemote       = errors.New("local file is not smaller than remote file")
	ErrRemoteAheadOfLocal       = errors.New("remote file is larger than local file")
	ErrDirectoryCreateFailed    = errors.New("remote directory create failed")
	ErrIOFailure                = errors.New("transfer I/O failure")
	ErrServerRejectedCompletion = errors.New("server rejected transfer completion")
	// ErrSessionBusy is returned when a transfer is already in flight on the
	// engine's session; the control channel carries one transfer at a time.
	ErrSessionBusy = errors.New("session already has a transfer in flight")
)
