package transfer

import (
	"io"

	"resumeftp/internal/models"
)

// DirectoryWalker is the part of a session the directory creator needs.
type DirectoryWalker interface {
	ChangeDir(path string) error
	MakeDir(path string) error
}

// Session is the protocol client an Engine drives. Implementations own one
// control connection and are not required to support concurrent transfers.
type Session interface {
	DirectoryWalker

	// EnterBinaryPassive switches to binary transfers over passive data connections.
	EnterBinaryPassive() error
	List(path string) ([]models.RemoteFile, error)
	CurrentDir() (string, error)
	// SetRestartOffset records the offset the next put stream starts at.
	SetRestartOffset(offset int64)
	// OpenGetStream reads name starting at offset; 0 reads from the start.
	OpenGetStream(name string, offset int64) (io.ReadCloser, error)
	OpenPutStream(name string, offset int64, appendMode bool) (io.WriteCloser, error)
	// ConfirmCompletion reports whether the server accepted the data transfer
	// whose stream was closed last. Call it once per closed stream.
	ConfirmCompletion() bool
}
