package ftpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"

	"resumeftp/internal/models"
)

// State is the connection state of a Session.
type State uint8

const (
	StateDisconnected State = iota
	StateConnected
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

type Options struct {
	Timeout     time.Duration
	DisableEPSV bool
	Logger      *slog.Logger
}

// Session owns one FTP control connection. Only one data stream may be open
// at a time; callers serialize transfers (see transfer.Engine).
type Session struct {
	conn        *ftp.ServerConn
	addr        string
	disableEPSV bool
	logger      *slog.Logger

	mu         sync.Mutex
	state      State
	failedCode int
	restart    int64
	hasPending bool
	pendingErr error
}

// Connect dials host:port and logs in. On failure nothing is left open and
// the returned error is a *ConnectError matching ErrConnectionRefused or
// ErrAuthFailed.
func Connect(ctx context.Context, host string, port int, user, pass string, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	dialOpts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithDisabledEPSV(opts.DisableEPSV),
	}
	if opts.Timeout > 0 {
		dialOpts = append(dialOpts, ftp.DialWithTimeout(opts.Timeout))
	}

	conn, err := ftp.Dial(addr, dialOpts...)
	if err != nil {
		logger.Error("FTP dial failed", "addr", addr, "error", err)
		return nil, &ConnectError{Kind: ErrConnectionRefused, Addr: addr, Code: replyCode(err), Err: err}
	}

	if err := conn.Login(user, pass); err != nil {
		code := replyCode(err)
		logger.Error("FTP login failed", "addr", addr, "user", user, "code", code)
		if quitErr := conn.Quit(); quitErr != nil {
			logger.Warn("FTP quit after failed login", "addr", addr, "error", quitErr)
		}
		return nil, &ConnectError{Kind: ErrAuthFailed, Addr: addr, Code: code, Err: err}
	}

	logger.Info("FTP session authenticated", "addr", addr, "user", user)
	return &Session{
		conn:        conn,
		addr:        addr,
		disableEPSV: opts.DisableEPSV,
		logger:      logger,
		state:       StateAuthenticated,
	}, nil
}

func (s *Session) Addr() string { return s.addr }

// State returns the connection state and, for StateFailed, the reply code
// that caused it.
func (s *Session) State() (State, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.failedCode
}

// usable returns ErrNotConnected once the session was closed.
func (s *Session) usable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.state == StateDisconnected {
		return ErrNotConnected
	}
	return nil
}

func (s *Session) fail(err error) error {
	if err == nil {
		return nil
	}
	if code := replyCode(err); code == 0 || code == 421 {
		// transport loss or service closing, the control channel is gone
		s.mu.Lock()
		s.state = StateFailed
		s.failedCode = code
		s.mu.Unlock()
	}
	return err
}

// EnterBinaryPassive sets TYPE I. The library always opens data connections
// passively, via EPSV unless disabled, then PASV.
func (s *Session) EnterBinaryPassive() error {
	if err := s.usable(); err != nil {
		return err
	}
	if err := s.conn.Type(ftp.TransferTypeBinary); err != nil {
		return s.fail(fmt.Errorf("set binary type: %w", err))
	}
	s.logger.Debug("Binary passive mode", "addr", s.addr, "epsv", !s.disableEPSV)
	return nil
}

// List returns the entries for remotePath. A path the server reports as
// unavailable yields an empty listing.
func (s *Session) List(remotePath string) ([]models.RemoteFile, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	entries, err := s.conn.List(remotePath)
	if replyCode(err) == ftp.StatusFileUnavailable {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail(fmt.Errorf("list %s: %w", remotePath, err))
	}

	files := make([]models.RemoteFile, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		files = append(files, models.RemoteFile{
			Name:    path.Base(entry.Name),
			Path:    entryPath(remotePath, entry.Name),
			Size:    int64(entry.Size),
			IsDir:   entry.Type == ftp.EntryTypeFolder,
			ModTime: entry.Time,
		})
	}
	return files, nil
}

// entryPath resolves a listed name against the listed path: listing a file
// returns the file itself, listing a directory returns its children.
func entryPath(listed, name string) string {
	if path.IsAbs(name) {
		return name
	}
	if listed == "" {
		return name
	}
	if path.Base(listed) == path.Base(name) {
		return listed
	}
	return path.Join(listed, name)
}

func (s *Session) CurrentDir() (string, error) {
	dir, err := s.conn.CurrentDir()
	if err != nil {
		return "", s.fail(fmt.Errorf("current dir: %w", err))
	}
	return dir, nil
}

func (s *Session) ChangeDir(dir string) error {
	return s.fail(s.conn.ChangeDir(dir))
}

func (s *Session) MakeDir(dir string) error {
	return s.fail(s.conn.MakeDir(dir))
}

func (s *Session) SetRestartOffset(offset int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restart = offset
}

// takeOffset returns offset, or the recorded restart offset when offset is
// zero, and clears the recorded one.
func (s *Session) takeOffset(offset int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset == 0 {
		offset = s.restart
	}
	s.restart = 0
	s.hasPending = false
	s.pendingErr = nil
	if offset < 0 {
		offset = 0
	}
	return uint64(offset)
}

func (s *Session) OpenGetStream(name string, offset int64) (io.ReadCloser, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	resp, err := s.conn.RetrFrom(name, s.takeOffset(offset))
	if err != nil {
		return nil, s.fail(fmt.Errorf("retrieve %s: %w", name, err))
	}
	return newGetStream(resp, s.recordCompletion), nil
}

// OpenPutStream stores into name. In append mode the server appends to the
// existing file (APPE) and offset only documents where the bytes land;
// otherwise the data is written from offset (REST + STOR).
func (s *Session) OpenPutStream(name string, offset int64, appendMode bool) (io.WriteCloser, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	start := s.takeOffset(offset)
	store := func(r io.Reader) error {
		if appendMode {
			return s.conn.Append(name, r)
		}
		return s.conn.StorFrom(name, r, start)
	}
	return newPutStream(store, s.recordCompletion), nil
}

func (s *Session) recordCompletion(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasPending = true
	s.pendingErr = err
}

// ConfirmCompletion reports whether the server accepted the transfer of the
// last closed stream. It returns false when no closed stream is pending.
func (s *Session) ConfirmCompletion() bool {
	s.mu.Lock()
	pending, err := s.hasPending, s.pendingErr
	s.hasPending = false
	s.pendingErr = nil
	s.mu.Unlock()

	if !pending {
		return false
	}
	if err != nil {
		s.logger.Warn("Server rejected transfer", "addr", s.addr, "code", replyCode(err), "error", err)
		return false
	}
	return true
}

// Close quits the control connection if it is open.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.state == StateDisconnected {
		return nil
	}
	s.state = StateDisconnected
	if err := s.conn.Quit(); err != nil {
		return fmt.Errorf("quit %s: %w", s.addr, err)
	}
	return nil
}
