package transfer

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"path"
	"sync"

	"resumeftp/internal/models"
)

var errInjected = errors.New("injected failure")

// fakeSession is an in-memory Session. Remote paths are absolute; relative
// names resolve against cwd.
type fakeSession struct {
	mu sync.Mutex

	files map[string][]byte
	dirs  map[string]bool
	cwd   string

	listing          map[string][]models.RemoteFile
	rejectCompletion bool
	failGetAfter     int
	failMakeDir      map[string]bool
	// gate, when set, blocks every get-stream read until closed
	gate chan struct{}

	binaryPassiveCalls int
	restartOffset      int64
	getOffsets         []int64
	putTargets         []string
	putOffsets         []int64
	putAppend          []bool
	changeDirs         []string
	madeDirs           []string
	confirmCalls       int

	pending   bool
	pendingOK bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		files:        make(map[string][]byte),
		dirs:         map[string]bool{"/": true},
		cwd:          "/",
		listing:      make(map[string][]models.RemoteFile),
		failGetAfter: -1,
		failMakeDir:  make(map[string]bool),
	}
}

func (f *fakeSession) resolve(name string) string {
	if path.IsAbs(name) {
		return path.Clean(name)
	}
	return path.Join(f.cwd, name)
}

func (f *fakeSession) EnterBinaryPassive() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.binaryPassiveCalls++
	return nil
}

func (f *fakeSession) List(p string) ([]models.RemoteFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entries, ok := f.listing[p]; ok {
		return entries, nil
	}
	full := f.resolve(p)
	data, ok := f.files[full]
	if !ok {
		return nil, nil
	}
	return []models.RemoteFile{{Name: path.Base(full), Path: full, Size: int64(len(data))}}, nil
}

func (f *fakeSession) CurrentDir() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cwd, nil
}

func (f *fakeSession) ChangeDir(dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changeDirs = append(f.changeDirs, dir)
	full := f.resolve(dir)
	if !f.dirs[full] {
		return errors.New("550 no such directory")
	}
	f.cwd = full
	return nil
}

func (f *fakeSession) MakeDir(dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.madeDirs = append(f.madeDirs, dir)
	full := f.resolve(dir)
	if f.failMakeDir[full] {
		return errors.New("550 permission denied")
	}
	f.dirs[full] = true
	return nil
}

func (f *fakeSession) SetRestartOffset(offset int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restartOffset = offset
}

func (f *fakeSession) OpenGetStream(name string, offset int64) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getOffsets = append(f.getOffsets, offset)
	data, ok := f.files[f.resolve(name)]
	if !ok {
		return nil, errors.New("550 file unavailable")
	}
	f.pending = false
	return &fakeGetStream{
		f:         f,
		r:         bytes.NewReader(data[offset:]),
		failAfter: f.failGetAfter,
		gate:      f.gate,
	}, nil
}

func (f *fakeSession) OpenPutStream(name string, offset int64, appendMode bool) (io.WriteCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	full := f.resolve(name)
	f.putTargets = append(f.putTargets, full)
	f.putOffsets = append(f.putOffsets, offset)
	f.putAppend = append(f.putAppend, appendMode)
	f.pending = false
	return &fakePutStream{f: f, name: full, appendMode: appendMode}, nil
}

func (f *fakeSession) ConfirmCompletion() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmCalls++
	ok := f.pending && f.pendingOK
	f.pending = false
	return ok
}

func (f *fakeSession) closed(transferOK bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = true
	f.pendingOK = transferOK && !f.rejectCompletion
}

func (f *fakeSession) file(name string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.files[name]...)
}

type fakeGetStream struct {
	f         *fakeSession
	r         *bytes.Reader
	failAfter int
	read      int
	gate      chan struct{}
	failed    bool
}

func (s *fakeGetStream) Read(p []byte) (int, error) {
	if s.gate != nil {
		<-s.gate
	}
	if s.failAfter >= 0 {
		remaining := s.failAfter - s.read
		if remaining <= 0 {
			s.failed = true
			return 0, errInjected
		}
		if len(p) > remaining {
			p = p[:remaining]
		}
	}
	n, err := s.r.Read(p)
	s.read += n
	return n, err
}

func (s *fakeGetStream) Close() error {
	s.f.closed(!s.failed && s.r.Len() == 0)
	return nil
}

type fakePutStream struct {
	f          *fakeSession
	name       string
	appendMode bool
	buf        bytes.Buffer
}

func (s *fakePutStream) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *fakePutStream) Close() error {
	s.f.mu.Lock()
	if s.appendMode {
		s.f.files[s.name] = append(s.f.files[s.name], s.buf.Bytes()...)
	} else {
		s.f.files[s.name] = append([]byte(nil), s.buf.Bytes()...)
	}
	s.f.mu.Unlock()
	s.f.closed(true)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func patterned(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}
