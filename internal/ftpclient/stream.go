package ftpclient

import (
	"io"
	"sync"
)

// getStream wraps a retrieve response. Closing it reads the server's final
// reply, which is handed to record instead of being returned.
type getStream struct {
	rc     io.ReadCloser
	record func(error)
	once   sync.Once
}

func newGetStream(rc io.ReadCloser, record func(error)) *getStream {
	return &getStream{rc: rc, record: record}
}

func (g *getStream) Read(p []byte) (int, error) {
	return g.rc.Read(p)
}

func (g *getStream) Close() error {
	g.once.Do(func() {
		g.record(g.rc.Close())
	})
	return nil
}

// putStream turns the library's reader-driven store into a writer. store
// runs in its own goroutine reading from a pipe until Close.
type putStream struct {
	pw     *io.PipeWriter
	done   chan error
	record func(error)
	once   sync.Once
}

func newPutStream(store func(io.Reader) error, record func(error)) *putStream {
	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		err := store(pr)
		// unblock a writer if the server stopped reading early
		if err != nil {
			pr.CloseWithError(err)
		} else {
			pr.Close()
		}
		done <- err
	}()
	return &putStream{pw: pw, done: done, record: record}
}

func (s *putStream) Write(p []byte) (int, error) {
	return s.pw.Write(p)
}

func (s *putStream) Close() error {
	s.once.Do(func() {
		s.pw.Close()
		s.record(<-s.done)
	})
	return nil
}
