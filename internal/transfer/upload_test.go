package transfer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocal(t *testing.T, data []byte) string {
	t.Helper()
	local := filepath.Join(t.TempDir(), "upload.bin")
	require.NoError(t, os.WriteFile(local, data, 0o644))
	return local
}

func TestUploadNewFileCreatesDirectories(t *testing.T) {
	data := patterned(20000)
	local := writeLocal(t, data)
	session := newFakeSession()

	p, err := newTestEngine(session).Upload(context.Background(), "/up/dir/file.bin", local, 0)
	require.NoError(t, err)
	waitDone(t, p)

	assert.Equal(t, StatusCompleted, p.Status())
	assert.Equal(t, UploadNewFileSuccess, p.UploadStatus())
	assert.False(t, p.Resumed())
	assert.Equal(t, []string{"/up", "/up/dir"}, session.madeDirs)
	assert.Equal(t, []string{"/up/dir/file.bin"}, session.putTargets)
	assert.Equal(t, []int64{0}, session.putOffsets)
	assert.Equal(t, []bool{true}, session.putAppend)
	assert.Equal(t, int64(0), session.restartOffset)
	assert.Equal(t, data, session.file("/up/dir/file.bin"))
	assert.Equal(t, "/", session.cwd, "working directory is restored")
	assert.InDelta(t, 100.0, p.Percentage(), 1e-9)
	assert.Equal(t, int64(len(data)), p.CurrentDelta())
}

func TestUploadResumesFromKnownRemoteSize(t *testing.T) {
	const localSize = 10000
	const remoteSize = 6000

	data := patterned(localSize)
	local := writeLocal(t, data)
	session := newFakeSession()
	session.files["/f.bin"] = append([]byte(nil), data[:remoteSize]...)

	p, err := newTestEngine(session, WithChunkSize(512)).Upload(context.Background(), "/f.bin", local, remoteSize)
	require.NoError(t, err)
	assert.Equal(t, int64(localSize), p.TotalSize())
	waitDone(t, p)

	assert.Equal(t, StatusCompleted, p.Status())
	assert.True(t, p.Resumed())
	assert.Equal(t, UploadFromBreakSuccess, p.UploadStatus())
	assert.Equal(t, "upload_from_break_success", p.Outcome())
	assert.Equal(t, int64(remoteSize), session.restartOffset)
	assert.Equal(t, []int64{remoteSize}, session.putOffsets)
	assert.Equal(t, int64(localSize-remoteSize), p.CurrentDelta(), "only the tail is streamed")
	assert.Equal(t, data, session.file("/f.bin"))
	assert.Equal(t, 1, session.confirmCalls)
}

func TestUploadRemoteAlreadyComplete(t *testing.T) {
	data := patterned(300)
	local := writeLocal(t, data)
	session := newFakeSession()
	session.files["/f.bin"] = append([]byte(nil), data...)

	p, err := newTestEngine(session).Upload(context.Background(), "/f.bin", local, 300)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, p.Status())
	assert.InDelta(t, 100.0, p.Percentage(), 1e-9)
	assert.Empty(t, session.putTargets, "no put stream may be opened")
	assert.Equal(t, 0, session.confirmCalls)
}

func TestUploadRemoteAheadOfLocal(t *testing.T) {
	local := writeLocal(t, patterned(100))
	session := newFakeSession()

	p, err := newTestEngine(session).Upload(context.Background(), "/f.bin", local, 150)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, p.Status())
	assert.ErrorIs(t, p.Err(), ErrRemoteAheadOfLocal)
	assert.Empty(t, session.putTargets)
	assert.Equal(t, 0, session.binaryPassiveCalls)
}

func TestUploadSmallFile(t *testing.T) {
	data := patterned(42)
	local := writeLocal(t, data)
	session := newFakeSession()

	p, err := newTestEngine(session).Upload(context.Background(), "/tiny.bin", local, 0)
	require.NoError(t, err)
	waitDone(t, p)

	assert.Equal(t, StatusCompleted, p.Status())
	assert.InDelta(t, 100.0, p.Percentage(), 1e-9)
	assert.Equal(t, data, session.file("/tiny.bin"))
}

func TestUploadDirectoryCreateFailure(t *testing.T) {
	local := writeLocal(t, patterned(100))
	session := newFakeSession()
	session.failMakeDir["/locked"] = true

	engine := newTestEngine(session)
	p, err := engine.Upload(context.Background(), "/locked/sub/f.bin", local, 0)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, p.Status())
	assert.ErrorIs(t, p.Err(), ErrDirectoryCreateFailed)
	assert.Equal(t, UploadDirectoryCreateFailed, p.UploadStatus())
	assert.Equal(t, "create_directory_failed", p.Outcome())
	assert.Empty(t, session.putTargets)
	assert.NotContains(t, session.madeDirs, "/locked/sub")

	// the session is released after a synchronous failure
	p, err = engine.Upload(context.Background(), "/open/f.bin", local, 0)
	require.NoError(t, err)
	waitDone(t, p)
	assert.Equal(t, StatusCompleted, p.Status())
}

func TestUploadRelativePathResolvesAgainstWorkingDirectory(t *testing.T) {
	data := patterned(1000)
	local := writeLocal(t, data)
	session := newFakeSession()
	session.dirs["/home"] = true
	session.cwd = "/home"

	p, err := newTestEngine(session).Upload(context.Background(), "a/b/f.bin", local, 0)
	require.NoError(t, err)
	waitDone(t, p)

	assert.Equal(t, StatusCompleted, p.Status())
	assert.Equal(t, []string{"/home/a", "/home/a/b"}, session.madeDirs)
	assert.Equal(t, []string{"/home/a/b/f.bin"}, session.putTargets)
	assert.Equal(t, data, session.file("/home/a/b/f.bin"))
	assert.Equal(t, "/home", session.cwd)
}

func TestUploadServerRejectsCompletion(t *testing.T) {
	local := writeLocal(t, patterned(2000))
	session := newFakeSession()
	session.rejectCompletion = true

	p, err := newTestEngine(session).Upload(context.Background(), "/f.bin", local, 0)
	require.NoError(t, err)
	waitDone(t, p)

	assert.Equal(t, StatusFailed, p.Status())
	assert.ErrorIs(t, p.Err(), ErrServerRejectedCompletion)
	assert.Equal(t, UploadNewFileFailed, p.UploadStatus())
	assert.Equal(t, "/", session.cwd)
}

func TestUploadMissingLocalFile(t *testing.T) {
	session := newFakeSession()

	p, err := newTestEngine(session).Upload(context.Background(), "/f.bin", filepath.Join(t.TempDir(), "absent"), 0)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, p.Status())
	assert.ErrorIs(t, p.Err(), ErrIOFailure)
	assert.ErrorIs(t, p.Err(), os.ErrNotExist)
}

func TestUploadCancelledBeforeCopy(t *testing.T) {
	local := writeLocal(t, patterned(5000))
	session := newFakeSession()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := newTestEngine(session).Upload(ctx, "/f.bin", local, 0)
	require.NoError(t, err)
	waitDone(t, p)

	assert.Equal(t, StatusFailed, p.Status())
	assert.ErrorIs(t, p.Err(), context.Canceled)
	assert.Equal(t, int64(0), p.Transferred())
	assert.Equal(t, 1, session.confirmCalls)
}
