package applog_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/yuku/sharedpool/applog"
	"github.com/yuku/sharedpool/internal/testhelper"
)

var fixedTime = time.Date(2024, 3, 1, 10, 20, 30, 456_000_000, time.Local)

func fixedClock() time.Time { return fixedTime }

func TestLogger_Log(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	var console bytes.Buffer

	logger, err := applog.Open(path, applog.WithConsole(&console), applog.WithClock(fixedClock))
	require.NoError(t, err, "failed to open logger")

	require.NoError(t, logger.Log("Order processing started."))
	require.NoError(t, logger.Logf("Order %d processed.", 7))
	testhelper.MustClose(logger)

	want := "2024-03-01T10:20:30.456 - Order processing started.\n" +
		"2024-03-01T10:20:30.456 - Order 7 processed.\n"

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, want, string(data))
	require.Equal(t, want, console.String(), "expected console to mirror the file")
}

func TestLogger_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("existing line\n"), 0o644))

	logger, err := applog.Open(path, applog.WithConsole(nil), applog.WithClock(fixedClock))
	require.NoError(t, err)
	require.NoError(t, logger.Log("new line"))

	// Written through to the file before Close.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "existing line\n2024-03-01T10:20:30.456 - new line\n", string(data))

	testhelper.MustClose(logger)
}

func TestLogger_Close(t *testing.T) {
	logger, err := applog.Open(filepath.Join(t.TempDir(), "app.log"), applog.WithConsole(nil))
	require.NoError(t, err)

	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close(), "expected Close to be idempotent")
	require.ErrorIs(t, logger.Log("too late"), applog.ErrClosed)
}

func TestOpen_Error(t *testing.T) {
	_, err := applog.Open(filepath.Join(t.TempDir(), "missing-dir", "app.log"))
	require.Error(t, err, "expected error when the directory does not exist")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("console unavailable") }

func TestLogger_ReportsWriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := applog.Open(path, applog.WithConsole(failingWriter{}))
	require.NoError(t, err)
	defer testhelper.MustClose(logger)

	err = logger.Log("message")
	require.ErrorContains(t, err, "console unavailable")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), " - message\n", "expected the file write to succeed regardless")
}

func TestLogger_Concurrent(t *testing.T) {
	const numWorkers, perWorker = 8, 50
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := applog.Open(path, applog.WithConsole(nil))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if err := logger.Log(fmt.Sprintf("worker %d line %d", workerID, j)); err != nil {
					t.Errorf("log failed: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()
	testhelper.MustClose(logger)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, numWorkers*perWorker)
	for _, line := range lines {
		require.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3} - worker \d+ line \d+$`, line)
	}
}

func TestHook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := applog.Open(path, applog.WithConsole(nil))
	require.NoError(t, err)

	ambient := logrus.New()
	ambient.SetOutput(&bytes.Buffer{})
	ambient.AddHook(logger.Hook())

	ambient.WithFields(logrus.Fields{"lent": 0, "capacity": 5}).Info("pool ready")
	ambient.Debug("not mirrored")

	testhelper.MustClose(logger)
	ambient.Info("after close is ignored")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Regexp(t, `^\S+ - pool ready capacity=5 lent=0\n$`, string(data))
}

func TestLineFormatter(t *testing.T) {
	e := &logrus.Entry{
		Time:    fixedTime,
		Message: "connection pool closed",
		Data:    logrus.Fields{"closed": 4},
	}

	out, err := applog.LineFormatter{}.Format(e)
	require.NoError(t, err)
	require.Equal(t, "2024-03-01T10:20:30.456 - connection pool closed closed=4\n", string(out))
}
