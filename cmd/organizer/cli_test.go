package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orgerrors "github.com/obby/download-organizer/internal/errors"
	"github.com/obby/download-organizer/internal/organizer"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// isolateEnv keeps the developer's environment out of config loading.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	for _, key := range []string{
		"ORGANIZER_CONFIG", "ORGANIZER_ROOT", "DEBOUNCE_MS", "ORGANIZER_DEBOUNCE",
		"ORGANIZER_WORKERS", "ORGANIZER_SWEEP", "ORGANIZER_LOCK_PATH", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestClassifyCommand(t *testing.T) {
	isolateEnv(t)
	var stdout, stderr bytes.Buffer
	app := newCLIApp(&stdout, &stderr)

	err := app.Run([]string{"download-organizer", "classify", "photo.JPG", "archive.tar.gz", "notes", "/x/y/report.pdf"})
	require.NoError(t, err)

	assert.Equal(t,
		"photo.JPG\tImages\n"+
			"archive.tar.gz\tCompressed\n"+
			"notes\tOthers\n"+
			"/x/y/report.pdf\tDocuments\n",
		stdout.String())
}

func TestClassifyCommand_RequiresArgs(t *testing.T) {
	isolateEnv(t)
	app := newCLIApp(&bytes.Buffer{}, &bytes.Buffer{})

	err := app.Run([]string{"download-organizer", "classify"})
	require.Error(t, err)
}

func TestClassifyCommand_List(t *testing.T) {
	isolateEnv(t)
	var stdout bytes.Buffer
	app := newCLIApp(&stdout, &bytes.Buffer{})

	require.NoError(t, app.Run([]string{"download-organizer", "classify", "--list"}))

	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	require.Len(t, lines, len(organizer.DefaultTable().Categories()))
	assert.True(t, strings.HasPrefix(lines[0], "Images\t.jpg "), lines[0])
	assert.Contains(t, stdout.String(), "Compressed\t")
	assert.Contains(t, stdout.String(), " .7z ")
	assert.Equal(t, "Others\t(fallback)", lines[len(lines)-1])
}

func TestSampleConfigCommand(t *testing.T) {
	isolateEnv(t)
	var stdout bytes.Buffer
	app := newCLIApp(&stdout, &bytes.Buffer{})

	require.NoError(t, app.Run([]string{"download-organizer", "sample-config"}))
	assert.Contains(t, stdout.String(), `debounce = "1s"`)
}

func TestWatch_MissingDefaultRoot(t *testing.T) {
	isolateEnv(t)
	app := newCLIApp(&bytes.Buffer{}, &bytes.Buffer{})

	err := app.Run([]string{"download-organizer"})
	require.Error(t, err)
	assert.True(t, orgerrors.Is(err, orgerrors.ErrInvalidConfig))
}

func TestWatch_UnknownArgument(t *testing.T) {
	isolateEnv(t)
	app := newCLIApp(&bytes.Buffer{}, &bytes.Buffer{})

	err := app.Run([]string{"download-organizer", "organise"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organise")
}

func TestWatch_MovesFilesUntilCancelled(t *testing.T) {
	home := isolateEnv(t)
	root := filepath.Join(home, "Downloads")
	require.NoError(t, os.Mkdir(root, 0o755))

	stdout := &lockedBuffer{}
	stderr := &lockedBuffer{}
	app := newCLIApp(stdout, stderr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.RunContext(ctx, []string{"download-organizer", "--debounce", "50ms", "--log-format", "json"})
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(stderr.String()), []byte("watching directory"))
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "song.wav"), []byte("x"), 0o644))

	dst := filepath.Join(root, "Audio", "song.wav")
	require.Eventually(t, func() bool {
		return stdout.String() == "Moved: song.wav → "+dst+"\n"
	}, 3*time.Second, 10*time.Millisecond)
	assert.FileExists(t, dst)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("organizer did not stop after cancellation")
	}
}

func TestWatch_FlagsOverrideConfigFile(t *testing.T) {
	home := isolateEnv(t)
	fileRoot := filepath.Join(home, "from-file")
	flagRoot := filepath.Join(home, "from-flag")
	require.NoError(t, os.Mkdir(flagRoot, 0o755))

	cfgPath := filepath.Join(home, "organizer.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`root = "`+fileRoot+`"`+"\n"), 0o600))

	stderr := &lockedBuffer{}
	app := newCLIApp(&lockedBuffer{}, stderr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.RunContext(ctx, []string{"download-organizer", "--config", cfgPath, "--root", flagRoot, "--log-format", "json"})
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(stderr.String()), []byte(flagRoot))
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
