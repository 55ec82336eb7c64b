package spinner

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_DrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "collecting")

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "collecting")
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	got := out.String()
	assert.True(t, strings.HasSuffix(got, "\r"), "line should be cleared on stop")
}

func TestSpinner_Update(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "collecting 0/8")
	s.Update("collecting 5/8")

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "collecting 5/8")
	}, 2*time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "x")
	s.Stop()
	s.Stop()
}

func TestEnabled_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, Enabled(f))
	assert.False(t, Enabled(nil))
}
