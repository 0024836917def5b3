package durlog

import (
	"bytes"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(buf),
			stumpy.WithTimeField(``),
		),
		stumpy.L.WithLevel(logiface.LevelDebug),
	).Logger()
}

func TestTimer_Stop_logsOnce(t *testing.T) {
	var buf bytes.Buffer
	timer := Start(newTestLogger(&buf), `round`)

	first := timer.Stop()
	second := timer.Stop()

	assert.GreaterOrEqual(t, second, first)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`duration measured`)))
	assert.Contains(t, buf.String(), `"id":"round"`)
	assert.Contains(t, buf.String(), `"duration"`)
}

func TestTimer_Elapsed_doesNotLog(t *testing.T) {
	var buf bytes.Buffer
	timer := Start(newTestLogger(&buf), `quiet`)

	before := timer.Elapsed()
	time.Sleep(5 * time.Millisecond)
	after := timer.Elapsed()

	require.Greater(t, after, before)
	assert.Empty(t, buf.String())
}

func TestStart_nilLogger(t *testing.T) {
	timer := Start(nil, `no logger`)
	time.Sleep(time.Millisecond)
	assert.Greater(t, timer.Stop(), time.Duration(0))
}
