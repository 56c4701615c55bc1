package boot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestHandoff_ExecFailure(t *testing.T) {
	sys := newFakeSystem(1, 0)
	sys.execErr = unix.ENOENT
	h := newHarness(t, sys)

	code, returned := call(h.booter.Boot)

	require.True(t, returned)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "GURU MEDITATION! YOGA MAT ON FIRE!")
	assert.Equal(t, []State{StateHandoff, StateFatalExit}, h.booter.history[len(h.booter.history)-2:])
}

func TestHandoff_SuccessNeverReturns(t *testing.T) {
	sys := newFakeSystem(1, 0)
	h := newHarness(t, sys)

	_, returned := call(h.booter.Boot)

	assert.False(t, returned)
	assert.Equal(t, "exec", sys.calls[len(sys.calls)-1], "exec is the last primitive called")
	assert.NotContains(t, h.stderr.String(), "GURU MEDITATION")
	assert.Equal(t, StateHandoff, h.booter.history[len(h.booter.history)-1])
}

func TestHandoff_ReturnWithoutErrorIsFailure(t *testing.T) {
	sys := newFakeSystem(1, 0)
	sys.execReturnsNil = true
	h := newHarness(t, sys)

	code, returned := call(h.booter.Boot)

	require.True(t, returned)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "SOMETHING IS AWRY")
}
