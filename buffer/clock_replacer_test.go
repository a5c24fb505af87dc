package buffer

import (
	"testing"

	"github.com/okello/mara/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockReplacer(t *testing.T) {
	t.Run("takes invalid frames in sweep order", func(t *testing.T) {
		frames := make([]frameDesc, 3)
		c := newClockReplacer(3)

		for want := FrameID(0); want < 3; want++ {
			frame, err := c.victim(frames)
			require.NoError(t, err)
			assert.Equal(t, want, frame)
			frames[frame].set(pageTag{})
		}
	})

	t.Run("gives referenced frames a second chance", func(t *testing.T) {
		frames := make([]frameDesc, 3)
		for i := range frames {
			frames[i].set(pageTag{})
			frames[i].pinCount = 0
		}

		c := newClockReplacer(3)
		frame, err := c.victim(frames)
		require.NoError(t, err)

		// the full first rotation only clears ref bits; the sweep comes
		// back around to frame 0
		assert.Equal(t, FrameID(0), frame)
		for i := range frames {
			assert.False(t, frames[i].refBit)
		}
	})

	t.Run("never selects a pinned frame", func(t *testing.T) {
		frames := make([]frameDesc, 3)
		for i := range frames {
			frames[i].set(pageTag{})
			frames[i].refBit = false
		}
		frames[0].pinCount = 2
		frames[1].pinCount = 0
		frames[2].pinCount = 1

		c := newClockReplacer(3)
		frame, err := c.victim(frames)
		require.NoError(t, err)
		assert.Equal(t, FrameID(1), frame)
		assert.Zero(t, frames[frame].pinCount)
	})

	t.Run("fails once every frame is pinned", func(t *testing.T) {
		frames := make([]frameDesc, 4)
		for i := range frames {
			frames[i].set(pageTag{})
		}

		c := newClockReplacer(4)

		var exceeded *util.BufferExceededError
		_, err := c.victim(frames)
		require.ErrorAs(t, err, &exceeded)

		// pin counts are untouched by the failed sweep
		for i := range frames {
			assert.Equal(t, uint32(1), frames[i].pinCount)
		}
	})

	t.Run("hand keeps rotating across calls", func(t *testing.T) {
		frames := make([]frameDesc, 2)
		for i := range frames {
			frames[i].set(pageTag{})
			frames[i].refBit = false
			frames[i].pinCount = 0
		}

		c := newClockReplacer(2)
		first, err := c.victim(frames)
		require.NoError(t, err)
		second, err := c.victim(frames)
		require.NoError(t, err)

		assert.Equal(t, FrameID(0), first)
		assert.Equal(t, FrameID(1), second)
	})

	t.Run("replacers on separate managers are independent", func(t *testing.T) {
		frames := make([]frameDesc, 2)
		a := newClockReplacer(2)
		b := newClockReplacer(2)

		frameA, err := a.victim(frames)
		require.NoError(t, err)
		frameB, err := b.victim(frames)
		require.NoError(t, err)

		assert.Equal(t, frameA, frameB)
	})
}
