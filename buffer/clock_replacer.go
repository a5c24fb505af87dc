package buffer

import "github.com/okello/mara/util"

// clockReplacer implements second-chance replacement over the frame
// descriptor table. The rotating hand is the only state it owns; each
// BufferManager carries its own replacer, so manager instances stay
// independent.
type clockReplacer struct {
	hand      FrameID
	numFrames uint32
}

// newClockReplacer starts the hand on the last frame so the first sweep
// begins at frame 0.
func newClockReplacer(numFrames uint32) *clockReplacer {
	return &clockReplacer{hand: FrameID(numFrames - 1), numFrames: numFrames}
}

// victim selects the next frame to (re)use. Invalid frames are taken
// immediately; a set refBit buys the frame one more sweep; pinned frames
// are skipped. Only pinned encounters count toward exhaustion: once more
// than numFrames of them are seen, every frame is pinned and no amount of
// sweeping can free one. RefBit clearing does not count, since it always
// eventually turns a frame into an empty, evictable or pinned one.
//
// The returned frame is either invalid or evictable (valid, refBit clear,
// pin count zero); write-back of a dirty victim and removal of its page
// table entry are the caller's job.
func (c *clockReplacer) victim(frames []frameDesc) (FrameID, error) {
	pinned := uint32(0)
	for pinned <= c.numFrames {
		c.advance()
		desc := &frames[c.hand]
		switch {
		case !desc.valid:
			return c.hand, nil
		case desc.refBit:
			desc.refBit = false
		case desc.pinCount > 0:
			pinned++
		default:
			return c.hand, nil
		}
	}

	return 0, util.NewBufferExceededError()
}

func (c *clockReplacer) advance() {
	c.hand = (c.hand + 1) % FrameID(c.numFrames)
}
