package buffer

import (
	"github.com/okello/mara/storage/disk"
	"github.com/okello/mara/storage/page"
)

// FrameID indexes a slot in the buffer pool.
type FrameID uint32

// pageTag identifies the disk page occupying a frame: which file it belongs
// to and its number within that file.
type pageTag struct {
	file   disk.File
	pageNo page.PageID
}

// frameDesc tracks the state of one buffer pool frame. An invalid
// descriptor has a zero tag, zero pin count and clear flags.
type frameDesc struct {
	tag      pageTag
	valid    bool
	pinCount uint32
	dirty    bool
	refBit   bool
}

// set readies the descriptor for a newly loaded page: pinned once, recently
// referenced, clean.
func (d *frameDesc) set(tag pageTag) {
	d.tag = tag
	d.valid = true
	d.pinCount = 1
	d.dirty = false
	d.refBit = true
}

// clear returns the descriptor to the invalid state, releasing its owner.
func (d *frameDesc) clear() {
	*d = frameDesc{}
}
