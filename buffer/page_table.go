package buffer

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotUsed
	slotTombstone
)

type tableSlot struct {
	state slotState
	tag   pageTag
	frame FrameID
}

// pageTable maps a resident page's identity to the frame holding it. It is
// a fixed-capacity linear-probe table sized with headroom above the frame
// count, so it never fills: at most numFrames entries are live at once.
// Deletion leaves a tombstone so later probes keep walking the chain.
type pageTable struct {
	slots []tableSlot
}

func newPageTable(numFrames uint32) *pageTable {
	capacity := int(float64(numFrames)*1.2) + 1
	return &pageTable{slots: make([]tableSlot, capacity)}
}

// lookup reports the frame holding tag's page. A miss is a normal outcome,
// not an error; the buffer manager turns it into a page load.
func (t *pageTable) lookup(tag pageTag) (FrameID, bool) {
	idx := t.bucket(tag)
	for i := 0; i < len(t.slots); i++ {
		slot := &t.slots[(idx+i)%len(t.slots)]
		switch slot.state {
		case slotUsed:
			if slot.tag == tag {
				return slot.frame, true
			}
		case slotEmpty:
			return 0, false
		}
	}
	return 0, false
}

// insert adds an entry for tag, overwriting any existing one.
func (t *pageTable) insert(tag pageTag, frame FrameID) {
	idx := t.bucket(tag)
	firstFree := -1
	for i := 0; i < len(t.slots); i++ {
		pos := (idx + i) % len(t.slots)
		slot := &t.slots[pos]
		switch slot.state {
		case slotUsed:
			if slot.tag == tag {
				slot.frame = frame
				return
			}
		case slotTombstone:
			if firstFree == -1 {
				firstFree = pos
			}
		case slotEmpty:
			if firstFree == -1 {
				firstFree = pos
			}
			t.slots[firstFree] = tableSlot{state: slotUsed, tag: tag, frame: frame}
			return
		}
	}

	if firstFree == -1 {
		// capacity always exceeds the frame count
		panic("buffer: page table full")
	}
	t.slots[firstFree] = tableSlot{state: slotUsed, tag: tag, frame: frame}
}

// remove deletes tag's entry if present. Removing an absent entry is a
// no-op at this layer.
func (t *pageTable) remove(tag pageTag) {
	idx := t.bucket(tag)
	for i := 0; i < len(t.slots); i++ {
		slot := &t.slots[(idx+i)%len(t.slots)]
		switch slot.state {
		case slotUsed:
			if slot.tag == tag {
				*slot = tableSlot{state: slotTombstone}
				return
			}
		case slotEmpty:
			return
		}
	}
}

func (t *pageTable) bucket(tag pageTag) int {
	h := murmur3.New32()
	h.Write([]byte(tag.file.Filename()))

	var pageNo [4]byte
	binary.LittleEndian.PutUint32(pageNo[:], uint32(tag.pageNo))
	h.Write(pageNo[:])

	return int(h.Sum32() % uint32(len(t.slots)))
}
