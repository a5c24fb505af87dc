package buffer

import (
	"fmt"
	"strings"

	"github.com/okello/mara/storage/disk"
	"github.com/okello/mara/storage/page"
	"github.com/okello/mara/util"
)

// BufferManager mediates every access to on-disk pages through a fixed
// pool of in-memory frames: it decides which pages reside in memory, which
// frame a page is served from, and when a frame's contents are evicted and
// written back.
//
// A manager instance expects a single caller goroutine and performs no
// internal locking.
type BufferManager struct {
	pool      []page.Page
	descTable []frameDesc
	pageTable *pageTable
	replacer  *clockReplacer
	numFrames uint32
}

// NewBufferManager builds a manager with numFrames pool slots, all frames
// initially invalid. Panics if numFrames is zero.
func NewBufferManager(numFrames uint32) *BufferManager {
	if numFrames < 1 {
		panic("buffer: pool size must be at least one frame")
	}

	return &BufferManager{
		pool:      make([]page.Page, numFrames),
		descTable: make([]frameDesc, numFrames),
		pageTable: newPageTable(numFrames),
		replacer:  newClockReplacer(numFrames),
		numFrames: numFrames,
	}
}

// ReadPage pins the page (file, pageNo) into a frame and returns a
// reference to its in-pool content. The reference is valid only while the
// pin is held; the caller must release it with UnpinPage and not retain it
// past that. A hit on a resident page costs no disk I/O.
func (b *BufferManager) ReadPage(file disk.File, pageNo page.PageID) (*page.Page, error) {
	tag := pageTag{file: file, pageNo: pageNo}
	if frame, ok := b.pageTable.lookup(tag); ok {
		desc := &b.descTable[frame]
		desc.pinCount++
		desc.refBit = true

		return &b.pool[frame], nil
	}

	frame, err := b.allocFrame()
	if err != nil {
		return nil, err
	}

	pg, err := file.ReadPage(pageNo)
	if err != nil {
		// the victim frame was already cleared; leave it free
		return nil, err
	}

	b.pool[frame] = *pg
	b.pageTable.insert(tag, frame)
	b.descTable[frame].set(tag)

	return &b.pool[frame], nil
}

// UnpinPage releases one pin on (file, pageNo). Unpinning a page that is
// not resident is a deliberate no-op: the page may have been evicted or
// never loaded. Unpinning a resident page whose pin count is already zero
// fails with PageNotPinnedError. markDirty is monotonic; once a page is
// marked dirty, only a write-back clears it.
func (b *BufferManager) UnpinPage(file disk.File, pageNo page.PageID, markDirty bool) error {
	frame, ok := b.pageTable.lookup(pageTag{file: file, pageNo: pageNo})
	if !ok {
		return nil
	}

	desc := &b.descTable[frame]
	if desc.pinCount == 0 {
		return util.NewPageNotPinnedError(file.Filename(), pageNo, uint32(frame))
	}

	desc.pinCount--
	if markDirty {
		desc.dirty = true
	}

	return nil
}

// NewPage allocates a fresh page in file, pins it into a frame and returns
// the assigned page number together with a reference to the in-pool
// content. The same pin lifetime rules as ReadPage apply.
func (b *BufferManager) NewPage(file disk.File) (page.PageID, *page.Page, error) {
	pg, err := file.AllocatePage()
	if err != nil {
		return 0, nil, err
	}

	frame, err := b.allocFrame()
	if err != nil {
		return 0, nil, err
	}

	tag := pageTag{file: file, pageNo: pg.ID()}
	b.pool[frame] = *pg
	b.pageTable.insert(tag, frame)
	b.descTable[frame].set(tag)

	return pg.ID(), &b.pool[frame], nil
}

// FlushFile writes back every dirty page of file and drops all of the
// file's pages from the pool, leaving their frames invalid and immediately
// reusable. Every page of the file must be unpinned first, or the flush
// fails with PagePinnedError. A frame that names the file but is invalid
// means the descriptor table and page table have desynchronized; that
// fails with BadBufferError rather than being skipped. Frames processed
// before a failure are not rolled back.
func (b *BufferManager) FlushFile(file disk.File) error {
	for i := range b.descTable {
		desc := &b.descTable[i]
		if desc.tag.file != file {
			continue
		}

		if !desc.valid {
			return util.NewBadBufferError(uint32(i), desc.dirty, desc.valid, desc.refBit)
		}
		if desc.pinCount != 0 {
			return util.NewPagePinnedError(file.Filename(), desc.tag.pageNo, uint32(i))
		}

		if desc.dirty {
			if err := file.WritePage(&b.pool[i]); err != nil {
				return err
			}
			desc.dirty = false
		}

		b.pageTable.remove(desc.tag)
		desc.clear()
	}

	return nil
}

// DisposePage deletes (file, pageNo) from disk, discarding any buffered
// copy without write-back. The page being absent from the pool is not an
// error; disposal proceeds regardless.
func (b *BufferManager) DisposePage(file disk.File, pageNo page.PageID) error {
	tag := pageTag{file: file, pageNo: pageNo}
	if frame, ok := b.pageTable.lookup(tag); ok {
		b.pageTable.remove(tag)
		b.descTable[frame].clear()
	}

	return file.DeletePage(pageNo)
}

// allocFrame picks a frame with the clock sweep and evicts its current
// owner if it has one: dirty contents are written back first, then the old
// page table entry is dropped and the descriptor cleared.
func (b *BufferManager) allocFrame() (FrameID, error) {
	frame, err := b.replacer.victim(b.descTable)
	if err != nil {
		return 0, err
	}

	desc := &b.descTable[frame]
	if desc.valid {
		if desc.dirty {
			if err := desc.tag.file.WritePage(&b.pool[frame]); err != nil {
				return 0, err
			}
			desc.dirty = false
		}
		b.pageTable.remove(desc.tag)
		desc.clear()
	}

	return frame, nil
}

// FrameInfo is a point-in-time snapshot of one frame's descriptor, for
// debugging and tests. Filename and PageNo are meaningful only when Valid.
type FrameInfo struct {
	Frame    FrameID
	Valid    bool
	Filename string
	PageNo   page.PageID
	PinCount uint32
	Dirty    bool
	RefBit   bool
}

// Describe snapshots the state of every frame.
func (b *BufferManager) Describe() []FrameInfo {
	infos := make([]FrameInfo, b.numFrames)
	for i := range b.descTable {
		desc := &b.descTable[i]
		infos[i] = FrameInfo{
			Frame:    FrameID(i),
			Valid:    desc.valid,
			PinCount: desc.pinCount,
			Dirty:    desc.dirty,
			RefBit:   desc.refBit,
		}
		if desc.valid {
			infos[i].Filename = desc.tag.file.Filename()
			infos[i].PageNo = desc.tag.pageNo
		}
	}

	return infos
}

// ValidFrames counts frames currently holding a live page.
func (b *BufferManager) ValidFrames() int {
	count := 0
	for i := range b.descTable {
		if b.descTable[i].valid {
			count++
		}
	}

	return count
}

func (b *BufferManager) String() string {
	var sb strings.Builder
	for _, info := range b.Describe() {
		fmt.Fprintf(&sb, "frame %d: valid=%t file=%q pageNo=%d pinCount=%d dirty=%t refBit=%t\n",
			info.Frame, info.Valid, info.Filename, info.PageNo, info.PinCount, info.Dirty, info.RefBit)
	}
	fmt.Fprintf(&sb, "total valid frames: %d\n", b.ValidFrames())

	return sb.String()
}
