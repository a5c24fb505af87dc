package util

import (
	"fmt"

	"github.com/okello/mara/storage/page"
)

type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// BufferExceededError reports a replacement search that found every frame
// pinned. The caller may retry after unpinning pages elsewhere.
type BufferExceededError struct {
	*StorageError
}

func NewBufferExceededError() *BufferExceededError {
	return &BufferExceededError{
		&StorageError{Message: "buffer pool exceeded: all frames are pinned"},
	}
}

// PageNotPinnedError reports an unpin of a resident page whose pin count is
// already zero, a contract violation by the caller.
type PageNotPinnedError struct {
	*StorageError
	Filename string
	PageNo   page.PageID
	Frame    uint32
}

func NewPageNotPinnedError(filename string, pageNo page.PageID, frame uint32) *PageNotPinnedError {
	return &PageNotPinnedError{
		StorageError: &StorageError{
			Message: fmt.Sprintf("page %d of file %s in frame %d is not pinned", pageNo, filename, frame),
		},
		Filename: filename,
		PageNo:   pageNo,
		Frame:    frame,
	}
}

// PagePinnedError reports a flush attempted while a page of the target file
// is still pinned. The caller must unpin every page of the file first.
type PagePinnedError struct {
	*StorageError
	Filename string
	PageNo   page.PageID
	Frame    uint32
}

func NewPagePinnedError(filename string, pageNo page.PageID, frame uint32) *PagePinnedError {
	return &PagePinnedError{
		StorageError: &StorageError{
			Message: fmt.Sprintf("page %d of file %s is still pinned in frame %d", pageNo, filename, frame),
		},
		Filename: filename,
		PageNo:   pageNo,
		Frame:    frame,
	}
}

// BadBufferError reports an invalid frame encountered where a valid one was
// expected, a descriptor/index desynchronization. Not recoverable by retry.
type BadBufferError struct {
	*StorageError
	Frame  uint32
	Dirty  bool
	Valid  bool
	RefBit bool
}

func NewBadBufferError(frame uint32, dirty, valid, refBit bool) *BadBufferError {
	return &BadBufferError{
		StorageError: &StorageError{
			Message: fmt.Sprintf("bad buffer state in frame %d: dirty=%t valid=%t refBit=%t", frame, dirty, valid, refBit),
		},
		Frame:  frame,
		Dirty:  dirty,
		Valid:  valid,
		RefBit: refBit,
	}
}

// InvalidPageError reports a file operation on a page number the file does
// not contain.
type InvalidPageError struct {
	*StorageError
	Filename string
	PageNo   page.PageID
}

func NewInvalidPageError(filename string, pageNo page.PageID) *InvalidPageError {
	return &InvalidPageError{
		StorageError: &StorageError{
			Message: fmt.Sprintf("page %d does not exist in file %s", pageNo, filename),
		},
		Filename: filename,
		PageNo:   pageNo,
	}
}
