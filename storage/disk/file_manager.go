package disk

import (
	"fmt"
	"os"

	"github.com/okello/mara/storage/page"
	"github.com/okello/mara/util"
)

// File is the on-disk file collaborator the buffer manager drives. Reads
// and deletes of unknown page numbers fail; writes land at the page's
// embedded number.
type File interface {
	ReadPage(pageNo page.PageID) (*page.Page, error)
	WritePage(pg *page.Page) error
	AllocatePage() (*page.Page, error)
	DeletePage(pageNo page.PageID) error
	Filename() string
}

func NewFileManager(file *os.File) *FileManager {
	return &FileManager{
		dbFile:    file,
		slots:     map[page.PageID]int{},
		freeSlots: []int{},
	}
}

func (fm *FileManager) ReadPage(pageNo page.PageID) (*page.Page, error) {
	offset, ok := fm.slots[pageNo]
	if !ok {
		return nil, util.NewInvalidPageError(fm.Filename(), pageNo)
	}

	pg := page.New(pageNo)
	if _, err := fm.dbFile.ReadAt(pg.Data()[:], int64(offset)); err != nil {
		return nil, fmt.Errorf("error reading page %d at offset %d: %v", pageNo, offset, err)
	}

	return pg, nil
}

func (fm *FileManager) WritePage(pg *page.Page) error {
	offset, ok := fm.slots[pg.ID()]
	if !ok {
		return util.NewInvalidPageError(fm.Filename(), pg.ID())
	}

	if _, err := fm.dbFile.WriteAt(pg.Data()[:], int64(offset)); err != nil {
		return fmt.Errorf("error writing page %d at offset %d: %v", pg.ID(), offset, err)
	}

	return nil
}

// AllocatePage extends the file by one page and returns a zeroed page with
// a freshly assigned number. File slots freed by DeletePage are reused;
// page numbers are not.
func (fm *FileManager) AllocatePage() (*page.Page, error) {
	offset, err := fm.allocateSlot()
	if err != nil {
		return nil, err
	}

	pageNo := fm.nextPageNo
	fm.nextPageNo++
	fm.slots[pageNo] = offset

	return page.New(pageNo), nil
}

func (fm *FileManager) DeletePage(pageNo page.PageID) error {
	offset, ok := fm.slots[pageNo]
	if !ok {
		return util.NewInvalidPageError(fm.Filename(), pageNo)
	}

	fm.freeSlots = append(fm.freeSlots, offset)
	delete(fm.slots, pageNo)

	return nil
}

func (fm *FileManager) Filename() string {
	return fm.dbFile.Name()
}

func (fm *FileManager) allocateSlot() (int, error) {
	if len(fm.freeSlots) > 0 {
		offset := fm.freeSlots[0]
		fm.freeSlots = fm.freeSlots[1:]

		return offset, nil
	}

	slot := fm.nextSlot
	if slot+1 > fm.pageCapacity {
		if fm.pageCapacity == 0 {
			fm.pageCapacity = defaultPageCapacity
		} else {
			fm.pageCapacity *= 2
		}
		if err := os.Truncate(fm.dbFile.Name(), int64(fm.pageCapacity)*page.PageSize); err != nil {
			return -1, fmt.Errorf("error resizing db file: %v", err)
		}
	}

	fm.nextSlot++
	return slot * page.PageSize, nil
}

const defaultPageCapacity = 16

type FileManager struct {
	dbFile       *os.File
	slots        map[page.PageID]int
	freeSlots    []int
	nextPageNo   page.PageID
	nextSlot     int
	pageCapacity int
}
