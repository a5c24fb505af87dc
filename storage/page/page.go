package page

// PageSize is the fixed size in bytes of every on-disk page.
const PageSize = 4096

// PageID identifies a page within a single file.
type PageID uint32

// Page is a fixed-size buffer holding one disk page's content. The page
// number is assigned when the page is allocated on disk and never changes
// afterwards.
type Page struct {
	id   PageID
	data [PageSize]byte
}

func New(id PageID) *Page {
	return &Page{id: id}
}

// ID returns the page's number within its file.
func (p *Page) ID() PageID {
	return p.id
}

// Data returns the page's content buffer.
func (p *Page) Data() *[PageSize]byte {
	return &p.data
}
