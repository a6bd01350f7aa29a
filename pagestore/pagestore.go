// Package pagestore implements the fixed-size-page file the engine persists
// finalized records into: a single store header page followed by
// equal-sized data pages, each carrying a small page header ahead of its
// record body.
//
// The Header.Read/Write split mirrors the teacher format's binary.Header
// (no magic number is written or checked here): a fixed-size struct, one method to
// serialize it into a page-sized buffer and one to parse it back, so the
// store itself just shuttles whole pages through os.File.ReadAt/WriteAt.
package pagestore

import (
	"os"

	"github.com/google/uuid"

	"fhirbin/fhirconfig"
	"fhirbin/fhirerr"
	"fhirbin/fhirlog"
	"fhirbin/registry"
)

// StoreHeader is the fixed-layout header written to page 0: NumPages (u16),
// PageSize (u16) and TopPage (u16), zero-padded to one full page.
type StoreHeader struct {
	NumPages uint16
	PageSize uint16
	TopPage  uint16
}

// Write serializes h into buf, which must be at least PageSize bytes; the
// remainder of buf is left as whatever the caller passed in (the Store
// always hands Write a freshly zeroed page).
func (h *StoreHeader) Write(buf []byte) error {
	if len(buf) < 6 {
		return fhirerr.Newf(fhirerr.KindBufferOverflow, "store header buffer too small: %d bytes", len(buf))
	}
	putU16(buf[0:2], h.NumPages)
	putU16(buf[2:4], h.PageSize)
	putU16(buf[4:6], h.TopPage)
	return nil
}

// Read parses a StoreHeader from the first 6 bytes of buf.
func (h *StoreHeader) Read(buf []byte) error {
	if len(buf) < 6 {
		return fhirerr.Newf(fhirerr.KindEndOfInput, "store header buffer too small: %d bytes", len(buf))
	}
	h.NumPages = getU16(buf[0:2])
	h.PageSize = getU16(buf[2:4])
	h.TopPage = getU16(buf[4:6])
	return nil
}

// PageHeader is the fixed 72-byte prefix of every data page: a page
// number, the resource type id it holds, and a length-prefixed unit
// carrying the record's 16-byte UUID, followed by zero padding out to
// fhirconfig.PageHeaderSize().
type PageHeader struct {
	PageNum    uint16
	ResourceID uint16
	UUID       uuid.UUID
}

const pageHeaderUnitLen = 2 + 16 // id field (2 bytes) + 16-byte UUID payload

// Write serializes h into the first fhirconfig.PageHeaderSize() bytes of
// buf: page_num, resource_id, then a (len, id, payload) unit carrying the
// UUID, tagged with registry.IDTYPE the way every other id-carrying unit in
// this format is tagged.
func (h *PageHeader) Write(buf []byte) error {
	size := fhirconfig.PageHeaderSize()
	if len(buf) < size {
		return fhirerr.Newf(fhirerr.KindBufferOverflow, "page header buffer too small: %d bytes", len(buf))
	}
	putU16(buf[0:2], h.PageNum)
	putU16(buf[2:4], h.ResourceID)
	putU16(buf[4:6], uint16(pageHeaderUnitLen))
	putU16(buf[6:8], uint16(registry.IDTYPE))
	idBytes, err := h.UUID.MarshalBinary()
	if err != nil {
		return fhirerr.Newf(fhirerr.KindUnexpectedToken, "marshal page uuid: %v", err)
	}
	copy(buf[8:24], idBytes)
	for i := 24; i < size; i++ {
		buf[i] = 0
	}
	return nil
}

// Read parses a PageHeader from the first fhirconfig.PageHeaderSize() bytes
// of buf.
func (h *PageHeader) Read(buf []byte) error {
	size := fhirconfig.PageHeaderSize()
	if len(buf) < size {
		return fhirerr.Newf(fhirerr.KindEndOfInput, "page header buffer too small: %d bytes", len(buf))
	}
	h.PageNum = getU16(buf[0:2])
	h.ResourceID = getU16(buf[2:4])
	u, err := uuid.FromBytes(buf[8:24])
	if err != nil {
		return fhirerr.Newf(fhirerr.KindUnexpectedToken, "parse page uuid: %v", err)
	}
	h.UUID = u
	return nil
}

func putU16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func getU16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// Store is an open page file: page 0 holds the StoreHeader, pages
// 1..NumPages-1 hold records. Pages are written once; there is no
// in-place update.
type Store struct {
	file     *os.File
	header   StoreHeader
	pageSize int
}

// Open opens path, creating and initializing it with cfg.InitPages pages
// (including the header page) if it doesn't already exist or is empty.
func Open(path string, cfg *fhirconfig.Config) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fhirerr.Newf(fhirerr.KindBufferOverflow, "open store file %q: %v", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fhirerr.Newf(fhirerr.KindBufferOverflow, "stat store file %q: %v", path, err)
	}

	s := &Store{file: f, pageSize: cfg.PageSize}
	if info.Size() == 0 {
		fhirlog.Info("pagestore: initializing new store at %s: %d pages of %d bytes", path, cfg.InitPages, cfg.PageSize)
		s.header = StoreHeader{
			NumPages: uint16(cfg.InitPages),
			PageSize: uint16(cfg.PageSize),
			TopPage:  1,
		}
		if err := s.writeHeaderPage(); err != nil {
			f.Close()
			return nil, err
		}
		blank := make([]byte, cfg.PageSize)
		for i := 1; i < cfg.InitPages; i++ {
			if err := s.WritePage(i, blank); err != nil {
				f.Close()
				return nil, err
			}
		}
		return s, nil
	}

	buf := make([]byte, cfg.PageSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		f.Close()
		return nil, fhirerr.Newf(fhirerr.KindEndOfInput, "read store header of %q: %v", path, err)
	}
	if err := s.header.Read(buf); err != nil {
		f.Close()
		return nil, err
	}
	s.pageSize = int(s.header.PageSize)
	fhirlog.Debug("pagestore: opened existing store %s: top_page=%d num_pages=%d", path, s.header.TopPage, s.header.NumPages)
	return s, nil
}

func (s *Store) writeHeaderPage() error {
	buf := make([]byte, s.pageSize)
	if err := s.header.Write(buf); err != nil {
		return err
	}
	return s.WritePage(0, buf)
}

// AllocatePage bumps TopPage and returns the newly assigned index.
//
// This increments TopPage before the page is actually written, matching
// the reference store exactly — a record that fails to persist after
// allocation leaks that page index rather than being retried. Left
// uncorrected deliberately; see DESIGN.md.
func (s *Store) AllocatePage() (int, error) {
	if int(s.header.TopPage) >= int(s.header.NumPages) {
		return 0, fhirerr.Newf(fhirerr.KindBufferOverflow, "store exhausted: top_page %d >= num_pages %d", s.header.TopPage, s.header.NumPages)
	}
	index := int(s.header.TopPage)
	s.header.TopPage++
	if err := s.writeHeaderPage(); err != nil {
		return 0, err
	}
	return index, nil
}

// ReadPage reads exactly one page at index.
func (s *Store) ReadPage(index int) ([]byte, error) {
	buf := make([]byte, s.pageSize)
	n, err := s.file.ReadAt(buf, int64(index)*int64(s.pageSize))
	if err != nil || n != s.pageSize {
		return nil, fhirerr.Newf(fhirerr.KindEndOfInput, "read page %d: %v", index, err)
	}
	return buf, nil
}

// WritePage writes exactly one page's worth of bytes at index and syncs
// the file.
func (s *Store) WritePage(index int, data []byte) error {
	if len(data) != s.pageSize {
		return fhirerr.Newf(fhirerr.KindBufferOverflow, "page write of %d bytes, want exactly %d", len(data), s.pageSize)
	}
	if _, err := s.file.WriteAt(data, int64(index)*int64(s.pageSize)); err != nil {
		return fhirerr.Newf(fhirerr.KindBufferOverflow, "write page %d: %v", index, err)
	}
	return s.file.Sync()
}

// PageSize returns the store's fixed page size.
func (s *Store) PageSize() int {
	return s.pageSize
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	return s.file.Close()
}
