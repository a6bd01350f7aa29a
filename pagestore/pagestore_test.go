package pagestore

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"fhirbin/fhirconfig"
	"fhirbin/registry"
)

func testConfig(dir string) *fhirconfig.Config {
	return &fhirconfig.Config{
		StorePath: filepath.Join(dir, "test.store"),
		PageSize:  256,
		InitPages: 4,
	}
}

func TestOpenInitializesNewStore(t *testing.T) {
	cfg := testConfig(t.TempDir())
	s, err := Open(cfg.StorePath, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.PageSize() != 256 {
		t.Fatalf("PageSize() = %d, want 256", s.PageSize())
	}
	if s.header.NumPages != 4 {
		t.Fatalf("NumPages = %d, want 4", s.header.NumPages)
	}
	if s.header.TopPage != 1 {
		t.Fatalf("TopPage = %d, want 1", s.header.TopPage)
	}
}

func TestAllocatePageIncrementsTopPage(t *testing.T) {
	cfg := testConfig(t.TempDir())
	s, err := Open(cfg.StorePath, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	first, err := s.AllocatePage()
	if err != nil {
		t.Fatalf("AllocatePage: %v", err)
	}
	if first != 1 {
		t.Fatalf("first allocated page = %d, want 1", first)
	}
	second, err := s.AllocatePage()
	if err != nil {
		t.Fatalf("AllocatePage: %v", err)
	}
	if second != 2 {
		t.Fatalf("second allocated page = %d, want 2", second)
	}
}

func TestAllocatePageExhaustion(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.InitPages = 2
	s, err := Open(cfg.StorePath, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.AllocatePage(); err != nil {
		t.Fatalf("AllocatePage: %v", err)
	}
	if _, err := s.AllocatePage(); err == nil {
		t.Fatal("expected an error once the store is exhausted")
	}
}

func TestWriteReadPageRoundTrip(t *testing.T) {
	cfg := testConfig(t.TempDir())
	s, err := Open(cfg.StorePath, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	idx, err := s.AllocatePage()
	if err != nil {
		t.Fatalf("AllocatePage: %v", err)
	}

	ph := &PageHeader{PageNum: uint16(idx), ResourceID: 1, UUID: uuid.New()}
	buf := make([]byte, s.PageSize())
	if err := ph.Write(buf); err != nil {
		t.Fatalf("PageHeader.Write: %v", err)
	}
	copy(buf[fhirconfig.PageHeaderSize():], []byte("record body"))

	if err := s.WritePage(idx, buf); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	got, err := s.ReadPage(idx)
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}

	var gotHeader PageHeader
	if err := gotHeader.Read(got); err != nil {
		t.Fatalf("PageHeader.Read: %v", err)
	}
	if gotHeader.PageNum != uint16(idx) {
		t.Fatalf("PageNum = %d, want %d", gotHeader.PageNum, idx)
	}
	if gotHeader.ResourceID != 1 {
		t.Fatalf("ResourceID = %d, want 1", gotHeader.ResourceID)
	}
	if gotHeader.UUID != ph.UUID {
		t.Fatalf("UUID = %s, want %s", gotHeader.UUID, ph.UUID)
	}
}

// TestPageHeaderUnitLayout checks the actual bytes, not just a Write/Read
// round trip: the UUID unit's declared length (buf[4:6]) must match what
// actually follows it — a real 2-byte id at buf[6:8], then the 16-byte UUID
// at buf[8:24] — per spec.md's unit shape (len, id, payload).
func TestPageHeaderUnitLayout(t *testing.T) {
	u := uuid.New()
	ph := &PageHeader{PageNum: 1, ResourceID: 2, UUID: u}
	buf := make([]byte, fhirconfig.PageHeaderSize())
	if err := ph.Write(buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	gotLen := getU16(buf[4:6])
	if gotLen != uint16(pageHeaderUnitLen) {
		t.Fatalf("declared unit length = %d, want %d", gotLen, pageHeaderUnitLen)
	}

	gotID := getU16(buf[6:8])
	if gotID != uint16(registry.IDTYPE) {
		t.Fatalf("unit id = %d, want %d (registry.IDTYPE)", gotID, registry.IDTYPE)
	}

	idBytes, err := u.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if string(buf[8:24]) != string(idBytes) {
		t.Fatal("UUID payload not found at buf[8:24], the len+id field's declared offset")
	}
}

func TestReopenPreservesTopPage(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	s, err := Open(cfg.StorePath, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.AllocatePage(); err != nil {
		t.Fatalf("AllocatePage: %v", err)
	}
	if _, err := s.AllocatePage(); err != nil {
		t.Fatalf("AllocatePage: %v", err)
	}
	s.Close()

	reopened, err := Open(cfg.StorePath, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if reopened.header.TopPage != 3 {
		t.Fatalf("TopPage after reopen = %d, want 3", reopened.header.TopPage)
	}
}
