// Command fhirload translates one FHIR Patient JSON document into a binary
// record and appends it to the page store as a new page.
//
// Usage:
//
//	fhirload --file patient.json
//	fhirload --file patient.json --resource-id 1
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"fhirbin/fhirconfig"
	"fhirbin/fhirlog"
	"fhirbin/pagestore"
	"fhirbin/translator"
)

var (
	filePath   = flag.String("file", "", "path to a FHIR Patient JSON document (required)")
	resourceID = flag.Uint("resource-id", 1, "wire id of the resource type being loaded (1 = Patient)")
	showHelp   = flag.Bool("help", false, "print usage and exit")
)

func main() {
	flag.Parse()
	if *showHelp || *filePath == "" {
		fmt.Println("Usage: fhirload --file patient.json [--resource-id N]")
		flag.PrintDefaults()
		if *filePath == "" && !*showHelp {
			os.Exit(2)
		}
		os.Exit(0)
	}

	cfg := fhirconfig.Load()
	fhirlog.Configure()

	body, err := os.ReadFile(*filePath)
	if err != nil {
		fhirlog.Error("fhirload: read %s: %v", *filePath, err)
		os.Exit(1)
	}

	record, err := translator.Encode(body, cfg.PageSize, 0)
	if err != nil {
		fhirlog.Error("fhirload: encode %s: %v", *filePath, err)
		os.Exit(1)
	}
	if len(record)+fhirconfig.PageHeaderSize() > cfg.PageSize {
		fhirlog.Error("fhirload: encoded record (%d bytes) does not fit in a %d-byte page with a %d-byte header", len(record), cfg.PageSize, fhirconfig.PageHeaderSize())
		os.Exit(1)
	}

	store, err := pagestore.Open(cfg.StorePath, cfg)
	if err != nil {
		fhirlog.Error("fhirload: open store %s: %v", cfg.StorePath, err)
		os.Exit(1)
	}
	defer store.Close()

	idx, err := store.AllocatePage()
	if err != nil {
		fhirlog.Error("fhirload: allocate page: %v", err)
		os.Exit(1)
	}

	page := make([]byte, cfg.PageSize)
	header := &pagestore.PageHeader{
		PageNum:    uint16(idx),
		ResourceID: uint16(*resourceID),
		UUID:       uuid.New(),
	}
	if err := header.Write(page); err != nil {
		fhirlog.Error("fhirload: write page header: %v", err)
		os.Exit(1)
	}
	copy(page[fhirconfig.PageHeaderSize():], record)

	if err := store.WritePage(idx, page); err != nil {
		fhirlog.Error("fhirload: write page %d: %v", idx, err)
		os.Exit(1)
	}

	fhirlog.Info("fhirload: wrote %s as page %d (%d record bytes) with uuid %s", *filePath, idx, len(record), header.UUID)
}
