package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"fhirbin/fhirconfig"
	"fhirbin/fhirlog"
	"fhirbin/pagestore"
	"fhirbin/reader"
)

// InspectHandler serves a read-only view over a page store: page listing
// and per-page header/body inspection. There is no write path — loading
// records is the fhirload command's job, not this server's.
type InspectHandler struct {
	store *pagestore.Store
}

// NewInspectHandler builds an InspectHandler backed by store.
func NewInspectHandler(store *pagestore.Store) *InspectHandler {
	return &InspectHandler{store: store}
}

type pageSummary struct {
	PageNum    int    `json:"pageNum"`
	ResourceID int    `json:"resourceId"`
	UUID       string `json:"uuid"`
}

// ListPages returns every data page's header metadata, skipping pages that
// haven't been allocated yet (an all-zero page header reads back as a nil
// UUID).
func (h *InspectHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	var pages []pageSummary
	for i := 1; ; i++ {
		raw, err := h.store.ReadPage(i)
		if err != nil {
			break
		}
		var ph pagestore.PageHeader
		if err := ph.Read(raw); err != nil {
			fhirlog.Warn("fhirinspect: page %d has an unreadable header: %v", i, err)
			continue
		}
		if ph.UUID.String() == "00000000-0000-0000-0000-000000000000" {
			continue
		}
		pages = append(pages, pageSummary{
			PageNum:    int(ph.PageNum),
			ResourceID: int(ph.ResourceID),
			UUID:       ph.UUID.String(),
		})
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"pages": pages})
}

// GetPage decodes one page's record body to JSON and returns it alongside
// its header metadata.
func (h *InspectHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	numStr := mux.Vars(r)["num"]
	num, err := strconv.Atoi(numStr)
	if err != nil || num < 1 {
		RespondError(w, http.StatusBadRequest, "page number must be a positive integer")
		return
	}

	raw, err := h.store.ReadPage(num)
	if err != nil {
		RespondError(w, http.StatusNotFound, "page not found")
		return
	}

	var ph pagestore.PageHeader
	if err := ph.Read(raw); err != nil {
		RespondError(w, http.StatusInternalServerError, "unreadable page header")
		return
	}

	body := raw[fhirconfig.PageHeaderSize():]
	if len(body) < 2 {
		RespondError(w, http.StatusInternalServerError, "page too small to hold a record")
		return
	}
	recordLen := 2 + int(body[0])<<8 + int(body[1])
	if recordLen > len(body) {
		RespondError(w, http.StatusInternalServerError, "record length exceeds page body")
		return
	}
	decoded, err := reader.Decode(body[:recordLen])
	if err != nil {
		RespondError(w, http.StatusUnprocessableEntity, "failed to decode record: "+err.Error())
		return
	}

	var parsed interface{}
	if err := DecodeJSONWithOptions(bytes.NewReader(decoded), &parsed, false); err != nil {
		RespondError(w, http.StatusInternalServerError, "decoded record is not valid JSON")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"pageNum":    ph.PageNum,
		"resourceId": ph.ResourceID,
		"uuid":       ph.UUID.String(),
		"resource":   parsed,
	})
}
