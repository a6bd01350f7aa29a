// Command fhirinspect serves a read-only HTTP view over a page store: a
// listing of pages and, per page, its header metadata and decoded JSON
// body.
//
// Usage:
//
//	fhirinspect --addr :8085
package main

import (
	"flag"
	"net/http"

	"github.com/gorilla/mux"

	"fhirbin/api"
	"fhirbin/fhirconfig"
	"fhirbin/fhirlog"
	"fhirbin/pagestore"
)

var addr = flag.String("addr", ":8085", "listen address")

func main() {
	flag.Parse()

	cfg := fhirconfig.Load()
	fhirlog.Configure()

	store, err := pagestore.Open(cfg.StorePath, cfg)
	if err != nil {
		fhirlog.Error("fhirinspect: open store %s: %v", cfg.StorePath, err)
		return
	}
	defer store.Close()

	handler := api.NewInspectHandler(store)

	router := mux.NewRouter()
	router.HandleFunc("/pages", handler.ListPages).Methods(http.MethodGet)
	router.HandleFunc("/pages/{num}", handler.GetPage).Methods(http.MethodGet)

	fhirlog.Info("fhirinspect: serving %s on %s", cfg.StorePath, *addr)
	if err := http.ListenAndServe(*addr, router); err != nil {
		fhirlog.Error("fhirinspect: server exited: %v", err)
	}
}
