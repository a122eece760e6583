package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router holds every handler the API serves
type Router struct {
	Users     *UserHandler
	Codes     *CodeHandler
	Scans     *ScanHandler
	History   *HistoryHandler
	Documents *DocumentHandler
	Health    *HealthHandler
	Auth      func(http.Handler) http.Handler
}

// Handler builds the route table. Everything under /api except auth and
// health requires a bearer token.
func (rt Router) Handler() *mux.Router {
	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/register", rt.Users.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", rt.Users.Login).Methods("POST")
	r.HandleFunc("/api/health", rt.Health.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(rt.Auth))

	api.HandleFunc("/auth/profile", rt.Users.GetProfile).Methods("GET")

	// Generator
	api.HandleFunc("/codes/validate", rt.Codes.Validate).Methods("POST")
	api.HandleFunc("/codes/generate", rt.Codes.Generate).Methods("POST")
	api.HandleFunc("/codes/render", rt.Codes.Render).Methods("POST")

	// Scanner
	api.HandleFunc("/scans", rt.Scans.Submit).Methods("POST")
	api.HandleFunc("/scans/stream", rt.Scans.Stream).Methods("GET")
	api.HandleFunc("/scans/current", rt.Scans.Dismiss).Methods("DELETE")

	// History
	api.HandleFunc("/history", rt.History.List).Methods("GET")
	api.HandleFunc("/history", rt.History.Clear).Methods("DELETE")
	api.HandleFunc("/history/current", rt.History.Current).Methods("GET")

	// Folders and documents
	api.HandleFunc("/folders", rt.Documents.ListFolders).Methods("GET")
	api.HandleFunc("/folders", rt.Documents.CreateFolder).Methods("POST")
	api.HandleFunc("/folders/{id:[0-9]+}", rt.Documents.RenameFolder).Methods("PUT")
	api.HandleFunc("/folders/{id:[0-9]+}", rt.Documents.DeleteFolder).Methods("DELETE")
	api.HandleFunc("/documents", rt.Documents.ListDocuments).Methods("GET")
	api.HandleFunc("/documents", rt.Documents.CreateDocument).Methods("POST")
	api.HandleFunc("/documents/{id:[0-9]+}", rt.Documents.GetDocument).Methods("GET")
	api.HandleFunc("/documents/{id:[0-9]+}", rt.Documents.UpdateDocument).Methods("PUT")
	api.HandleFunc("/documents/{id:[0-9]+}", rt.Documents.DeleteDocument).Methods("DELETE")
	// Register the static order route BEFORE the parameterized page routes
	api.HandleFunc("/documents/{id:[0-9]+}/pages/order", rt.Documents.ReorderPages).Methods("PUT")
	api.HandleFunc("/documents/{id:[0-9]+}/pages", rt.Documents.AddPages).Methods("POST")
	api.HandleFunc("/documents/{id:[0-9]+}/pages/{page:[0-9]+}", rt.Documents.GetPage).Methods("GET")
	api.HandleFunc("/documents/{id:[0-9]+}/pages/{page:[0-9]+}", rt.Documents.RemovePage).Methods("DELETE")

	return r
}
