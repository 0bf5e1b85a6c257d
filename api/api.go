package api

import (
	"net/http"

	"github.com/zlutov/notepad/api/rest"
	"github.com/zlutov/notepad/cache"
	"github.com/zlutov/notepad/service"
	"github.com/zlutov/notepad/store"
)

type NotepadAPI struct {
	restHandler *rest.Handler
}

func NewNotepadAPI(
	notepadStore store.NotepadStore,
	notepadCache cache.NotepadCache,
	accessSecret []byte,
	refreshSecret []byte,
	cookies rest.CookieConfig,
) (*NotepadAPI, error) {
	svc, err := service.NewService(notepadStore, notepadCache, accessSecret, refreshSecret)
	if err != nil {
		return nil, err
	}

	return &NotepadAPI{
		restHandler: rest.NewHandler(svc, cookies),
	}, nil
}

func (notepadAPI *NotepadAPI) RegisterRoutes(mux *http.ServeMux) {
	h := notepadAPI.restHandler

	// Health check endpoint (no auth required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /create-account", h.HandleCreateAccount)
	mux.HandleFunc("POST /login", h.HandleLogin)
	mux.HandleFunc("POST /logout", h.HandleLogout)
	mux.HandleFunc("POST /refresh", h.HandleRefresh)

	mux.HandleFunc("GET /get-user", h.RequireAuth(h.HandleGetUser))
	mux.HandleFunc("POST /add-note", h.RequireAuth(h.HandleAddNote))
	mux.HandleFunc("PUT /edit-note/{id}", h.RequireAuth(h.HandleEditNote))
	mux.HandleFunc("PUT /update-note-pinned/{id}", h.RequireAuth(h.HandleUpdateNotePinned))
	mux.HandleFunc("GET /get-all-notes", h.RequireAuth(h.HandleGetAllNotes))
	mux.HandleFunc("GET /search-notes", h.RequireAuth(h.HandleSearchNotes))
	mux.HandleFunc("DELETE /delete-note/{id}", h.RequireAuth(h.HandleDeleteNote))
}

// CORSMiddleware allows the single configured frontend origin. Credentials
// must be allowed for cookies to travel cross-site, which also rules out a
// wildcard origin.
func CORSMiddleware(allowedOrigin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && origin == allowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
