package dbentry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"

	"kvstore/internal/application/service"
	"kvstore/internal/domain"
	"kvstore/internal/platform/repository"

	"github.com/go-chi/chi/v5"
)

type DbEntryHandler struct {
	saveService *service.SaveEntryService
	getService  *service.GetEntryService
	repository  *repository.LogIndexRepository
}

type EntryResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type StatsResponse struct {
	Size     int    `json:"size"`
	Capacity int    `json:"capacity"`
	LogPath  string `json:"log_path"`
}

func MapToEntryResponse(e domain.Entry) EntryResponse {
	return EntryResponse{
		Key:   e.Key(),
		Value: e.Value(),
	}
}

func NewDbEntryHandler(saveService *service.SaveEntryService,
	getService *service.GetEntryService,
	repository *repository.LogIndexRepository) *DbEntryHandler {
	return &DbEntryHandler{
		saveService: saveService,
		getService:  getService,
		repository:  repository,
	}
}

// SaveEntry stores the raw request body as the value of {key}.
func (h *DbEntryHandler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	if err := domain.ValidateEntry(key, string(body)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := h.saveService.Execute(service.SaveEntryCommand{
		Key:   key,
		Value: string(body),
	})
	if result.Err != nil {
		http.Error(w, "Write failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, MapToEntryResponse(result.Entry))
}

func (h *DbEntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	key, ok := keyParam(w, r)
	if !ok {
		return
	}
	result := h.getService.Execute(service.GetEntryQuery{
		Key: key,
	})
	if result.Err != nil {
		http.Error(w, "Read failed", http.StatusInternalServerError)
		return
	}
	if !result.Found {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, MapToEntryResponse(result.Entry))
}

// ListEntries returns every live entry sorted by key.
func (h *DbEntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries := h.repository.All()
	res := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, MapToEntryResponse(e))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
	writeJSON(w, http.StatusOK, res)
}

func (h *DbEntryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.repository.Stats()
	writeJSON(w, http.StatusOK, StatsResponse{
		Size:     stats.Size,
		Capacity: stats.Capacity,
		LogPath:  stats.LogPath,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// keyParam returns the decoded {key}. chi routes on RawPath when the request
// has one (e.g. an encoded '/'), and then the param is still escaped.
func keyParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return key, true
	}
	key, err := url.PathUnescape(key)
	if err != nil {
		http.Error(w, "Invalid key", http.StatusBadRequest)
		return "", false
	}
	return key, true
}
