package drive

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Handler exposes Drive browsing and demand sync over HTTP. Mounted on
// the internal ingestion server, not the public API.
type Handler struct {
	svc  *Service
	sync *DemandSync
}

func NewHandler(svc *Service, sync *DemandSync) *Handler {
	return &Handler{svc: svc, sync: sync}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/drive/files", h.handleListFiles).Methods(http.MethodGet)
	r.HandleFunc("/drive/files/{id}/download", h.handleDownload).Methods(http.MethodGet)
	r.HandleFunc("/drive/sync", h.handleSync).Methods(http.MethodPost)
}

func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	folderID := r.URL.Query().Get("folder")

	files, err := h.svc.ListFiles(folderID)
	if err != nil {
		log.Error().Err(err).Str("folder", folderID).Msg("failed to list drive files")
		writeError(w, http.StatusBadGateway, "failed to list files")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["id"]

	w.Header().Set("Content-Type", "application/octet-stream")
	if err := h.svc.DownloadFile(fileID, w); err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("failed to download drive file")
		writeError(w, http.StatusBadGateway, "failed to download file")
	}
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.sync.Run(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("demand sync failed")
		writeError(w, http.StatusInternalServerError, "demand sync failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
