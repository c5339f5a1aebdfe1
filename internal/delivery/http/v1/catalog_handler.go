package v1

import (
	"net/http"

	"artkit-backend/internal/usecase"
	"artkit-backend/pkg/utils"
)

type CatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: uc}
}

func (h *CatalogHandler) ListArtTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.catalogUC.Snapshot(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusBadGateway, "Catalog unavailable")
		return
	}
	utils.WriteJSON(w, http.StatusOK, tools)
}

func (h *CatalogHandler) GetArtTool(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	tool, err := h.catalogUC.GetByID(r.Context(), id)
	if err != nil {
		utils.WriteError(w, http.StatusBadGateway, "Catalog unavailable")
		return
	}
	if tool == nil {
		utils.WriteError(w, http.StatusNotFound, "Art tool not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, tool)
}

// RefreshCatalog forces a remote fetch and cache rewrite. Admin only.
func (h *CatalogHandler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	tools, err := h.catalogUC.Refresh(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusBadGateway, "Catalog refresh failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int{"count": len(tools)})
}
