package handler

import (
	"net/http"

	"github.com/goalhub/goalhub/internal/service"
	"github.com/goalhub/goalhub/internal/ui"
)

type LegalHandler struct {
	legalService *service.LegalService
}

func NewLegalHandler(legalService *service.LegalService) *LegalHandler {
	return &LegalHandler{
		legalService: legalService,
	}
}

func (h *LegalHandler) ShowPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.legalService.Page(r.PathValue("page"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ui.Render(w, r, "legal", ui.Page{
		Title: page.Title,
		Data:  page,
	})
}
