package handler

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"medsched/pkg/httpx"
	"medsched/pkg/logger"
	"medsched/pkg/model"
)

// CatalogLister is the read-only slice of the catalog the booking form
// needs to populate its service and specialist pickers.
type CatalogLister interface {
	ListServices(ctx context.Context) ([]*model.Service, error)
	ListSpecialists(ctx context.Context) ([]*model.Specialist, error)
}

type CatalogHandler struct {
	catalog CatalogLister
	log     *logger.Logger
}

func NewCatalogHandler(catalog CatalogLister, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		log:     log,
	}
}

type servicesResponse struct {
	Success  bool             `json:"success"`
	Services []*model.Service `json:"services"`
}

type specialistsResponse struct {
	Success     bool                `json:"success"`
	Specialists []*model.Specialist `json:"specialists"`
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	services, err := h.catalog.ListServices(r.Context())
	if err != nil {
		h.writeError(w, "ListServices", err)
		return
	}
	if services == nil {
		services = []*model.Service{}
	}

	if err := httpx.WriteSuccess(w, servicesResponse{Success: true, Services: services}); err != nil {
		h.log.Error("failed to write success response", "handler", "ListServices", "error", err)
	}
}

func (h *CatalogHandler) ListSpecialists(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	specialists, err := h.catalog.ListSpecialists(r.Context())
	if err != nil {
		h.writeError(w, "ListSpecialists", err)
		return
	}
	if specialists == nil {
		specialists = []*model.Specialist{}
	}

	if err := httpx.WriteSuccess(w, specialistsResponse{Success: true, Specialists: specialists}); err != nil {
		h.log.Error("failed to write success response", "handler", "ListSpecialists", "error", err)
	}
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httpx.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/services", h.ListServices)
	router.GET("/api/v1/specialists", h.ListSpecialists)
}
