package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"medsched/internal/appointments/service"
	"medsched/internal/scheduling"
	apperrors "medsched/pkg/errors"
	"medsched/pkg/httpx"
	"medsched/pkg/logger"
	"medsched/pkg/model"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

type validateResponse struct {
	IsValid      bool                 `json:"is_valid"`
	Errors       []model.FieldMessage `json:"errors"`
	Warnings     []model.FieldMessage `json:"warnings"`
	Suggestions  []string             `json:"suggestions"`
	Alternatives []model.Alternative  `json:"alternatives"`
	// Flat message strings mirroring Errors/Warnings, kept for clients
	// that render plain lists.
	ErrorMessages   []string `json:"error_messages"`
	WarningMessages []string `json:"warning_messages"`
}

// slotEntry is the wire form of a slot; Time is the HH:MM label clients
// render in the picker grid.
type slotEntry struct {
	Time      string    `json:"time"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

type slotsRequest struct {
	SpecialistID       string `json:"specialist_id"`
	ServiceID          string `json:"service_id,omitempty"`
	Date               string `json:"date"`
	IncludeUnavailable bool   `json:"include_unavailable,omitempty"`
	AppointmentID      string `json:"appointment_id,omitempty"`
}

type slotsResponse struct {
	Success bool        `json:"success"`
	Date    string      `json:"date"`
	Slots   []slotEntry `json:"slots"`
}

// conflictsRequest names a proposed interval either directly, via the
// start/end instants, or as a (service, date, time) coordinate from which
// the end is derived by service duration.
type conflictsRequest struct {
	SpecialistID  string `json:"specialist_id"`
	ServiceID     string `json:"service_id,omitempty"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	StartDatetime string `json:"start_datetime,omitempty"`
	EndDatetime   string `json:"end_datetime,omitempty"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

type conflictsResponse struct {
	Success      bool                   `json:"success"`
	HasConflicts bool                   `json:"has_conflicts"`
	Conflicts    []model.ConflictDetail `json:"conflicts"`
}

func (h *AppointmentHandler) Validate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Validate", apperrors.InvalidInput("Invalid request body"))
		return
	}

	result, err := h.service.Validate(r.Context(), req)
	if err != nil {
		h.writeError(w, "Validate", err)
		return
	}

	resp := validateResponse{
		IsValid:         result.IsValid,
		Errors:          result.Errors,
		Warnings:        result.Warnings,
		Suggestions:     result.Suggestions,
		Alternatives:    result.Alternatives,
		ErrorMessages:   joinedMessages(result.Errors),
		WarningMessages: joinedMessages(result.Warnings),
	}
	// Empty collections serialize as [] so clients can iterate blindly.
	if resp.Errors == nil {
		resp.Errors = []model.FieldMessage{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []model.FieldMessage{}
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}
	if resp.Alternatives == nil {
		resp.Alternatives = []model.Alternative{}
	}

	if err := httpx.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Validate", "error", err)
	}
}

func (h *AppointmentHandler) GetSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req slotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "GetSlots", apperrors.InvalidInput("Invalid request body"))
		return
	}
	if req.SpecialistID == "" {
		h.writeError(w, "GetSlots", apperrors.InvalidInput("specialist_id is required"))
		return
	}
	if req.Date == "" {
		h.writeError(w, "GetSlots", apperrors.InvalidInput("date is required"))
		return
	}

	slots, err := h.service.GetSlots(r.Context(), scheduling.SlotQuery{
		SpecialistID:         req.SpecialistID,
		ServiceID:            req.ServiceID,
		Date:                 req.Date,
		IncludeUnavailable:   req.IncludeUnavailable,
		ExcludeAppointmentID: req.AppointmentID,
	})
	if err != nil {
		h.writeError(w, "GetSlots", err)
		return
	}

	entries := make([]slotEntry, 0, len(slots))
	for _, s := range slots {
		entries = append(entries, slotEntry{
			Time:      s.TimeLabel(),
			Start:     s.Start,
			End:       s.End,
			Available: s.Available,
		})
	}

	if err := httpx.WriteSuccess(w, slotsResponse{Success: true, Date: req.Date, Slots: entries}); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSlots", "error", err)
	}
}

func (h *AppointmentHandler) CheckConflicts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req conflictsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "CheckConflicts", apperrors.InvalidInput("Invalid request body"))
		return
	}
	if req.SpecialistID == "" {
		h.writeError(w, "CheckConflicts", apperrors.InvalidInput("specialist_id is required"))
		return
	}

	var report *model.ConflictReport
	var err error
	switch {
	case req.StartDatetime != "" || req.EndDatetime != "":
		var start, end time.Time
		if start, err = time.Parse(time.RFC3339, req.StartDatetime); err != nil {
			h.writeError(w, "CheckConflicts", apperrors.InvalidInput("start_datetime must be an RFC 3339 instant"))
			return
		}
		if end, err = time.Parse(time.RFC3339, req.EndDatetime); err != nil {
			h.writeError(w, "CheckConflicts", apperrors.InvalidInput("end_datetime must be an RFC 3339 instant"))
			return
		}
		report, err = h.service.CheckConflictsBetween(r.Context(), req.SpecialistID, start, end, req.AppointmentID)
	case req.Date != "" && req.Time != "":
		report, err = h.service.CheckConflicts(r.Context(), req.SpecialistID, req.ServiceID, req.Date, req.Time, req.AppointmentID)
	default:
		h.writeError(w, "CheckConflicts", apperrors.InvalidInput("either start_datetime/end_datetime or date/time is required"))
		return
	}
	if err != nil {
		h.writeError(w, "CheckConflicts", err)
		return
	}
	if report.Conflicts == nil {
		report.Conflicts = []model.ConflictDetail{}
	}

	resp := conflictsResponse{
		Success:      true,
		HasConflicts: report.HasConflicts,
		Conflicts:    report.Conflicts,
	}
	if err := httpx.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckConflicts", "error", err)
	}
}

func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Book", apperrors.InvalidInput("Invalid request body"))
		return
	}

	appt, err := h.service.Book(r.Context(), req)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if err := httpx.WriteCreated(w, appt); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "error", err)
	}
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appt, err := h.service.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httpx.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func joinedMessages(msgs []model.FieldMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.String())
	}
	return out
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httpx.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments/validate", h.Validate)
	router.POST("/api/v1/appointments/slots", h.GetSlots)
	router.POST("/api/v1/appointments/conflicts", h.CheckConflicts)
	router.POST("/api/v1/appointments", h.Book)
	router.DELETE("/api/v1/appointments/:id", h.Cancel)
}
