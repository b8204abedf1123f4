package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/service"
	"github.com/labstack/echo/v4"
)

// RegistrationHandler exposes the registration API: admission itself,
// per-event registration listings, ticket resend and attendance
// check-in.  Admission goes through the AdmissionService; the simpler
// operations talk to the repositories directly.
type RegistrationHandler struct {
	Admission *service.AdmissionService
	Events    *repository.EventRepo
	Regs      *repository.RegistrationRepo
	Outbox    *repository.OutboxRepo
}

// NewRegistrationHandler constructs a RegistrationHandler.  All
// dependencies must be non-nil.
func NewRegistrationHandler(admission *service.AdmissionService, events *repository.EventRepo, regs *repository.RegistrationRepo, outbox *repository.OutboxRepo) *RegistrationHandler {
	if admission == nil || events == nil || regs == nil || outbox == nil {
		panic("nil dependency passed to NewRegistrationHandler")
	}
	return &RegistrationHandler{Admission: admission, Events: events, Regs: regs, Outbox: outbox}
}

// Register handles POST /api/register.  The body carries the
// registrant's name, email and the target event ID.  Rejections map
// onto distinct messages: 404 for a missing event, 400 for missing
// fields, duplicates, a closed registration window or a full event.
// A 200 response means the registration is durably committed and the
// ticket email is queued for delivery.
func (h *RegistrationHandler) Register(c echo.Context) error {
	var body struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		EventID uint64 `json:"eventId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	msg, err := h.Admission.Register(c.Request().Context(), body.Name, body.Email, body.EventID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required"})
		case errors.Is(err, service.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Event not found"})
		case errors.Is(err, service.ErrAlreadyRegistered):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "You have already registered for this event!"})
		case errors.Is(err, service.ErrRegistrationClosed):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Registration closed! Event date has passed."})
		case errors.Is(err, service.ErrEventFull):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Event is fully booked!"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to register"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// ListByEvent handles GET /api/events/:id/registrations.  Ticket bytes
// are omitted from listings.
func (h *RegistrationHandler) ListByEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid event id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Events.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error fetching event"})
	}
	regs, err := h.Regs.ListByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error fetching registrations"})
	}
	return c.JSON(http.StatusOK, regs)
}

// Resend handles POST /api/registrations/:id/resend.  It enqueues a
// fresh notification for an existing registration.  Delivery is
// at-least-once; resending an already delivered ticket just sends the
// same ticket again.
func (h *RegistrationHandler) Resend(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid registration id"})
	}
	ctx := c.Request().Context()
	reg, err := h.Regs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error fetching registration"})
	}
	if err := h.Outbox.Enqueue(ctx, reg.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to queue resend"})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"message": "Ticket resend queued"})
}

// CheckIn handles POST /api/registrations/:id/checkin.  It marks the
// registration as attended; a second check-in for the same ticket is a
// conflict.
func (h *RegistrationHandler) CheckIn(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid registration id"})
	}
	ok, err := h.Regs.MarkAttended(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to check in"})
	}
	if !ok {
		return c.JSON(http.StatusConflict, echo.Map{"message": "Already checked in"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Checked in!"})
}
