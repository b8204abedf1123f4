package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/labstack/echo/v4"
)

// EventHandler implements the administrative event CRUD endpoints.
// There is no authentication layer in front of these; the service
// trusts its deployment boundary.
type EventHandler struct {
	Events *repository.EventRepo
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *repository.EventRepo) *EventHandler {
	if events == nil {
		panic("nil repository passed to NewEventHandler")
	}
	return &EventHandler{Events: events}
}

// eventBody is the request payload for creating or updating an event.
type eventBody struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
	SeatLimit   uint32 `json:"seatLimit"`
}

func (b *eventBody) incomplete() bool {
	return strings.TrimSpace(b.Name) == "" ||
		strings.TrimSpace(b.Date) == "" ||
		strings.TrimSpace(b.Description) == "" ||
		b.SeatLimit == 0
}

// List handles GET /api/events.  It returns all events as a JSON array
// (empty array rather than null when none exist).
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.Events.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error fetching events"})
	}
	return c.JSON(http.StatusOK, events)
}

// Create handles POST /api/events.  All four fields are required and
// the seat limit must be positive; registered_users always starts at
// zero.  On success it returns 201 with the stored event.
func (h *EventHandler) Create(c echo.Context) error {
	var body eventBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if body.incomplete() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required"})
	}
	e := &model.Event{
		Name:        strings.TrimSpace(body.Name),
		Date:        strings.TrimSpace(body.Date),
		Description: body.Description,
		SeatLimit:   body.SeatLimit,
	}
	if err := h.Events.Create(c.Request().Context(), e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error creating event"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Event created successfully!", "event": e})
}

// Get handles GET /api/events/:eventId.  It returns the event fields
// an attendee needs to decide whether to register, including live seat
// availability.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("eventId"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid event id"})
	}
	e, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error fetching event"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"name":            e.Name,
		"date":            e.Date,
		"description":     e.Description,
		"seatLimit":       e.SeatLimit,
		"registeredUsers": e.RegisteredUsers,
	})
}

// Update handles PUT /api/events/:id.  It overwrites the editable
// fields; the registration counter is never touched by edits.
func (h *EventHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid event id"})
	}
	var body eventBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if body.incomplete() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required"})
	}
	e := &model.Event{
		ID:          id,
		Name:        strings.TrimSpace(body.Name),
		Date:        strings.TrimSpace(body.Date),
		Description: body.Description,
		SeatLimit:   body.SeatLimit,
	}
	if err := h.Events.Update(c.Request().Context(), e); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Event not found!"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Event updated successfully!", "event": e})
}

// Delete handles DELETE /api/events/:id.  Registrations referencing
// the event are kept; there is no cascade.
func (h *EventHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid event id"})
	}
	e, err := h.Events.Delete(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Event not found!"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error while deleting"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Event deleted successfully!", "event": e})
}
