package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/handler"
	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/service"
)

// stubStore drives the admission service from canned state so the
// handler's error-to-response mapping can be exercised without a
// database.
type stubStore struct {
	event      *model.Event
	registered bool
	admitErr   error
}

func (s *stubStore) GetEvent(_ context.Context, id uint64) (*model.Event, error) {
	if s.event == nil || s.event.ID != id {
		return nil, repository.ErrEventNotFound
	}
	cp := *s.event
	return &cp, nil
}

func (s *stubStore) HasRegistration(_ context.Context, _ string, _ uint64) (bool, error) {
	return s.registered, nil
}

func (s *stubStore) Admit(_ context.Context, reg *model.Registration) error {
	if s.admitErr != nil {
		return s.admitErr
	}
	reg.ID = 1
	return nil
}

func postRegister(t *testing.T, h *handler.RegistrationHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Register(e.NewContext(req, rec)))
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	openEvent := &model.Event{ID: 1, Name: "GopherCon", Date: "2099-01-01", SeatLimit: 10}
	validBody := `{"name":"Alice","email":"a@x.com","eventId":1}`

	for _, tc := range []struct {
		name       string
		store      *stubStore
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "success",
			store:      &stubStore{event: openEvent},
			body:       validBody,
			wantStatus: http.StatusOK,
			wantMsg:    "Alice, your ticket is on its way to a@x.com!",
		},
		{
			name:       "missing fields",
			store:      &stubStore{event: openEvent},
			body:       `{"name":"","email":"a@x.com","eventId":1}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "All fields are required",
		},
		{
			name:       "event not found",
			store:      &stubStore{},
			body:       validBody,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Event not found",
		},
		{
			name:       "duplicate",
			store:      &stubStore{event: openEvent, registered: true},
			body:       validBody,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "You have already registered for this event!",
		},
		{
			name:       "registration closed",
			store:      &stubStore{event: &model.Event{ID: 1, Name: "Retro", Date: "2000-01-01", SeatLimit: 10}},
			body:       validBody,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Registration closed! Event date has passed.",
		},
		{
			name:       "fully booked",
			store:      &stubStore{event: openEvent, admitErr: repository.ErrEventFull},
			body:       validBody,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Event is fully booked!",
		},
		{
			name:       "duplicate lost race on insert",
			store:      &stubStore{event: openEvent, admitErr: repository.ErrDuplicateRegistration},
			body:       validBody,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "You have already registered for this event!",
		},
		{
			name:       "malformed body",
			store:      &stubStore{event: openEvent},
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request body",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := &handler.RegistrationHandler{Admission: service.NewAdmissionService(tc.store)}
			rec := postRegister(t, h, tc.body)
			require.Equal(t, tc.wantStatus, rec.Code)
			require.Contains(t, rec.Body.String(), tc.wantMsg)
		})
	}
}
