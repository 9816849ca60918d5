// ABOUTME: HTTP handlers translating requests into controller calls
// ABOUTME: Each request mounts a fresh controller bound to the shared session
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/viewmodel"
	"github.com/harperreed/shaft/viz"
)

// navRecorder remembers the last redirect a controller asked for.
type navRecorder struct {
	mu   sync.Mutex
	path string
}

func (n *navRecorder) Redirect(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()
}

func (n *navRecorder) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

type screen interface {
	Mount(ctx context.Context)
	Unmount()
	Error() string
}

// mount loads a screen and reports whether the handler may continue.
func mount(w http.ResponseWriter, r *http.Request, sc screen, nav *navRecorder) bool {
	sc.Mount(r.Context())
	if nav.Path() == viewmodel.PathLogin {
		writeError(w, http.StatusUnauthorized, "Not signed in")
		return false
	}
	if msg := sc.Error(); msg != "" {
		writeError(w, http.StatusInternalServerError, msg)
		return false
	}
	return true
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Current() != nil {
		http.Redirect(w, r, viewmodel.PathDashboard, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/explore", http.StatusSeeOther)
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "Shaft",
		"tagline": "Contacts, deals, tasks and calendar in one place",
		"links":   []string{viewmodel.PathLogin, viewmodel.PathRegister},
	})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Current() != nil {
		http.Redirect(w, r, viewmodel.PathDashboard, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"page": "login", "fields": []string{"email", "password"}})
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Current() != nil {
		http.Redirect(w, r, viewmodel.PathDashboard, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":   "register",
		"fields": []string{"displayName", "email", "password", "confirmPassword"},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	nav := &navRecorder{}
	login := viewmodel.NewLogin(s.sessions, nav, s.log)
	if err := login.Submit(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, login.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"redirect": nav.Path(),
		"session":  s.sessions.Current(),
	})
}

type registerRequest struct {
	DisplayName     string `json:"displayName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	nav := &navRecorder{}
	reg := viewmodel.NewRegister(s.sessions, nav, s.log)
	if err := reg.Submit(r.Context(), req.DisplayName, req.Email, req.Password, req.ConfirmPassword); err != nil {
		writeError(w, http.StatusBadRequest, reg.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"redirect": nav.Path(),
		"session":  s.sessions.Current(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		s.log.Warn().Err(err).Msg("logout reported an error")
	}
	http.Redirect(w, r, viewmodel.PathLogin, http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	dash := viewmodel.NewDashboard(s.sessions, s.stores, nav, s.log)
	defer dash.Unmount()
	if !mount(w, r, dash, nav) {
		return
	}
	writeJSON(w, http.StatusOK, dash.Snapshot())
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	a := viewmodel.NewAnalytics(s.sessions, s.stores.Deals, s.stores.Tasks, nav, s.log)
	defer a.Unmount()
	if !mount(w, r, a, nav) {
		return
	}
	writeJSON(w, http.StatusOK, a.Snapshot())
}

func (s *Server) handlePipelineGraph(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	a := viewmodel.NewAnalytics(s.sessions, s.stores.Deals, s.stores.Tasks, nav, s.log)
	defer a.Unmount()
	if !mount(w, r, a, nav) {
		return
	}

	dot, err := viz.PipelineGraph(r.Context(), a.Snapshot().Stages)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to render pipeline graph")
		writeError(w, http.StatusInternalServerError, "Failed to render pipeline")
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

// Contacts

type contactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (s *Server) contacts(nav *navRecorder) *viewmodel.Contacts {
	return viewmodel.NewContacts(s.sessions, s.stores.Contacts, nav, viewmodel.AlwaysConfirm{}, s.log)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	c := s.contacts(nav)
	defer c.Unmount()
	if !mount(w, r, c, nav) {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(c.Contacts()))
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	s.saveContact(w, r, "")
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	s.saveContact(w, r, chi.URLParam(r, "id"))
}

func (s *Server) saveContact(w http.ResponseWriter, r *http.Request, id string) {
	var req contactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	nav := &navRecorder{}
	c := s.contacts(nav)
	defer c.Unmount()
	if !mount(w, r, c, nav) {
		return
	}
	if id != "" && !c.Edit(id) {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}

	c.SetForm(viewmodel.ContactForm{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err := c.Submit(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, statusFor(id), nonNil(c.Contacts()))
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	c := s.contacts(nav)
	defer c.Unmount()
	if !mount(w, r, c, nav) {
		return
	}
	if err := c.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Deals

type dealRequest struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Stage  string `json:"stage"`
}

func (s *Server) deals(nav *navRecorder) *viewmodel.Deals {
	return viewmodel.NewDeals(s.sessions, s.stores.Deals, nav, viewmodel.AlwaysConfirm{}, s.log)
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	d := s.deals(nav)
	defer d.Unmount()
	if !mount(w, r, d, nav) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deals":  nonNil(d.Deals()),
		"stages": d.Stages(),
	})
}

func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	s.saveDeal(w, r, "")
}

func (s *Server) handleUpdateDeal(w http.ResponseWriter, r *http.Request) {
	s.saveDeal(w, r, chi.URLParam(r, "id"))
}

func (s *Server) saveDeal(w http.ResponseWriter, r *http.Request, id string) {
	var req dealRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	nav := &navRecorder{}
	d := s.deals(nav)
	defer d.Unmount()
	if !mount(w, r, d, nav) {
		return
	}
	if id != "" && !d.Edit(id) {
		writeError(w, http.StatusNotFound, "Deal not found")
		return
	}

	stage := req.Stage
	if stage == "" {
		stage = models.StageProspecting
	}
	d.SetForm(viewmodel.DealForm{Name: req.Name, Amount: req.Amount, Stage: stage})
	if err := d.Submit(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, statusFor(id), nonNil(d.Deals()))
}

func (s *Server) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	d := s.deals(nav)
	defer d.Unmount()
	if !mount(w, r, d, nav) {
		return
	}
	if err := d.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tasks

type taskRequest struct {
	Title string `json:"title"`
}

func (s *Server) tasks(nav *navRecorder) *viewmodel.TaskList {
	return viewmodel.NewTaskList(s.sessions, s.stores.Tasks, nav, viewmodel.AlwaysConfirm{}, s.log)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	t := s.tasks(nav)
	defer t.Unmount()
	if !mount(w, r, t, nav) {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(t.Tasks()))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	nav := &navRecorder{}
	t := s.tasks(nav)
	defer t.Unmount()
	if !mount(w, r, t, nav) {
		return
	}
	t.SetNewTitle(req.Title)
	if err := t.Add(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nonNil(t.Tasks()))
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	t := s.tasks(nav)
	defer t.Unmount()
	if !mount(w, r, t, nav) {
		return
	}
	if err := t.Toggle(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(t.Tasks()))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	t := s.tasks(nav)
	defer t.Unmount()
	if !mount(w, r, t, nav) {
		return
	}
	if err := t.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Events

type eventRequest struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (s *Server) calendar(nav *navRecorder) *viewmodel.Calendar {
	return viewmodel.NewCalendar(s.sessions, s.stores.Events, nav, viewmodel.AlwaysConfirm{}, s.log)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	c := s.calendar(nav)
	defer c.Unmount()
	if !mount(w, r, c, nav) {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(c.Events()))
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	nav := &navRecorder{}
	c := s.calendar(nav)
	defer c.Unmount()
	if !mount(w, r, c, nav) {
		return
	}
	if err := c.Add(r.Context(), req.Title, req.Start, req.End); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nonNil(c.Events()))
}

func (s *Server) handleMoveEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	nav := &navRecorder{}
	c := s.calendar(nav)
	defer c.Unmount()
	if !mount(w, r, c, nav) {
		return
	}
	if err := c.Drop(r.Context(), chi.URLParam(r, "id"), req.Start, req.End); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(c.Events()))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	nav := &navRecorder{}
	c := s.calendar(nav)
	defer c.Unmount()
	if !mount(w, r, c, nav) {
		return
	}
	if err := c.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(id string) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
