package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/scheduler"
	"github.com/aretw0/stepwise/pkg/search"
)

type moveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wb.State())
}

func (s *Server) putSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GroupID *string `json:"groupId"`
		StepID  *string `json:"stepId"`
	}
	if err := readJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	ws := s.wb.Workspace()
	if body.GroupID != nil {
		if err := ws.SelectGroup(*body.GroupID); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if body.StepID != nil {
		if err := ws.SelectStep(*body.StepID); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.wb.State())
}

// -- Groups --

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, search.Groups(s.wb.State().StepGroups, r.URL.Query().Get("q")))
}

func (s *Server) addGroup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, s.wb.Workspace().AddGroup())
}

func (s *Server) updateGroup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := readJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := s.wb.Workspace().UpdateGroupTitle(chi.URLParam(r, "id"), body.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	groups, err := s.wb.Workspace().DeleteGroup(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) exportGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state := s.wb.State()
	i := state.GroupIndex(id)
	if i < 0 {
		s.fail(w, r, domain.ErrGroupNotFound)
		return
	}

	// The last result belongs to the active group only.
	var last *scheduler.Published
	if domain.Deref(state.SelectedGroupID) == id {
		if p, ok := s.wb.Latest(); ok {
			last = &p
		}
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(tui.GroupMarkdown(state.StepGroups[i], last)))
}

// -- Steps --

func (s *Server) listSteps(w http.ResponseWriter, r *http.Request) {
	g, ok := s.wb.Workspace().ActiveGroup()
	if !ok {
		s.fail(w, r, domain.ErrNoActiveGroup)
		return
	}
	writeJSON(w, http.StatusOK, search.Steps(g.Steps, r.URL.Query().Get("q")))
}

func (s *Server) addStep(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GroupID string `json:"groupId"`
	}
	if err := readJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	step, err := s.wb.Workspace().AddStep(body.GroupID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, step)
}

func (s *Server) updateStep(w http.ResponseWriter, r *http.Request) {
	var patch domain.StepPatch
	if err := decodePatch(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}
	step, err := s.wb.Workspace().UpdateStep(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, step)
}

func (s *Server) deleteStep(w http.ResponseWriter, r *http.Request) {
	steps, err := s.wb.Workspace().DeleteStep(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

func (s *Server) moveStep(w http.ResponseWriter, r *http.Request) {
	var body moveRequest
	if err := readJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	steps, err := s.wb.Workspace().MoveStep(body.From, body.To)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

// -- Library --

func (s *Server) listLibrary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, search.LibrarySteps(s.wb.State().LibrarySteps, r.URL.Query().Get("q")))
}

func (s *Server) addLibraryStep(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, s.wb.Workspace().AddLibraryStep())
}

func (s *Server) updateLibraryStep(w http.ResponseWriter, r *http.Request) {
	var patch domain.LibraryStepPatch
	if err := decodePatch(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.wb.Workspace().UpdateLibraryStep(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteLibraryStep(w http.ResponseWriter, r *http.Request) {
	items, err := s.wb.Workspace().DeleteLibraryStep(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) moveLibraryStep(w http.ResponseWriter, r *http.Request) {
	var body moveRequest
	if err := readJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.wb.Workspace().MoveLibraryStep(body.From, body.To))
}

func (s *Server) saveStepToLibrary(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StepID string `json:"stepId"`
	}
	if err := readJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.wb.Workspace().SaveStepToLibrary(body.StepID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) insertLibraryStep(w http.ResponseWriter, r *http.Request) {
	body := struct {
		At *int `json:"at"`
	}{}
	if err := readJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	at := -1
	if body.At != nil {
		at = *body.At
	}
	step, err := s.wb.Workspace().AddStepFromLibrary(chi.URLParam(r, "id"), at)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, step)
}

// -- Pipeline --

func (s *Server) getInput(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"text": s.wb.Input()})
}

func (s *Server) putInput(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := readJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	clean, err := s.policy.Clean(body.Text)
	if err != nil {
		s.logger.Warn("input rejected", "error", err, "size", len(body.Text))
		s.fail(w, r, err)
		return
	}
	if err := s.wb.SetInput(clean); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": clean})
}

type scopeBody struct {
	Scope    domain.Scope `json:"scope"`
	AnchorID string       `json:"anchorId,omitempty"`
}

func (s *Server) getScope(w http.ResponseWriter, r *http.Request) {
	scope, anchor := s.wb.Scope()
	writeJSON(w, http.StatusOK, scopeBody{Scope: scope, AnchorID: anchor})
}

func (s *Server) putScope(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Scope    string `json:"scope"`
		AnchorID string `json:"anchorId"`
	}
	if err := readJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	scope, err := domain.ParseScope(body.Scope)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.wb.SetScope(scope, body.AnchorID)
	writeJSON(w, http.StatusOK, scopeBody{Scope: scope, AnchorID: body.AnchorID})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	res, err := s.wb.RunNow(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getOutput(w http.ResponseWriter, r *http.Request) {
	p, ok := s.wb.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wb.Search(r.URL.Query().Get("q")))
}
