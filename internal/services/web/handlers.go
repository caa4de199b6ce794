package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/ebriony/castlight/internal/errors"
	"github.com/ebriony/castlight/internal/event"
	"github.com/ebriony/castlight/internal/event/service"
	"github.com/ebriony/castlight/internal/snapshot"
	"github.com/ebriony/castlight/internal/storage"
)

type handler struct {
	store   storage.EntityStore
	builder *snapshot.Builder
	svc     *service.Service
}

func (h *handler) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" /events/{slug}/runs/{number}/gallery", h.handleGallery)
	mux.HandleFunc(http.MethodGet+" /events/{slug}/runs/{number}/factions", h.handleFactions)
	mux.HandleFunc(http.MethodGet+" /events/{slug}/runs/{number}/quests", h.handleQuests)
	if h.svc != nil {
		admin := &adminHandler{handler: h, svc: h.svc}
		admin.routes(mux)
	}
	return mux
}

// resolvePair loads the event and run addressed by the request path.
func (h *handler) resolvePair(r *http.Request) (event.Event, event.Run, error) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		return event.Event{}, event.Run{}, apperrors.New(apperrors.CodeEventEmptySlug, "event slug is required")
	}
	number, err := strconv.Atoi(strings.TrimSpace(r.PathValue("number")))
	if err != nil || number <= 0 {
		return event.Event{}, event.Run{}, event.ErrInvalidRunNumber
	}

	ev, found, err := h.store.Event(r.Context(), slug)
	if err != nil {
		return event.Event{}, event.Run{}, apperrors.Wrap(apperrors.CodeStorageUnavailable, "load event", err)
	}
	if !found {
		return event.Event{}, event.Run{}, apperrors.New(apperrors.CodeEventNotFound, "event not found")
	}

	run, found, err := h.store.Run(r.Context(), slug, number)
	if err != nil {
		return event.Event{}, event.Run{}, apperrors.Wrap(apperrors.CodeStorageUnavailable, "load run", err)
	}
	if !found {
		return event.Event{}, event.Run{}, apperrors.New(apperrors.CodeRunNotFound, "run not found")
	}
	return ev, run, nil
}

func (h *handler) ensure(w http.ResponseWriter, r *http.Request) (*snapshot.Snapshot, bool) {
	ev, run, err := h.resolvePair(r)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	_, snap, err := h.builder.Ensure(r.Context(), ev, run)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeSnapshotBuildFailed, "build snapshot", err))
		return nil, false
	}
	return snap, true
}

// galleryResponse lists character views in ascending number order.
type galleryResponse struct {
	Characters  []*snapshot.CharacterView `json:"characters"`
	MaxChNumber int                       `json:"max_ch_number"`
}

func (h *handler) handleGallery(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.ensure(w, r)
	if !ok {
		return
	}

	resp := galleryResponse{
		Characters:  make([]*snapshot.CharacterView, 0, len(snap.Chars)),
		MaxChNumber: snap.MaxChNumber,
	}
	for _, number := range snap.CharacterNumbers() {
		view := snap.Chars[number]
		if view.Hide {
			continue
		}
		resp.Characters = append(resp.Characters, view)
	}
	writeJSON(w, http.StatusOK, resp)
}

// factionsResponse groups faction views by type, preserving store order.
type factionsResponse struct {
	Factions map[event.FactionType][]*snapshot.FactionView `json:"factions"`
}

func (h *handler) handleFactions(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.ensure(w, r)
	if !ok {
		return
	}

	resp := factionsResponse{Factions: make(map[event.FactionType][]*snapshot.FactionView, len(snap.FactionsTyp))}
	for typ, numbers := range snap.FactionsTyp {
		views := make([]*snapshot.FactionView, 0, len(numbers))
		for _, number := range numbers {
			if view, ok := snap.Factions[number]; ok {
				views = append(views, view)
			}
		}
		resp.Factions[typ] = views
	}
	writeJSON(w, http.StatusOK, resp)
}

// questsResponse carries the quest-builder sections of the snapshot.
type questsResponse struct {
	QuestTypes map[int]*snapshot.QuestTypeView `json:"quest_types"`
	Quests     map[int]*snapshot.QuestView     `json:"quests"`
	Traits     map[int]*snapshot.TraitView     `json:"traits"`
}

func (h *handler) handleQuests(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.ensure(w, r)
	if !ok {
		return
	}
	if snap.Quests == nil {
		writeError(w, apperrors.New(apperrors.CodeFeatureDisabled, "quest builder is not enabled for this event"))
		return
	}
	writeJSON(w, http.StatusOK, questsResponse{
		QuestTypes: snap.QuestTypes,
		Quests:     snap.Quests,
		Traits:     snap.Traits,
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("web: %v", err)
	}
	writeJSON(w, status, errorResponse{
		Code:    string(apperrors.GetCode(err)),
		Message: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("web: encode response: %v", err)
	}
}
