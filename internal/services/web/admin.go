package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/ebriony/castlight/internal/errors"
	"github.com/ebriony/castlight/internal/event"
	"github.com/ebriony/castlight/internal/event/service"
)

// adminHandler exposes the entity write surface. Writes persist through the
// save service, which notifies the invalidation dispatcher.
type adminHandler struct {
	handler *handler
	svc     *service.Service
}

func (a *adminHandler) routes(mux *http.ServeMux) {
	mux.HandleFunc(http.MethodPut+" /events/{slug}", a.handleSaveEvent)
	mux.HandleFunc(http.MethodPut+" /events/{slug}/config/{key}", a.handleSetConfig)
	mux.HandleFunc(http.MethodPut+" /events/{slug}/characters", a.handleSaveCharacter)
	mux.HandleFunc(http.MethodPut+" /events/{slug}/factions", a.handleSaveFaction)
	mux.HandleFunc(http.MethodPut+" /events/{slug}/quests", a.handleSaveQuest)
	mux.HandleFunc(http.MethodPut+" /events/{slug}/traits", a.handleSaveTrait)
	mux.HandleFunc(http.MethodPut+" /events/{slug}/runs/{number}/registrations", a.handleSaveRegistration)
	mux.HandleFunc(http.MethodDelete+" /events/{slug}/runs/{number}/registrations/{characterID}", a.handleDeleteRegistration)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeMalformedRequest, "decode request body", err))
		return false
	}
	return true
}

// resolveEvent loads the event addressed by the request path.
func (a *adminHandler) resolveEvent(r *http.Request) (event.Event, error) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		return event.Event{}, apperrors.New(apperrors.CodeEventEmptySlug, "event slug is required")
	}
	ev, found, err := a.handler.store.Event(r.Context(), slug)
	if err != nil {
		return event.Event{}, apperrors.Wrap(apperrors.CodeStorageUnavailable, "load event", err)
	}
	if !found {
		return event.Event{}, apperrors.New(apperrors.CodeEventNotFound, "event not found")
	}
	return ev, nil
}

type saveEventRequest struct {
	Name       string `json:"name"`
	ParentSlug string `json:"parent_slug"`
	Features   struct {
		Character    bool `json:"character"`
		Faction      bool `json:"faction"`
		QuestBuilder bool `json:"quest_builder"`
		Mirror       bool `json:"mirror"`
	} `json:"features"`
}

func (a *adminHandler) handleSaveEvent(w http.ResponseWriter, r *http.Request) {
	var req saveEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ev := event.Event{
		Slug:       strings.TrimSpace(r.PathValue("slug")),
		Name:       req.Name,
		ParentSlug: req.ParentSlug,
		Features: event.Features{
			Character:    req.Features.Character,
			Faction:      req.Features.Faction,
			QuestBuilder: req.Features.QuestBuilder,
			Mirror:       req.Features.Mirror,
		},
	}
	if err := a.svc.SaveEvent(r.Context(), ev); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

type setConfigRequest struct {
	Value string `json:"value"`
}

func (a *adminHandler) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	ev, err := a.resolveEvent(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req setConfigRequest
	if !decodeBody(w, r, &req) {
		return
	}
	key := strings.TrimSpace(r.PathValue("key"))
	if err := a.svc.SetConfig(r.Context(), ev, key, req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

type saveCharacterRequest struct {
	ID       int64  `json:"id"`
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Teaser   string `json:"teaser"`
	Text     string `json:"text"`
	Hide     bool   `json:"hide"`
	MirrorID int64  `json:"mirror_id"`
	PlayerID string `json:"player_id"`
	Factions []int  `json:"factions"`
}

func (a *adminHandler) handleSaveCharacter(w http.ResponseWriter, r *http.Request) {
	ev, err := a.resolveEvent(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req saveCharacterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ch := event.Character{
		ID:        req.ID,
		EventSlug: ev.Slug,
		Number:    req.Number,
		Name:      req.Name,
		Title:     req.Title,
		Teaser:    req.Teaser,
		Text:      req.Text,
		Hide:      req.Hide,
		MirrorID:  req.MirrorID,
		PlayerID:  req.PlayerID,
		Factions:  req.Factions,
	}
	if err := a.svc.SaveCharacter(r.Context(), ev, ch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

type saveFactionRequest struct {
	ID     int64  `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
	Teaser string `json:"teaser"`
	Typ    string `json:"typ"`
	Order  int    `json:"order"`
}

func (a *adminHandler) handleSaveFaction(w http.ResponseWriter, r *http.Request) {
	ev, err := a.resolveEvent(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req saveFactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	f := event.Faction{
		ID:        req.ID,
		EventSlug: ev.Slug,
		Number:    req.Number,
		Name:      req.Name,
		Teaser:    req.Teaser,
		Typ:       event.FactionType(req.Typ),
		Order:     req.Order,
	}
	if err := a.svc.SaveFaction(r.Context(), ev, f); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

type saveQuestRequest struct {
	ID        int64  `json:"id"`
	Number    int    `json:"number"`
	TypNumber int    `json:"typ_number"`
	Name      string `json:"name"`
	Teaser    string `json:"teaser"`
	Hide      bool   `json:"hide"`
}

func (a *adminHandler) handleSaveQuest(w http.ResponseWriter, r *http.Request) {
	ev, err := a.resolveEvent(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req saveQuestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	q := event.Quest{
		ID:        req.ID,
		EventSlug: ev.Slug,
		Number:    req.Number,
		TypNumber: req.TypNumber,
		Name:      req.Name,
		Teaser:    req.Teaser,
		Hide:      req.Hide,
	}
	if err := a.svc.SaveQuest(r.Context(), ev, q); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type saveTraitRequest struct {
	ID          int64  `json:"id"`
	Number      int    `json:"number"`
	QuestNumber int    `json:"quest_number"`
	Name        string `json:"name"`
	Teaser      string `json:"teaser"`
	Hide        bool   `json:"hide"`
}

func (a *adminHandler) handleSaveTrait(w http.ResponseWriter, r *http.Request) {
	ev, err := a.resolveEvent(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req saveTraitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tr := event.Trait{
		ID:          req.ID,
		EventSlug:   ev.Slug,
		Number:      req.Number,
		QuestNumber: req.QuestNumber,
		Name:        req.Name,
		Teaser:      req.Teaser,
		Hide:        req.Hide,
	}
	if err := a.svc.SaveTrait(r.Context(), ev, tr); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

type saveRegistrationRequest struct {
	CharacterID int64  `json:"character_id"`
	PlayerID    string `json:"player_id"`
	PlayerFull  string `json:"player_full"`
	PlayerProf  string `json:"player_prof"`
}

func (a *adminHandler) resolveRun(r *http.Request, ev event.Event) (event.Run, error) {
	number, err := strconv.Atoi(strings.TrimSpace(r.PathValue("number")))
	if err != nil || number <= 0 {
		return event.Run{}, event.ErrInvalidRunNumber
	}
	run, found, err := a.handler.store.Run(r.Context(), ev.Slug, number)
	if err != nil {
		return event.Run{}, apperrors.Wrap(apperrors.CodeStorageUnavailable, "load run", err)
	}
	if !found {
		return event.Run{}, apperrors.New(apperrors.CodeRunNotFound, "run not found")
	}
	return run, nil
}

func (a *adminHandler) handleSaveRegistration(w http.ResponseWriter, r *http.Request) {
	ev, err := a.resolveEvent(r)
	if err != nil {
		writeError(w, err)
		return
	}
	run, err := a.resolveRun(r, ev)
	if err != nil {
		writeError(w, err)
		return
	}
	var req saveRegistrationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reg := event.Registration{
		RunID:       run.ID,
		CharacterID: req.CharacterID,
		PlayerID:    req.PlayerID,
		PlayerFull:  req.PlayerFull,
		PlayerProf:  req.PlayerProf,
	}
	if err := a.svc.SaveRegistration(r.Context(), ev, run, reg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (a *adminHandler) handleDeleteRegistration(w http.ResponseWriter, r *http.Request) {
	ev, err := a.resolveEvent(r)
	if err != nil {
		writeError(w, err)
		return
	}
	run, err := a.resolveRun(r, ev)
	if err != nil {
		writeError(w, err)
		return
	}
	characterID, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("characterID")), 10, 64)
	if err != nil || characterID <= 0 {
		writeError(w, apperrors.New(apperrors.CodeRegistrationEmptyCharacter, "character id is required"))
		return
	}
	if err := a.svc.DeleteRegistration(r.Context(), ev, run, characterID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
