package services

import (
	"dealercrm_backend/internal/prefs"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/ws"

	"gorm.io/datatypes"
)

// PreferenceService owns the per-user preference document. Reads create the
// defaults lazily; updates are partial merges fanned out to the user's other
// sessions so open tabs converge without a reload.
type PreferenceService interface {
	Get(userID string) (*prefs.Document, error)
	Update(userID string, patch prefs.DocumentPatch, originSessionID string) (*prefs.Document, error)
	Reset(userID string, originSessionID string) (*prefs.Document, error)
}

type preferenceService struct {
	preferenceRepo repositories.PreferenceRepository
	hub            Broadcaster
}

func NewPreferenceService(preferenceRepo repositories.PreferenceRepository, hub Broadcaster) PreferenceService {
	return &preferenceService{preferenceRepo: preferenceRepo, hub: hub}
}

func (s *preferenceService) Get(userID string) (*prefs.Document, error) {
	pref, err := s.preferenceRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}
	doc := pref.Document()
	return &doc, nil
}

func (s *preferenceService) Update(userID string, patch prefs.DocumentPatch, originSessionID string) (*prefs.Document, error) {
	pref, err := s.preferenceRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}

	doc := pref.Document()
	doc.Apply(patch)
	pref.Doc = datatypes.NewJSONType(doc)

	if err := s.preferenceRepo.Save(pref); err != nil {
		return nil, err
	}

	s.broadcast(userID, originSessionID, &doc)
	return &doc, nil
}

func (s *preferenceService) Reset(userID string, originSessionID string) (*prefs.Document, error) {
	pref, err := s.preferenceRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}

	doc := prefs.Defaults()
	pref.Doc = datatypes.NewJSONType(doc)
	if err := s.preferenceRepo.Save(pref); err != nil {
		return nil, err
	}

	s.broadcast(userID, originSessionID, &doc)
	return &doc, nil
}

func (s *preferenceService) broadcast(userID, originSessionID string, doc *prefs.Document) {
	s.hub.BroadcastExcept(ws.UserRoom(userID), originSessionID, ws.Event{
		Type:    ws.EventPreferences,
		Payload: doc,
	})
}
