// internal/yard/references.go
package yard

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/logger"
	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
	"container-yard-api-server/internal/validation"
)

// DeletePolicy decides what happens to a reference that containers still use.
type DeletePolicy string

const (
	// DeleteAllow removes the entity; containers keep the dangling id.
	DeleteAllow DeletePolicy = "allow"
	// DeleteBlock refuses while a present container references the entity.
	DeleteBlock DeletePolicy = "block"
)

// ReferenceInput is the create payload shared by the three reference screens.
type ReferenceInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

type ReferenceService struct {
	Refs         store.References
	Containers   store.ContainerStore
	DeletePolicy DeletePolicy
	Notifier     Notifier
	Now          func() time.Time
}

func (s *ReferenceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ReferenceService) storeFor(kind models.ReferenceKind) (store.ReferenceStore, error) {
	st := s.Refs.ByKind(kind)
	if st == nil {
		return nil, apperr.NotFound("unknown reference collection %s", kind)
	}
	return st, nil
}

func (s *ReferenceService) changed(kind models.ReferenceKind, ref models.Reference) {
	if s.Notifier != nil {
		s.Notifier.Notify(Event{Type: EventReferenceChanged, Kind: kind, Reference: &ref})
	}
}

func (s *ReferenceService) List(ctx context.Context, kind models.ReferenceKind) ([]models.Reference, error) {
	st, err := s.storeFor(kind)
	if err != nil {
		return nil, err
	}
	return st.List(ctx)
}

func (s *ReferenceService) Get(ctx context.Context, kind models.ReferenceKind, id string) (models.Reference, error) {
	st, err := s.storeFor(kind)
	if err != nil {
		return models.Reference{}, err
	}
	return st.Get(ctx, id)
}

func (s *ReferenceService) Create(ctx context.Context, kind models.ReferenceKind, in ReferenceInput) (models.Reference, error) {
	st, err := s.storeFor(kind)
	if err != nil {
		return models.Reference{}, err
	}

	now := s.now()
	ref := models.Reference{
		Name:        strings.TrimSpace(in.Name),
		Code:        strings.ToUpper(strings.TrimSpace(in.Code)),
		Description: strings.TrimSpace(in.Description),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Active != nil {
		ref.Active = *in.Active
	}
	if err := validateReference(kind, ref); err != nil {
		return models.Reference{}, err
	}

	created, err := st.Create(ctx, ref)
	if err != nil {
		return models.Reference{}, err
	}
	logger.Log.WithFields(logrus.Fields{"kind": kind, "id": created.ID}).Info("reference created")
	s.changed(kind, created)
	return created, nil
}

// Update merges patch over the current record; the merged record must still
// be valid.
func (s *ReferenceService) Update(ctx context.Context, kind models.ReferenceKind, id string, patch models.ReferencePatch) (models.Reference, error) {
	st, err := s.storeFor(kind)
	if err != nil {
		return models.Reference{}, err
	}
	current, err := st.Get(ctx, id)
	if err != nil {
		return models.Reference{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if patch.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*patch.Code))
		patch.Code = &code
	}
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		patch.Description = &desc
	}
	merged := current
	patch.Apply(&merged)
	if err := validateReference(kind, merged); err != nil {
		return models.Reference{}, err
	}

	updated, err := st.Update(ctx, id, patch, s.now())
	if err != nil {
		return models.Reference{}, err
	}
	s.changed(kind, updated)
	return updated, nil
}

func (s *ReferenceService) Delete(ctx context.Context, kind models.ReferenceKind, id string) error {
	st, err := s.storeFor(kind)
	if err != nil {
		return err
	}
	ref, err := st.Get(ctx, id)
	if err != nil {
		return err
	}

	if s.DeletePolicy == DeleteBlock {
		n, err := s.presentUsers(ctx, kind, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("%s %s is used by %d container(s) in the yard", kind.Label(), id, n)
		}
	}

	if err := st.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.WithFields(logrus.Fields{"kind": kind, "id": id}).Info("reference deleted")
	s.changed(kind, ref)
	return nil
}

// presentUsers counts IN_PARK and BOOKED containers pointing at id.
func (s *ReferenceService) presentUsers(ctx context.Context, kind models.ReferenceKind, id string) (int, error) {
	all, err := s.Containers.All(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range all {
		if !c.Status.Present() {
			continue
		}
		var ref string
		switch kind {
		case models.KindShippingLine:
			ref = c.ShippingLineID
		case models.KindIsoCode:
			ref = c.IsoCodeID
		case models.KindClient:
			ref = c.ClientID
		}
		if ref == id {
			n++
		}
	}
	return n, nil
}

func validateReference(kind models.ReferenceKind, r models.Reference) error {
	switch kind {
	case models.KindShippingLine:
		if r.Name == "" {
			return apperr.Validation("name is required")
		}
		if !validation.LineCodePattern.MatchString(r.Code) {
			return apperr.Validation("code must be 1 to 3 uppercase letters")
		}
	case models.KindIsoCode:
		if !validation.IsoCodePattern.MatchString(r.Code) {
			return apperr.Validation("code must look like 22G1")
		}
		if r.Description == "" {
			return apperr.Validation("description is required")
		}
	case models.KindClient:
		if r.Name == "" {
			return apperr.Validation("name is required")
		}
	}
	return nil
}
