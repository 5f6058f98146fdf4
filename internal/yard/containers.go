// internal/yard/containers.go
package yard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rickb777/date"
	"github.com/sirupsen/logrus"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/logger"
	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
	"container-yard-api-server/internal/validation"
)

// LineEntry registers a container dropped off for a shipping line.
type LineEntry struct {
	ContainerNumber string               `json:"containerNumber" binding:"required,containernumber"`
	ShippingLineID  string               `json:"shippingLineId" binding:"required"`
	IsoCodeID       string               `json:"isoCodeId" binding:"required"`
	Type            models.ContainerType `json:"type" binding:"required,oneof=DRY REEFER"`
	EntryDate       time.Time            `json:"entryDate" binding:"required"`
	Damages         string               `json:"damages"`
	Transporter     string               `json:"transporter"`
	TruckRef        string               `json:"truckRef"`
	Booking         string               `json:"booking"`
	Vessel          string               `json:"vessel"`
	Comments        string               `json:"comments"`
}

// ClientEntry registers a container brought in by a client.
type ClientEntry struct {
	ContainerNumber string               `json:"containerNumber" binding:"required,containernumber"`
	ClientID        string               `json:"clientId" binding:"required"`
	IsoCodeID       string               `json:"isoCodeId" binding:"required"`
	Type            models.ContainerType `json:"type" binding:"required,oneof=DRY REEFER"`
	EntryDate       time.Time            `json:"entryDate" binding:"required"`
	Transporter     string               `json:"transporter" binding:"required"`
	TruckRef        string               `json:"truckRef" binding:"required"`
	Damages         string               `json:"damages"`
	Comments        string               `json:"comments"`
}

// LineExit is the gate-out data of a shipping line exit. A zero ExitDate
// means now.
type LineExit struct {
	ExitDate time.Time `json:"exitDate"`
	Booking  string    `json:"booking"`
	Vessel   string    `json:"vessel"`
	Client   string    `json:"client"`
	Comments string    `json:"comments"`
}

type ClientExit struct {
	ExitDate time.Time `json:"exitDate"`
	Comments string    `json:"comments"`
}

// PhotoUploader stores damage photos and returns their public URL.
type PhotoUploader interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
}

var ErrPhotosDisabled = errors.New("photo storage is not configured")

// ContainerService owns the container lifecycle: entry, correction, exit.
type ContainerService struct {
	Containers store.ContainerStore
	Refs       store.References
	Photos     PhotoUploader
	Notifier   Notifier
	Now        func() time.Time
	// Location is the yard time zone, used to compare calendar days.
	Location *time.Location
}

func NormalizeNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}

func (s *ContainerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ContainerService) sameDay(a, b time.Time) bool {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return date.NewAt(a.In(loc)) == date.NewAt(b.In(loc))
}

func (s *ContainerService) notify(e Event) {
	if s.Notifier != nil {
		s.Notifier.Notify(e)
	}
}

func (s *ContainerService) List(ctx context.Context, filter store.ContainerFilter) (store.ContainerPage, error) {
	return s.Containers.List(ctx, filter.Normalize())
}

func (s *ContainerService) Get(ctx context.Context, id string) (models.Container, error) {
	return s.Containers.Get(ctx, id)
}

// GetByNumber returns nil when no record carries number.
func (s *ContainerService) GetByNumber(ctx context.Context, number string) (*models.Container, error) {
	c, err := s.Containers.FindByNumber(ctx, NormalizeNumber(number))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetClientContainer only finds containers that came in through the client gate.
func (s *ContainerService) GetClientContainer(ctx context.Context, number string) (*models.Container, error) {
	c, err := s.GetByNumber(ctx, number)
	if err != nil || c == nil || c.Source != models.SourceClient {
		return nil, err
	}
	return c, nil
}

func (s *ContainerService) EnterByShippingLine(ctx context.Context, in LineEntry) (models.Container, error) {
	in.ContainerNumber = NormalizeNumber(in.ContainerNumber)
	if err := validation.Struct(in); err != nil {
		return models.Container{}, err
	}

	line, err := s.resolve(ctx, models.KindShippingLine, in.ShippingLineID)
	if err != nil {
		return models.Container{}, err
	}
	iso, err := s.resolve(ctx, models.KindIsoCode, in.IsoCodeID)
	if err != nil {
		return models.Container{}, err
	}

	return s.enter(ctx, models.Container{
		ContainerNumber:  in.ContainerNumber,
		Source:           models.SourceShippingLine,
		ShippingLineID:   line.ID,
		ShippingLineName: line.DisplayName(),
		IsoCodeID:        iso.ID,
		IsoCode:          iso.Code,
		Type:             in.Type,
		EntryDate:        in.EntryDate,
		Damages:          in.Damages,
		Transporter:      in.Transporter,
		TruckRef:         in.TruckRef,
		Booking:          in.Booking,
		Vessel:           in.Vessel,
		Comments:         in.Comments,
	})
}

func (s *ContainerService) EnterByClient(ctx context.Context, in ClientEntry) (models.Container, error) {
	in.ContainerNumber = NormalizeNumber(in.ContainerNumber)
	if err := validation.Struct(in); err != nil {
		return models.Container{}, err
	}

	client, err := s.resolve(ctx, models.KindClient, in.ClientID)
	if err != nil {
		return models.Container{}, err
	}
	iso, err := s.resolve(ctx, models.KindIsoCode, in.IsoCodeID)
	if err != nil {
		return models.Container{}, err
	}

	return s.enter(ctx, models.Container{
		ContainerNumber: in.ContainerNumber,
		Source:          models.SourceClient,
		ClientID:        client.ID,
		Client:          client.DisplayName(),
		IsoCodeID:       iso.ID,
		IsoCode:         iso.Code,
		Type:            in.Type,
		EntryDate:       in.EntryDate,
		Damages:         in.Damages,
		Transporter:     in.Transporter,
		TruckRef:        in.TruckRef,
		Comments:        in.Comments,
	})
}

func (s *ContainerService) enter(ctx context.Context, c models.Container) (models.Container, error) {
	now := s.now()
	if c.EntryDate.IsZero() {
		return models.Container{}, apperr.Validation("entryDate is required")
	}
	if c.EntryDate.After(now) {
		return models.Container{}, apperr.Validation("entryDate cannot be in the future")
	}

	c.Status = models.StatusInPark
	c.ExitDate = nil
	c.CreatedAt = now
	c.UpdatedAt = now

	created, err := s.Containers.Insert(ctx, c)
	if err != nil {
		return models.Container{}, err
	}

	logger.Log.WithFields(logrus.Fields{
		"containerNumber": created.ContainerNumber,
		"source":          created.Source,
		"id":              created.ID,
	}).Info("container entered the yard")
	s.notify(containerEvent(EventContainerEntered, created))
	return created, nil
}

// resolve loads a referenced entity; an unknown id is a validation error.
func (s *ContainerService) resolve(ctx context.Context, kind models.ReferenceKind, id string) (models.Reference, error) {
	ref, err := s.Refs.ByKind(kind).Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Reference{}, apperr.Validation("%s %s does not exist", kind.Label(), id)
	}
	return ref, err
}

// Update corrects the descriptive fields of a container. Status, number and
// dates are never touched here.
func (s *ContainerService) Update(ctx context.Context, id string, patch models.ContainerPatch) (models.Container, error) {
	if patch.Type != nil && !patch.Type.Valid() {
		return models.Container{}, apperr.Validation("type must be one of [DRY REEFER]")
	}
	if patch.IsoCodeID != nil {
		iso, err := s.resolve(ctx, models.KindIsoCode, *patch.IsoCodeID)
		if err != nil {
			return models.Container{}, err
		}
		patch.IsoCode = &iso.Code
	}

	updated, err := s.Containers.Update(ctx, id, patch, s.now())
	if err != nil {
		return models.Container{}, err
	}
	s.notify(containerEvent(EventContainerUpdated, updated))
	return updated, nil
}

func (s *ContainerService) Delete(ctx context.Context, id string) error {
	c, err := s.Containers.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Containers.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.WithFields(logrus.Fields{"id": id, "containerNumber": c.ContainerNumber}).Info("container deleted")
	s.notify(containerEvent(EventContainerDeleted, c))
	return nil
}

// ExitByShippingLine releases the IN_PARK container with this number.
func (s *ContainerService) ExitByShippingLine(ctx context.Context, number string, in LineExit) (models.Container, error) {
	return s.exit(ctx, NormalizeNumber(number), lineExitUpdate(in))
}

// ExitByClient releases a container that entered through the client gate.
func (s *ContainerService) ExitByClient(ctx context.Context, number string, in ClientExit) (models.Container, error) {
	return s.exit(ctx, NormalizeNumber(number), clientExitUpdate(in))
}

// ExitByID resolves id to its container number and exits it. The record must
// itself be IN_PARK: an old OUT record never releases a later visit.
func (s *ContainerService) ExitByID(ctx context.Context, id string, source models.EntrySource, line LineExit) (models.Container, error) {
	c, err := s.Containers.Get(ctx, id)
	if err != nil {
		return models.Container{}, err
	}
	if c.Status != models.StatusInPark {
		return models.Container{}, apperr.InvalidState("container %s is not in the park (status %s)", c.ContainerNumber, c.Status)
	}
	upd := lineExitUpdate(line)
	if source == models.SourceClient {
		upd = clientExitUpdate(ClientExit{ExitDate: line.ExitDate, Comments: line.Comments})
	}
	upd.RecordID = c.ID
	return s.exit(ctx, c.ContainerNumber, upd)
}

func lineExitUpdate(in LineExit) models.ExitUpdate {
	return models.ExitUpdate{
		Source:   models.SourceShippingLine,
		ExitDate: in.ExitDate,
		Booking:  optional(in.Booking),
		Vessel:   optional(in.Vessel),
		Client:   optional(in.Client),
		Comments: optional(in.Comments),
	}
}

func clientExitUpdate(in ClientExit) models.ExitUpdate {
	return models.ExitUpdate{
		Source:   models.SourceClient,
		ExitDate: in.ExitDate,
		Comments: optional(in.Comments),
	}
}

func (s *ContainerService) exit(ctx context.Context, number string, upd models.ExitUpdate) (models.Container, error) {
	now := s.now()

	current, err := s.Containers.FindByNumber(ctx, number)
	if err != nil {
		return models.Container{}, err
	}
	if current.Status != models.StatusInPark {
		return models.Container{}, apperr.InvalidState("container %s is not in the park (status %s)", number, current.Status)
	}
	if upd.RecordID != "" && current.ID != upd.RecordID {
		return models.Container{}, apperr.InvalidState("container %s record %s is no longer in the park", number, upd.RecordID)
	}
	upd.RecordID = current.ID
	if upd.Source == models.SourceClient && current.Source != models.SourceClient {
		return models.Container{}, apperr.InvalidState("container %s was not brought in by a client", number)
	}

	if upd.ExitDate.IsZero() {
		upd.ExitDate = now
	}
	if upd.ExitDate.After(now) {
		return models.Container{}, apperr.Validation("exitDate cannot be in the future")
	}
	if upd.ExitDate.Before(current.EntryDate) {
		// Gate forms send a bare date (midnight); on the entry day itself that
		// means "today", so it is raised to the entry time.
		if !s.sameDay(upd.ExitDate, current.EntryDate) {
			return models.Container{}, apperr.Validation("exitDate cannot be before entryDate %s", current.EntryDate.Format(time.RFC3339))
		}
		upd.ExitDate = current.EntryDate
	}

	// The store re-checks IN_PARK and the record id atomically, so the dates
	// checked above belong to the record that leaves.
	updated, err := s.Containers.Exit(ctx, number, upd, now)
	if err != nil {
		return models.Container{}, err
	}

	logger.Log.WithFields(logrus.Fields{
		"containerNumber": updated.ContainerNumber,
		"source":          upd.Source,
		"id":              updated.ID,
	}).Info("container left the yard")
	s.notify(containerEvent(EventContainerExited, updated))
	return updated, nil
}

// AttachPhoto uploads a damage photo and records it on the container.
func (s *ContainerService) AttachPhoto(ctx context.Context, id, fileName, contentType string, file io.Reader) (models.Container, error) {
	if s.Photos == nil {
		return models.Container{}, ErrPhotosDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return models.Container{}, apperr.Validation("photo must be an image, got %q", contentType)
	}
	if _, err := s.Containers.Get(ctx, id); err != nil {
		return models.Container{}, err
	}

	photoID := uuid.NewString()
	key := fmt.Sprintf("containers/%s/%s%s", id, photoID, strings.ToLower(path.Ext(fileName)))
	url, err := s.Photos.UploadFile(ctx, file, key, contentType)
	if err != nil {
		return models.Container{}, err
	}

	updated, err := s.Containers.AddPhoto(ctx, id, models.MediaPointer{
		ID:       photoID,
		URL:      url,
		FileName: fileName,
		FileType: contentType,
	}, s.now())
	if err != nil {
		return models.Container{}, err
	}
	s.notify(containerEvent(EventContainerUpdated, updated))
	return updated, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
