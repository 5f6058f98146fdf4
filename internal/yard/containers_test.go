package yard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
)

func TestEntryStartsInPark(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.containers.EnterByShippingLine(ctx, lineEntry("MSCU1234567"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusInPark, c.Status)
	assert.Nil(t, c.ExitDate)
	assert.Equal(t, models.SourceShippingLine, c.Source)
	assert.Equal(t, "Maersk", c.ShippingLineName)
	assert.Equal(t, "22G1", c.IsoCode)
	assert.Equal(t, fixedNow, c.CreatedAt)
	assert.Equal(t, []EventType{EventContainerEntered}, f.events.types())
}

func TestEntryNormalizesNumber(t *testing.T) {
	f := newFixture(t)

	c, err := f.containers.EnterByShippingLine(context.Background(), lineEntry(" mscu1234567 "))
	require.NoError(t, err)
	assert.Equal(t, "MSCU1234567", c.ContainerNumber)
}

func TestEntryValidation(t *testing.T) {
	cases := map[string]func(*LineEntry){
		"bad number":        func(e *LineEntry) { e.ContainerNumber = "MSCX1234567" },
		"short number":      func(e *LineEntry) { e.ContainerNumber = "MSCU123" },
		"missing line":      func(e *LineEntry) { e.ShippingLineID = "" },
		"unknown line":      func(e *LineEntry) { e.ShippingLineID = "99" },
		"missing iso":       func(e *LineEntry) { e.IsoCodeID = "" },
		"unknown iso":       func(e *LineEntry) { e.IsoCodeID = "99" },
		"bad type":          func(e *LineEntry) { e.Type = "FLAT" },
		"missing entryDate": func(e *LineEntry) { e.EntryDate = time.Time{} },
		"future entryDate":  func(e *LineEntry) { e.EntryDate = fixedNow.Add(time.Minute) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			in := lineEntry("MSCU1234567")
			mutate(&in)

			_, err := f.containers.EnterByShippingLine(context.Background(), in)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
			assert.Empty(t, f.events.types())
		})
	}
}

func TestEntryOfPresentNumberConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.containers.EnterByShippingLine(ctx, lineEntry("MSCU1234567"))
	require.NoError(t, err)

	_, err = f.containers.EnterByClient(ctx, clientEntry("MSCU1234567"))
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestClientEntryRequiresTransport(t *testing.T) {
	f := newFixture(t)
	in := clientEntry("MSCU1234567")
	in.TruckRef = ""

	_, err := f.containers.EnterByClient(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Contains(t, err.Error(), "truckRef is required")
}

func TestShippingLineScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := lineEntry("MSCU1234567")
	in.EntryDate = fixedNow.Truncate(24 * time.Hour)
	_, err := f.containers.EnterByShippingLine(ctx, in)
	require.NoError(t, err)

	found, err := f.containers.GetByNumber(ctx, "MSCU1234567")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, models.StatusInPark, found.Status)

	out, err := f.containers.ExitByShippingLine(ctx, "MSCU1234567", LineExit{Booking: "BK1", Vessel: "MAERSK TEMA", Client: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOut, out.Status)
	require.NotNil(t, out.ExitDate)
	assert.Equal(t, fixedNow, *out.ExitDate)
	assert.Equal(t, "BK1", out.Booking)
	assert.Equal(t, "MAERSK TEMA", out.Vessel)
	assert.Equal(t, "Acme", out.Client)
	assert.Equal(t, fixedNow, out.UpdatedAt)

	_, err = f.containers.ExitByShippingLine(ctx, "MSCU1234567", LineExit{Booking: "BK1"})
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))

	assert.Equal(t, []EventType{EventContainerEntered, EventContainerExited}, f.events.types())
}

func TestGetByNumberReturnsNilWhenAbsent(t *testing.T) {
	f := newFixture(t)

	c, err := f.containers.GetByNumber(context.Background(), "MSCU7654321")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestExitUnknownNumber(t *testing.T) {
	f := newFixture(t)

	_, err := f.containers.ExitByShippingLine(context.Background(), "MSCU7654321", LineExit{})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestExitDateBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.containers.EnterByShippingLine(ctx, lineEntry("MSCU1234567"))
	require.NoError(t, err)

	_, err = f.containers.ExitByShippingLine(ctx, "MSCU1234567", LineExit{ExitDate: fixedNow.Add(time.Hour)})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.containers.ExitByShippingLine(ctx, "MSCU1234567", LineExit{ExitDate: fixedNow.Add(-24 * time.Hour)})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	// a rejected exit leaves the container in the park
	c, err := f.containers.GetByNumber(ctx, "MSCU1234567")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInPark, c.Status)

	out, err := f.containers.ExitByShippingLine(ctx, "MSCU1234567", LineExit{ExitDate: fixedNow.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(-time.Hour), *out.ExitDate)
}

func TestBareExitDateOnEntryDayIsRaisedToEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.containers.EnterByShippingLine(ctx, lineEntry("MSCU1234567"))
	require.NoError(t, err)

	midnight := fixedNow.Truncate(24 * time.Hour)
	out, err := f.containers.ExitByShippingLine(ctx, "MSCU1234567", LineExit{ExitDate: midnight})
	require.NoError(t, err)
	assert.Equal(t, c.EntryDate, *out.ExitDate)
	assert.False(t, out.ExitDate.Before(out.EntryDate))
}

func TestBookedCannotExit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.db.Containers.Insert(ctx, models.Container{
		ContainerNumber: "MSCU1234567",
		Source:          models.SourceShippingLine,
		Status:          models.StatusBooked,
		EntryDate:       fixedNow.Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = f.containers.ExitByShippingLine(ctx, "MSCU1234567", LineExit{})
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))
}

func TestClientExitOnlyMergesComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.containers.EnterByClient(ctx, clientEntry("MSCU1234567"))
	require.NoError(t, err)

	got, err := f.containers.GetClientContainer(ctx, "MSCU1234567")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "SDV", got.Client)

	out, err := f.containers.ExitByClient(ctx, "MSCU1234567", ClientExit{Comments: "seal checked"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOut, out.Status)
	assert.Equal(t, "seal checked", out.Comments)
	assert.Equal(t, "SDV", out.Client)
	assert.Empty(t, out.Booking)
}

func TestClientExitRejectsLineContainer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.containers.EnterByShippingLine(ctx, lineEntry("MSCU1234567"))
	require.NoError(t, err)

	c, err := f.containers.GetClientContainer(ctx, "MSCU1234567")
	assert.NoError(t, err)
	assert.Nil(t, c)

	_, err = f.containers.ExitByClient(ctx, "MSCU1234567", ClientExit{})
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))
}

func TestExitByIDIgnoresOldVisits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.containers.EnterByShippingLine(ctx, lineEntry("MSCU1234567"))
	require.NoError(t, err)
	_, err = f.containers.ExitByID(ctx, first.ID, models.SourceShippingLine, LineExit{})
	require.NoError(t, err)

	second, err := f.containers.EnterByShippingLine(ctx, lineEntry("MSCU1234567"))
	require.NoError(t, err)

	_, err = f.containers.ExitByID(ctx, first.ID, models.SourceShippingLine, LineExit{})
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))

	current, err := f.containers.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInPark, current.Status)
}

// interleavingStore runs between once, right after the first number lookup,
// to stage a racing exit and re-entry.
type interleavingStore struct {
	store.ContainerStore
	once    sync.Once
	between func()
}

func (s *interleavingStore) FindByNumber(ctx context.Context, number string) (models.Container, error) {
	c, err := s.ContainerStore.FindByNumber(ctx, number)
	s.once.Do(s.between)
	return c, err
}

func TestExitValidatedAgainstOneVisitNeverReleasesTheNext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := lineEntry("MSCU1234567")
	in.EntryDate = fixedNow.Add(-5 * time.Hour)
	_, err := f.containers.EnterByShippingLine(ctx, in)
	require.NoError(t, err)

	inner := f.containers.Containers
	var later models.Container
	f.containers.Containers = &interleavingStore{ContainerStore: inner, between: func() {
		_, err := inner.Exit(ctx, "MSCU1234567", models.ExitUpdate{
			Source:   models.SourceShippingLine,
			ExitDate: fixedNow.Add(-4 * time.Hour),
		}, fixedNow)
		require.NoError(t, err)
		later, err = inner.Insert(ctx, models.Container{
			ContainerNumber: "MSCU1234567",
			Source:          models.SourceShippingLine,
			Type:            models.TypeDry,
			Status:          models.StatusInPark,
			EntryDate:       fixedNow.Add(-time.Hour),
		})
		require.NoError(t, err)
	}}

	_, err = f.containers.ExitByShippingLine(ctx, "MSCU1234567", LineExit{ExitDate: fixedNow.Add(-3 * time.Hour)})
	assert.True(t, errors.Is(err, apperr.ErrInvalidState), "got %v", err)

	current, err := inner.Get(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInPark, current.Status)
	assert.Nil(t, current.ExitDate)
}

func TestConcurrentServiceExitsSucceedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.containers.EnterByShippingLine(ctx, lineEntry("MSCU1234567"))
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.containers.ExitByShippingLine(ctx, "MSCU1234567", LineExit{Booking: "BK1"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, apperr.ErrInvalidState), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
}

func TestUpdateNeverTouchesLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.containers.EnterByShippingLine(ctx, lineEntry("MSCU1234567"))
	require.NoError(t, err)

	iso := "2"
	reefer := models.TypeReefer
	updated, err := f.containers.Update(ctx, c.ID, models.ContainerPatch{IsoCodeID: &iso, Type: &reefer})
	require.NoError(t, err)
	assert.Equal(t, "45G1", updated.IsoCode)
	assert.Equal(t, models.TypeReefer, updated.Type)
	assert.Equal(t, models.StatusInPark, updated.Status)
	assert.Equal(t, c.EntryDate, updated.EntryDate)

	bad := "99"
	_, err = f.containers.Update(ctx, c.ID, models.ContainerPatch{IsoCodeID: &bad})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	flat := models.ContainerType("FLAT")
	_, err = f.containers.Update(ctx, c.ID, models.ContainerPatch{Type: &flat})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestDeleteContainer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.containers.EnterByShippingLine(ctx, lineEntry("MSCU1234567"))
	require.NoError(t, err)

	require.NoError(t, f.containers.Delete(ctx, c.ID))
	assert.True(t, errors.Is(f.containers.Delete(ctx, c.ID), apperr.ErrNotFound))
	assert.Equal(t, []EventType{EventContainerEntered, EventContainerDeleted}, f.events.types())
}

func TestListFiltersConjunctively(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := lineEntry("MSCU0000001")
	_, err := f.containers.EnterByShippingLine(ctx, in)
	require.NoError(t, err)
	in = lineEntry("MSCU0000002")
	in.ShippingLineID = "2"
	_, err = f.containers.EnterByShippingLine(ctx, in)
	require.NoError(t, err)
	in = lineEntry("MSCU0000003")
	in.ShippingLineID = "2"
	_, err = f.containers.EnterByShippingLine(ctx, in)
	require.NoError(t, err)
	_, err = f.containers.ExitByShippingLine(ctx, "MSCU0000003", LineExit{})
	require.NoError(t, err)

	page, err := f.containers.List(ctx, store.ContainerFilter{Status: models.StatusInPark, ShippingLineID: "2"})
	require.NoError(t, err)
	require.Len(t, page.Containers, 1)
	assert.Equal(t, "MSCU0000002", page.Containers[0].ContainerNumber)

	all, err := f.containers.List(ctx, store.ContainerFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.LessOrEqual(t, len(all.Containers), 10)
}

type fakeUploader struct {
	key, contentType string
	body             []byte
}

func (u *fakeUploader) UploadFile(_ context.Context, file io.Reader, key, contentType string) (string, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	u.key, u.contentType, u.body = key, contentType, b
	return "https://cdn.example.com/" + key, nil
}

func TestAttachPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	up := &fakeUploader{}
	f.containers.Photos = up

	c, err := f.containers.EnterByShippingLine(ctx, lineEntry("MSCU1234567"))
	require.NoError(t, err)

	updated, err := f.containers.AttachPhoto(ctx, c.ID, "Dent.JPG", "image/jpeg", bytes.NewReader([]byte("jpeg")))
	require.NoError(t, err)
	require.Len(t, updated.Photos, 1)

	p := updated.Photos[0]
	assert.Equal(t, "Dent.JPG", p.FileName)
	assert.Equal(t, "image/jpeg", p.FileType)
	assert.Equal(t, "containers/"+c.ID+"/"+p.ID+".jpg", up.key)
	assert.Equal(t, "https://cdn.example.com/"+up.key, p.URL)
	assert.Equal(t, []byte("jpeg"), up.body)

	_, err = f.containers.AttachPhoto(ctx, c.ID, "notes.txt", "text/plain", bytes.NewReader(nil))
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.containers.AttachPhoto(ctx, "99", "a.jpg", "image/jpeg", bytes.NewReader(nil))
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestAttachPhotoWithoutStorage(t *testing.T) {
	f := newFixture(t)

	_, err := f.containers.AttachPhoto(context.Background(), "1", "a.jpg", "image/jpeg", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrPhotosDisabled)
}
