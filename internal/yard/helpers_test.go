package yard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store/memory"
)

var fixedNow = time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	db         *memory.DB
	containers *ContainerService
	refs       *ReferenceService
	events     *recorder
}

// newFixture seeds shipping lines 1 (Maersk) and 2 (MSC), ISO codes 1 (22G1)
// and 2 (45G1), and client 1 (SDV).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	ctx := context.Background()

	for _, r := range []models.Reference{{Name: "Maersk", Code: "MSK"}, {Name: "MSC", Code: "MSC"}} {
		_, err := db.ShippingLines.Create(ctx, r)
		require.NoError(t, err)
	}
	for _, r := range []models.Reference{{Code: "22G1", Description: "20' General Purpose"}, {Code: "45G1", Description: "40' High Cube"}} {
		_, err := db.IsoCodes.Create(ctx, r)
		require.NoError(t, err)
	}
	_, err := db.Clients.Create(ctx, models.Reference{Name: "SDV", Code: "SDV"})
	require.NoError(t, err)

	events := &recorder{}
	clock := func() time.Time { return fixedNow }
	stores := db.Stores()
	return &fixture{
		db:     db,
		events: events,
		containers: &ContainerService{
			Containers: stores.Containers,
			Refs:       stores.References,
			Notifier:   events,
			Now:        clock,
		},
		refs: &ReferenceService{
			Refs:         stores.References,
			Containers:   stores.Containers,
			DeletePolicy: DeleteAllow,
			Notifier:     events,
			Now:          clock,
		},
	}
}

func lineEntry(number string) LineEntry {
	return LineEntry{
		ContainerNumber: number,
		ShippingLineID:  "1",
		IsoCodeID:       "1",
		Type:            models.TypeDry,
		EntryDate:       fixedNow.Add(-2 * time.Hour),
	}
}

func clientEntry(number string) ClientEntry {
	return ClientEntry{
		ContainerNumber: number,
		ClientID:        "1",
		IsoCodeID:       "2",
		Type:            models.TypeReefer,
		EntryDate:       fixedNow.Add(-2 * time.Hour),
		Transporter:     "TransCo",
		TruckRef:        "T-12",
	}
}
