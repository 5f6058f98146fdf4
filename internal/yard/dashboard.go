// internal/yard/dashboard.go
package yard

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/rickb777/date"

	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
)

// MovementDays is the length of the movements series.
const MovementDays = 30

// ComputeStats aggregates the dashboard over every container. Days are
// calendar days in loc, the last one being the day of now.
func ComputeStats(containers []models.Container, lines []models.Reference, now time.Time, loc *time.Location) models.DashboardStats {
	stats := models.DashboardStats{
		ShippingLineStats: make([]models.ShippingLineStat, 0, len(lines)),
		MovementsByDay:    make([]models.DailyMovement, MovementDays),
	}

	today := date.NewAt(now.In(loc))
	first := today.Add(-(MovementDays - 1))
	for i := range stats.MovementsByDay {
		stats.MovementsByDay[i].Date = first.Add(date.PeriodOfDays(i)).String()
	}
	dayIndex := func(t time.Time) int {
		i := int(date.NewAt(t.In(loc)).Sub(first))
		if i < 0 || i >= MovementDays {
			return -1
		}
		return i
	}

	inPark := make(map[string]int)
	for _, c := range containers {
		stats.TotalContainers++
		switch c.Status {
		case models.StatusInPark:
			stats.ContainersInPark++
			if c.ShippingLineID != "" {
				inPark[c.ShippingLineID]++
			}
		case models.StatusOut:
			stats.ContainersOut++
		case models.StatusBooked:
			stats.ContainersBooked++
		}
		switch c.Type {
		case models.TypeDry:
			stats.DryContainers++
		case models.TypeReefer:
			stats.ReeferContainers++
		}

		if i := dayIndex(c.EntryDate); i >= 0 {
			stats.MovementsByDay[i].Entries++
		}
		if c.ExitDate != nil {
			if i := dayIndex(*c.ExitDate); i >= 0 {
				stats.MovementsByDay[i].Exits++
			}
		}
	}

	for _, l := range lines {
		stats.ShippingLineStats = append(stats.ShippingLineStats, models.ShippingLineStat{
			ID:    l.ID,
			Name:  l.DisplayName(),
			Count: inPark[l.ID],
		})
	}
	return stats
}

// DashboardService serves ComputeStats through a short-lived cache that is
// flushed on every write event.
type DashboardService struct {
	Containers    store.ContainerStore
	ShippingLines store.ReferenceStore
	Location      *time.Location
	Now           func() time.Time

	cache *cache.Cache
}

// NewDashboardService caches results for ttl. Zero keeps them until the next
// write, a negative ttl disables caching.
func NewDashboardService(containers store.ContainerStore, lines store.ReferenceStore, loc *time.Location, ttl time.Duration) *DashboardService {
	d := &DashboardService{
		Containers:    containers,
		ShippingLines: lines,
		Location:      loc,
		Now:           time.Now,
	}
	if ttl >= 0 {
		d.cache = cache.New(ttl, 10*time.Minute)
	}
	return d
}

func (d *DashboardService) Stats(ctx context.Context) (models.DashboardStats, error) {
	now := d.Now()
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	key := date.NewAt(now.In(loc)).String()

	if d.cache != nil {
		if cached, ok := d.cache.Get(key); ok {
			return cached.(models.DashboardStats), nil
		}
	}

	containers, err := d.Containers.All(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	lines, err := d.ShippingLines.List(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}

	stats := ComputeStats(containers, lines, now, loc)
	if d.cache != nil {
		d.cache.Set(key, stats, cache.DefaultExpiration)
	}
	return stats, nil
}

// Notify drops cached stats after any write.
func (d *DashboardService) Notify(Event) {
	if d.cache != nil {
		d.cache.Flush()
	}
}
