// internal/database/seeder.go
package database

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/auth"
	"container-yard-api-server/internal/logger"
	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
)

// SeedOptions controls the development data set.
type SeedOptions struct {
	MockContainers int
	RandSeed       int64
	Now            time.Time
}

var (
	seedShippingLines = []models.Reference{
		{Name: "Maersk", Code: "MSK"},
		{Name: "MSC", Code: "MSC"},
		{Name: "CMA CGM", Code: "CMA"},
		{Name: "Hapag-Lloyd", Code: "HPL"},
		{Name: "Evergreen", Code: "EGL"},
		{Name: "COSCO", Code: "COS"},
	}
	seedIsoCodes = []models.Reference{
		{Code: "22G1", Description: "20' General Purpose"},
		{Code: "42G1", Description: "40' General Purpose"},
		{Code: "45G1", Description: "40' High Cube"},
		{Code: "22R1", Description: "20' Refrigerated"},
		{Code: "42R1", Description: "40' Refrigerated"},
	}
	seedClients = []models.Reference{
		{Name: "Bolloré Transport & Logistics", Code: "BTL"},
		{Name: "Necotrans", Code: "NCT"},
		{Name: "SDV", Code: "SDV"},
	}

	mockVessels      = []string{"MAERSK TEMA", "MSC ANNA", "CMA CGM ANTOINE", "EVER GIVEN"}
	mockTransporters = []string{"TransCo", "FastFreight", "GlobalLogistics", "ExpressCargo"}
)

// Seed loads the default accounts, the reference data and, when asked, a
// batch of generated containers. Collections that already hold data are left
// alone, so it is safe to run on every start.
func Seed(ctx context.Context, stores store.Stores, opts SeedOptions) error {
	if err := SeedUsers(ctx, stores.Users, opts.Now); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := SeedReferenceData(ctx, stores.References, opts.Now); err != nil {
		return fmt.Errorf("seed reference data: %w", err)
	}
	if opts.MockContainers > 0 {
		if err := SeedMockContainers(ctx, stores, opts); err != nil {
			return fmt.Errorf("seed containers: %w", err)
		}
	}
	return nil
}

// SeedUsers creates the admin and operator accounts if they are missing.
func SeedUsers(ctx context.Context, users store.UserStore, now time.Time) error {
	defaults := []struct {
		user     models.User
		password string
	}{
		{models.User{Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin, Permissions: []string{models.PermissionAll}}, "admin123"},
		{models.User{Username: "user", Email: "user@example.com", Role: models.RoleUser, Permissions: []string{"read:containers", "create:containers", "update:containers"}}, "user123"},
	}

	for _, d := range defaults {
		_, err := users.GetByUsername(ctx, d.user.Username)
		if err == nil {
			logger.Log.WithField("username", d.user.Username).Debug("user already exists, seeding skipped")
			continue
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		hash, err := auth.HashPassword(d.password)
		if err != nil {
			return err
		}
		u := d.user
		u.Password = hash
		u.CreatedAt = now
		if _, err := users.Create(ctx, u); err != nil {
			return err
		}
		logger.Log.WithField("username", u.Username).Info("user seeded")
	}
	return nil
}

func SeedReferenceData(ctx context.Context, refs store.References, now time.Time) error {
	for _, set := range []struct {
		store store.ReferenceStore
		items []models.Reference
	}{
		{refs.ShippingLines, seedShippingLines},
		{refs.IsoCodes, seedIsoCodes},
		{refs.Clients, seedClients},
	} {
		existing, err := set.store.List(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}
		for _, item := range set.items {
			item.Active = true
			item.CreatedAt = now
			item.UpdatedAt = now
			if _, err := set.store.Create(ctx, item); err != nil {
				return err
			}
		}
		logger.Log.WithFields(logrus.Fields{"kind": set.store.Kind(), "count": len(set.items)}).Info("reference data seeded")
	}
	return nil
}

// SeedMockContainers fills an empty container store with random traffic of
// the last 30 days. The same RandSeed and Now give the same data.
func SeedMockContainers(ctx context.Context, stores store.Stores, opts SeedOptions) error {
	existing, err := stores.Containers.All(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	lines, err := stores.References.ShippingLines.List(ctx)
	if err != nil {
		return err
	}
	isoCodes, err := stores.References.IsoCodes.List(ctx)
	if err != nil {
		return err
	}
	clients, err := stores.References.Clients.List(ctx)
	if err != nil {
		return err
	}
	if len(lines) == 0 || len(isoCodes) == 0 || len(clients) == 0 {
		return fmt.Errorf("reference data must be seeded before containers")
	}

	rnd := rand.New(rand.NewSource(opts.RandSeed))
	statuses := []models.ContainerStatus{models.StatusInPark, models.StatusOut, models.StatusBooked}
	types := []models.ContainerType{models.TypeDry, models.TypeReefer}

	created := 0
	for attempt := 0; created < opts.MockContainers && attempt < opts.MockContainers*3; attempt++ {
		line := lines[rnd.Intn(len(lines))]
		iso := isoCodes[rnd.Intn(len(isoCodes))]
		status := statuses[rnd.Intn(len(statuses))]

		entry := opts.Now.Add(-time.Duration(rnd.Intn(30)) * 24 * time.Hour)
		c := models.Container{
			ContainerNumber:  fmt.Sprintf("%sU%06d%d", line.Code, rnd.Intn(1000000), rnd.Intn(10)),
			Source:           models.SourceShippingLine,
			ShippingLineID:   line.ID,
			ShippingLineName: line.Name,
			IsoCodeID:        iso.ID,
			IsoCode:          iso.Code,
			Type:             types[rnd.Intn(len(types))],
			Status:           status,
			EntryDate:        entry,
			Transporter:      mockTransporters[rnd.Intn(len(mockTransporters))],
			TruckRef:         fmt.Sprintf("T-%d", rnd.Intn(1000)),
			CreatedAt:        entry,
			UpdatedAt:        entry,
		}
		if rnd.Float64() > 0.7 {
			c.Damages = "Minor dents on side panel"
		}
		if rnd.Float64() > 0.8 {
			c.Comments = "Container needs inspection before next use"
		}
		if status != models.StatusInPark {
			c.Client = clients[rnd.Intn(len(clients))].Name
		}

		switch status {
		case models.StatusBooked:
			c.Booking = fmt.Sprintf("BK%d", rnd.Intn(100000))
		case models.StatusOut:
			exit := entry.Add(time.Duration(rnd.Intn(15)) * 24 * time.Hour)
			if exit.After(opts.Now) {
				exit = opts.Now
			}
			c.ExitDate = &exit
			c.Vessel = mockVessels[rnd.Intn(len(mockVessels))]
			c.UpdatedAt = exit
		}

		if _, err := stores.Containers.Insert(ctx, c); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				continue
			}
			return err
		}
		created++
	}

	logger.Log.WithField("count", created).Info("mock containers seeded")
	return nil
}
