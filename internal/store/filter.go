// internal/store/filter.go
package store

import (
	"math"
	"strings"

	"container-yard-api-server/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ContainerFilter selects containers for the list screens. Empty criteria
// are not applied; the rest are ANDed together.
type ContainerFilter struct {
	Status         models.ContainerStatus
	ShippingLineID string
	Type           models.ContainerType
	IsoCodeID      string
	ClientID       string
	// ContainerNumber is a case-insensitive substring search.
	ContainerNumber string
	Page            int
	Limit           int
}

// ContainerPage is one window of a filtered listing.
type ContainerPage struct {
	Containers []models.Container `json:"containers"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}

// Normalize fills in the paging defaults.
func (f ContainerFilter) Normalize() ContainerFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	f.ContainerNumber = strings.TrimSpace(f.ContainerNumber)
	return f
}

// Offset is the number of filtered records before the requested page. It
// saturates at math.MaxInt for pages too far out to address.
func (f ContainerFilter) Offset() int {
	if f.Page <= 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

func (f ContainerFilter) Match(c models.Container) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.ShippingLineID != "" && c.ShippingLineID != f.ShippingLineID {
		return false
	}
	if f.Type != "" && c.Type != f.Type {
		return false
	}
	if f.IsoCodeID != "" && c.IsoCodeID != f.IsoCodeID {
		return false
	}
	if f.ClientID != "" && c.ClientID != f.ClientID {
		return false
	}
	if f.ContainerNumber != "" &&
		!strings.Contains(strings.ToLower(c.ContainerNumber), strings.ToLower(f.ContainerNumber)) {
		return false
	}
	return true
}

// TotalPages is ceil(total / limit).
func TotalPages(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Paginate filters all in order and cuts out the requested page.
func Paginate(all []models.Container, filter ContainerFilter) ContainerPage {
	f := filter.Normalize()

	matched := make([]models.Container, 0, len(all))
	for _, c := range all {
		if f.Match(c) {
			matched = append(matched, c)
		}
	}

	start := min(f.Offset(), len(matched))
	end := min(start+f.Limit, len(matched))

	return ContainerPage{
		Containers: matched[start:end],
		Total:      len(matched),
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: TotalPages(len(matched), f.Limit),
	}
}
