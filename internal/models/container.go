// internal/models/container.go
package models

import (
	"time"
)

type ContainerStatus string

const (
	StatusInPark ContainerStatus = "IN_PARK"
	StatusOut    ContainerStatus = "OUT"
	// StatusBooked is reserved for an outbound reservation made outside the yard.
	StatusBooked ContainerStatus = "BOOKED"
)

// Present reports whether a container with this status is physically in the yard.
func (s ContainerStatus) Present() bool {
	return s == StatusInPark || s == StatusBooked
}

func (s ContainerStatus) Valid() bool {
	switch s {
	case StatusInPark, StatusOut, StatusBooked:
		return true
	}
	return false
}

type ContainerType string

const (
	TypeDry    ContainerType = "DRY"
	TypeReefer ContainerType = "REEFER"
)

func (t ContainerType) Valid() bool {
	return t == TypeDry || t == TypeReefer
}

// EntrySource tells which gate flow registered the container.
type EntrySource string

const (
	SourceShippingLine EntrySource = "SHIPPING_LINE"
	SourceClient       EntrySource = "CLIENT"
)

// Container is one physical presence of a box in the yard. A box that leaves
// and comes back gets a new record.
type Container struct {
	ID               string          `bson:"_id" json:"id"`
	ContainerNumber  string          `bson:"containerNumber" json:"containerNumber"`
	Source           EntrySource     `bson:"source" json:"source"`
	ShippingLineID   string          `bson:"shippingLineId,omitempty" json:"shippingLineId,omitempty"`
	ShippingLineName string          `bson:"shippingLineName,omitempty" json:"shippingLineName,omitempty"`
	ClientID         string          `bson:"clientId,omitempty" json:"clientId,omitempty"`
	Client           string          `bson:"client,omitempty" json:"client,omitempty"`
	IsoCodeID        string          `bson:"isoCodeId" json:"isoCodeId"`
	IsoCode          string          `bson:"isoCode,omitempty" json:"isoCode,omitempty"`
	Type             ContainerType   `bson:"type" json:"type"`
	Status           ContainerStatus `bson:"status" json:"status"`
	EntryDate        time.Time       `bson:"entryDate" json:"entryDate"`
	ExitDate         *time.Time      `bson:"exitDate" json:"exitDate"`
	Damages          string          `bson:"damages,omitempty" json:"damages,omitempty"`
	Transporter      string          `bson:"transporter,omitempty" json:"transporter,omitempty"`
	TruckRef         string          `bson:"truckRef,omitempty" json:"truckRef,omitempty"`
	Booking          string          `bson:"booking,omitempty" json:"booking,omitempty"`
	Vessel           string          `bson:"vessel,omitempty" json:"vessel,omitempty"`
	Comments         string          `bson:"comments,omitempty" json:"comments,omitempty"`
	Photos           []MediaPointer  `bson:"photos,omitempty" json:"photos,omitempty"`
	// ActiveNumber mirrors ContainerNumber while the box is present and is
	// unset on exit; a unique sparse index on it keeps present numbers unique.
	ActiveNumber string    `bson:"activeNumber,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ContainerPatch holds the descriptive fields an operator may correct after
// entry. Nil fields are left untouched; lifecycle fields are not patchable.
type ContainerPatch struct {
	IsoCodeID   *string        `json:"isoCodeId"`
	IsoCode     *string        `json:"-"`
	Type        *ContainerType `json:"type"`
	Damages     *string        `json:"damages"`
	Transporter *string        `json:"transporter"`
	TruckRef    *string        `json:"truckRef"`
	Booking     *string        `json:"booking"`
	Vessel      *string        `json:"vessel"`
	Comments    *string        `json:"comments"`
}

// Apply merges p over c.
func (p ContainerPatch) Apply(c *Container) {
	if p.IsoCodeID != nil {
		c.IsoCodeID = *p.IsoCodeID
	}
	if p.IsoCode != nil {
		c.IsoCode = *p.IsoCode
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Damages != nil {
		c.Damages = *p.Damages
	}
	if p.Transporter != nil {
		c.Transporter = *p.Transporter
	}
	if p.TruckRef != nil {
		c.TruckRef = *p.TruckRef
	}
	if p.Booking != nil {
		c.Booking = *p.Booking
	}
	if p.Vessel != nil {
		c.Vessel = *p.Vessel
	}
	if p.Comments != nil {
		c.Comments = *p.Comments
	}
}

// ExitUpdate is what a gate-out writes on a container.
// For client exits only Comments is merged.
type ExitUpdate struct {
	// RecordID pins the exit to the record the caller validated against.
	// The store refuses the exit if another visit is present by then.
	RecordID string
	Source   EntrySource
	ExitDate time.Time
	Booking  *string
	Vessel   *string
	Client   *string
	Comments *string
}

// Apply moves c to OUT and merges the exit data.
func (u ExitUpdate) Apply(c *Container, now time.Time) {
	exitDate := u.ExitDate
	c.Status = StatusOut
	c.ExitDate = &exitDate
	c.ActiveNumber = ""
	if u.Comments != nil {
		c.Comments = *u.Comments
	}
	if u.Source == SourceShippingLine {
		if u.Booking != nil {
			c.Booking = *u.Booking
		}
		if u.Vessel != nil {
			c.Vessel = *u.Vessel
		}
		if u.Client != nil {
			c.Client = *u.Client
		}
	}
	c.UpdatedAt = now
}
