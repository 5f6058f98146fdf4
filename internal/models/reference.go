// internal/models/reference.go
package models

import "time"

// ReferenceKind names one of the reference collections.
type ReferenceKind string

const (
	KindShippingLine ReferenceKind = "shipping_lines"
	KindIsoCode      ReferenceKind = "iso_codes"
	KindClient       ReferenceKind = "clients"
)

// Label is used in error messages, e.g. "shipping line 7 not found".
func (k ReferenceKind) Label() string {
	switch k {
	case KindShippingLine:
		return "shipping line"
	case KindIsoCode:
		return "ISO code"
	case KindClient:
		return "client"
	}
	return string(k)
}

// Reference is a shipping line, an ISO type code or a client. Shipping lines
// and clients carry a Name, ISO codes a Description.
type Reference struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name,omitempty" json:"name,omitempty"`
	Code        string    `bson:"code,omitempty" json:"code,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Active      bool      `bson:"active" json:"active"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DisplayName is what gets copied onto containers.
func (r Reference) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Code
}

// ReferencePatch is a shallow update: nil fields keep their current value.
type ReferencePatch struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

func (p ReferencePatch) Apply(r *Reference) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Code != nil {
		r.Code = *p.Code
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Active != nil {
		r.Active = *p.Active
	}
}
