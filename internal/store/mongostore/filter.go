// internal/store/mongostore/filter.go
package mongostore

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
)

// containerQuery translates a filter into the same predicate store.Match
// applies in memory.
func containerQuery(f store.ContainerFilter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.ShippingLineID != "" {
		q["shippingLineId"] = f.ShippingLineID
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.IsoCodeID != "" {
		q["isoCodeId"] = f.IsoCodeID
	}
	if f.ClientID != "" {
		q["clientId"] = f.ClientID
	}
	if f.ContainerNumber != "" {
		q["containerNumber"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.ContainerNumber), Options: "i"}
	}
	return q
}

func presentQuery(number string) bson.M {
	return bson.M{
		"containerNumber": number,
		"status":          bson.M{"$in": []models.ContainerStatus{models.StatusInPark, models.StatusBooked}},
	}
}

// exitQuery only matches a record that may leave right now.
func exitQuery(number, recordID string, source models.EntrySource) bson.M {
	q := bson.M{"containerNumber": number, "status": models.StatusInPark}
	if recordID != "" {
		q["_id"] = recordID
	}
	if source == models.SourceClient {
		q["source"] = models.SourceClient
	}
	return q
}

func exitUpdate(u models.ExitUpdate, now time.Time) bson.M {
	set := bson.M{
		"status":    models.StatusOut,
		"exitDate":  u.ExitDate,
		"updatedAt": now,
	}
	if u.Comments != nil {
		set["comments"] = *u.Comments
	}
	if u.Source == models.SourceShippingLine {
		if u.Booking != nil {
			set["booking"] = *u.Booking
		}
		if u.Vessel != nil {
			set["vessel"] = *u.Vessel
		}
		if u.Client != nil {
			set["client"] = *u.Client
		}
	}
	return bson.M{"$set": set, "$unset": bson.M{"activeNumber": ""}}
}

func containerPatchUpdate(p models.ContainerPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("isoCodeId", p.IsoCodeID)
	put("isoCode", p.IsoCode)
	put("damages", p.Damages)
	put("transporter", p.Transporter)
	put("truckRef", p.TruckRef)
	put("booking", p.Booking)
	put("vessel", p.Vessel)
	put("comments", p.Comments)
	if p.Type != nil {
		set["type"] = *p.Type
	}
	return bson.M{"$set": set}
}

func referencePatchUpdate(p models.ReferencePatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Code != nil {
		set["code"] = *p.Code
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Active != nil {
		set["active"] = *p.Active
	}
	return bson.M{"$set": set}
}

func userPatchUpdate(p models.UserPatch) bson.M {
	set := bson.M{}
	if p.Username != nil {
		set["username"] = *p.Username
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Password != nil {
		set["password"] = *p.Password
	}
	if p.Role != nil {
		set["role"] = *p.Role
	}
	if p.Permissions != nil {
		set["permissions"] = p.Permissions
	}
	return bson.M{"$set": set}
}
