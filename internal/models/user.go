// internal/models/user.go
package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	PermissionAll = "all"
)

// Permissions lists every grant a non-admin user can hold.
var Permissions = []string{
	"read:containers",
	"create:containers",
	"update:containers",
	"delete:containers",
	"read:shipping-lines",
	"create:shipping-lines",
	"update:shipping-lines",
	"delete:shipping-lines",
	"read:iso-codes",
	"create:iso-codes",
	"update:iso-codes",
	"delete:iso-codes",
	"read:clients",
	"create:clients",
	"update:clients",
	"delete:clients",
}

// User matches the document in the users collection.
type User struct {
	ID          string    `bson:"_id" json:"id"`
	Username    string    `bson:"username" json:"username"`
	Email       string    `bson:"email" json:"email"`
	Password    string    `bson:"password" json:"-"`
	Role        string    `bson:"role" json:"role"`
	Permissions []string  `bson:"permissions" json:"permissions"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Can reports whether the user holds perm.
func (u User) Can(perm string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == perm || p == PermissionAll {
			return true
		}
	}
	return false
}

// UserPatch is applied by the admin screens and by profile updates.
// Password holds an already hashed value.
type UserPatch struct {
	Username    *string
	Email       *string
	Password    *string
	Role        *string
	Permissions []string
}

func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Permissions != nil {
		u.Permissions = append([]string(nil), p.Permissions...)
	}
}
