package models

import (
	"strings"
	"time"
)

// AdminClass is the assigned_class value reserved for administrator accounts.
// Nothing outside this package and the storage filters should compare
// against it directly; use Account.Role instead.
const AdminClass = "Admin"

// RoleKind distinguishes the two kinds of signed-in user.
type RoleKind string

const (
	RoleTeacher RoleKind = "teacher"
	RoleAdmin   RoleKind = "admin"
)

// Role is the authorization role of an account. Teachers carry the class
// they are assigned to; administrators carry no class.
type Role struct {
	Kind  RoleKind
	Class string
}

// RoleFor derives the role from a stored assigned_class value.
func RoleFor(assignedClass string) Role {
	if IsAdminClass(assignedClass) {
		return Role{Kind: RoleAdmin}
	}
	return Role{Kind: RoleTeacher, Class: assignedClass}
}

// IsAdminClass reports whether a class name is the reserved admin sentinel.
// The comparison ignores case and surrounding space so "admin " cannot be
// used to slip a second admin past teacher management.
func IsAdminClass(class string) bool {
	return strings.EqualFold(strings.TrimSpace(class), AdminClass)
}

func (r Role) IsAdmin() bool   { return r.Kind == RoleAdmin }
func (r Role) IsTeacher() bool { return r.Kind == RoleTeacher }

func (r Role) String() string { return string(r.Kind) }

// HomePath is where a freshly signed-in user of this role lands.
func (r Role) HomePath() string {
	if r.IsAdmin() {
		return "/admin"
	}
	return "/teacher"
}

// Account is a teacher or administrator who can sign in.
type Account struct {
	ID            string    `bson:"_id" json:"id"`
	FullName      string    `bson:"full_name" json:"full_name"`
	Username      string    `bson:"username" json:"username"`
	UsernameCI    string    `bson:"username_ci" json:"-"`
	PasswordHash  string    `bson:"password_hash" json:"-"`
	AssignedClass string    `bson:"assigned_class" json:"assigned_class"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// Role returns the role derived from the account's assigned class.
func (a Account) Role() Role { return RoleFor(a.AssignedClass) }

// AccountChanges lists the fields to change on an account. Nil fields are
// left as they are.
type AccountChanges struct {
	FullName      *string
	Username      *string
	UsernameCI    *string
	PasswordHash  *string
	AssignedClass *string
	UpdatedAt     time.Time
}

// IsEmpty reports whether no field is set.
func (c AccountChanges) IsEmpty() bool {
	return c.FullName == nil && c.Username == nil && c.PasswordHash == nil && c.AssignedClass == nil
}
