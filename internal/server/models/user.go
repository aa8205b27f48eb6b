// Package models defines the account records persisted by the service.
package models

import (
	"sort"
	"time"
)

// Role names a group a user can belong to.
type Role string

// RoleResearch marks participants of the research cohort.
const RoleResearch Role = "research"

// RoleSet is the set of role groups a user belongs to.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

func (s RoleSet) Add(r Role) {
	s[r] = struct{}{}
}

func (s RoleSet) Remove(r Role) {
	delete(s, r)
}

// Names returns the role names in a stable order.
func (s RoleSet) Names() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

// User is the credential record. Profile sub-records hang off it one-to-one
// and are removed with it.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	Roles        RoleSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsResearch reports membership in the research group.
func (u *User) IsResearch() bool {
	return u.Roles.Has(RoleResearch)
}

// Account is a user together with all of its profile sub-records.
type Account struct {
	User       User
	Info       Info
	Settings   Settings
	SystemInfo SystemInfo
	Activity   Activity
	Statistic  Statistic
}
