package identity

import (
	"strings"

	"github.com/activityhub/backend/internal/domain/activity"
)

// AdminRole is a single site-admin capability
type AdminRole uint8

const (
	RoleVolunteerAdmin AdminRole = 1 << iota
	RoleClassAdmin
	RoleEtogetherAdmin
	RoleWorkAdmin
)

// AdminRoleFor returns the admin role of a site, or 0 for unknown sites
func AdminRoleFor(site activity.Site) AdminRole {
	switch site {
	case activity.SiteVolunteer:
		return RoleVolunteerAdmin
	case activity.SiteClass:
		return RoleClassAdmin
	case activity.SiteEtogether:
		return RoleEtogetherAdmin
	case activity.SiteWork:
		return RoleWorkAdmin
	}
	return 0
}

// RoleSet is the set of site-admin roles a user holds
type RoleSet uint8

// NewRoleSet builds a set from the given roles
func NewRoleSet(roles ...AdminRole) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s |= RoleSet(r)
	}
	return s
}

// RoleSetForSites builds a set granting admin on each site
func RoleSetForSites(sites ...activity.Site) RoleSet {
	var s RoleSet
	for _, site := range sites {
		s |= RoleSet(AdminRoleFor(site))
	}
	return s
}

// Has reports whether the set contains r
func (s RoleSet) Has(r AdminRole) bool {
	return r != 0 && s&RoleSet(r) == RoleSet(r)
}

// HasAdminRole reports whether the set grants admin on site
func (s RoleSet) HasAdminRole(site activity.Site) bool {
	return s.Has(AdminRoleFor(site))
}

// IsAnyAdmin reports whether the set grants admin on at least one site
func (s RoleSet) IsAnyAdmin() bool {
	return s&RoleSet(RoleVolunteerAdmin|RoleClassAdmin|RoleEtogetherAdmin|RoleWorkAdmin) != 0
}

// Grant returns a copy with r added
func (s RoleSet) Grant(r AdminRole) RoleSet {
	return s | RoleSet(r)
}

// Revoke returns a copy with r removed
func (s RoleSet) Revoke(r AdminRole) RoleSet {
	return s &^ RoleSet(r)
}

// AdminSites lists the sites the set grants admin on
func (s RoleSet) AdminSites() []activity.Site {
	sites := make([]activity.Site, 0, 4)
	for _, site := range activity.AllSites() {
		if s.HasAdminRole(site) {
			sites = append(sites, site)
		}
	}
	return sites
}

// String renders the set as "volunteer,class"
func (s RoleSet) String() string {
	sites := s.AdminSites()
	names := make([]string, len(sites))
	for i, site := range sites {
		names[i] = site.String()
	}
	return strings.Join(names, ",")
}
