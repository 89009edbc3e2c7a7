package activity

import (
	"fmt"
	"time"
)

// Site is one of the organization's activity domains. Each site has its own
// admin role and its own rules for creation, approval and staffing.
type Site string

const (
	SiteVolunteer Site = "volunteer"
	SiteClass     Site = "class"
	SiteEtogether Site = "etogether"
	SiteWork      Site = "work"
)

// AllSites lists every site in a stable order
func AllSites() []Site {
	return []Site{SiteVolunteer, SiteClass, SiteEtogether, SiteWork}
}

// IsValid checks if the site is known
func (s Site) IsValid() bool {
	switch s {
	case SiteVolunteer, SiteClass, SiteEtogether, SiteWork:
		return true
	}
	return false
}

// String returns the string representation of Site
func (s Site) String() string {
	return string(s)
}

// ParseSite converts a string into a Site
func ParseSite(v string) (Site, error) {
	s := Site(v)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown site %q", v)
	}
	return s, nil
}

// DefaultGracePeriod is how long after the nominal end an activity still
// accepts check-ins on sites that allow it
const DefaultGracePeriod = time.Hour

// SitePolicy holds the per-site rules of the activity lifecycle
type SitePolicy struct {
	Site Site
	// CreateRequiresAdmin restricts activity creation to the site's admins
	CreateRequiresAdmin bool
	// RequiresApproval routes submitted activities through INREVIEW and
	// a site-admin approval
	RequiresApproval bool
	// DefaultStatus is the status of a non-draft activity on creation
	DefaultStatus Status
	// GracePeriod extends the ongoing window past EndTime
	GracePeriod time.Duration
	// Staffing enables assigned staff, who count as managers
	Staffing bool
}

// SubmittedStatus is the status a draft moves to when submitted
func (p SitePolicy) SubmittedStatus() Status {
	if p.RequiresApproval {
		return StatusInReview
	}
	return StatusPublished
}

// Policies maps each site to its policy
type Policies map[Site]SitePolicy

// DefaultPolicies returns the built-in site policies
func DefaultPolicies() Policies {
	return Policies{
		SiteVolunteer: {
			Site:             SiteVolunteer,
			RequiresApproval: true,
			DefaultStatus:    StatusInReview,
			GracePeriod:      DefaultGracePeriod,
			Staffing:         true,
		},
		SiteClass: {
			Site:                SiteClass,
			CreateRequiresAdmin: true,
			DefaultStatus:       StatusPublished,
			GracePeriod:         DefaultGracePeriod,
			Staffing:            true,
		},
		SiteEtogether: {
			Site:          SiteEtogether,
			DefaultStatus: StatusPublished,
		},
		SiteWork: {
			Site:                SiteWork,
			CreateRequiresAdmin: true,
			DefaultStatus:       StatusPublished,
		},
	}
}

// WithGracePeriod returns a copy where every site that has a grace period
// uses d instead
func (p Policies) WithGracePeriod(d time.Duration) Policies {
	out := make(Policies, len(p))
	for site, policy := range p {
		if policy.GracePeriod > 0 {
			policy.GracePeriod = d
		}
		out[site] = policy
	}
	return out
}

// For returns the policy of a site. Unknown sites get a zero policy that
// requires admin for creation.
func (p Policies) For(site Site) SitePolicy {
	if policy, ok := p[site]; ok {
		return policy
	}
	return SitePolicy{Site: site, CreateRequiresAdmin: true, DefaultStatus: StatusDraft}
}
