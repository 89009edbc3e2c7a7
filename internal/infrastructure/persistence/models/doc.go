// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of GORM tags; each model converts to and from its
// entity with ToDomain and a FromDomain constructor.
//
// Timestamps are stored in UTC. Callers convert to the configured timezone
// when a calendar day matters.
package models
