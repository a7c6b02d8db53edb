// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of GORM tags; each model carries ToDomain and
// FromDomain mappers used by the repositories.
package models
