// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain types to keep the pricing package free of ORM
// concerns; repositories convert between the two with ToDomain/FromDomain.
package models
