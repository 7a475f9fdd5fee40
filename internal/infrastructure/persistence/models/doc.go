// Package models contains the GORM persistence models of the request log.
// They mirror the tables created by the SQL files in migrations/ and are
// mapped to and from internal/domain/requestlog by the repository.
package models
