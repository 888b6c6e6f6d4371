// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

// Package dbutil adapts pkg/util/migrateutil's golang-migrate/migrate/v4
// wiring for Zenith's single small sqlite database (the UI preferences
// store), unchanged in shape from the original migrateutil.Migrate
// helper.
package dbutil

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"

	"github.com/golang-migrate/migrate/v4"
	sqlite3migrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// GetMigrateVersion reports the current schema version, treating "no
// migrations applied yet" as version 0 rather than an error.
func GetMigrateVersion(m *migrate.Migrate) (uint, bool, error) {
	curVersion, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	return curVersion, dirty, err
}

// MakeMigrate builds a migrate.Migrate bound to an embedded SQL migration
// directory and an already-open sqlite3 *sql.DB.
func MakeMigrate(storeName string, db *sql.DB, migrationFS fs.FS, migrationsName string) (*migrate.Migrate, error) {
	fsVar, err := iofs.New(migrationFS, migrationsName)
	if err != nil {
		return nil, fmt.Errorf("opening fs: %w", err)
	}
	mdriver, err := sqlite3migrate.WithInstance(db, &sqlite3migrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("making %s migration driver: %w", storeName, err)
	}
	m, err := migrate.NewWithInstance("iofs", fsVar, "sqlite3", mdriver)
	if err != nil {
		return nil, fmt.Errorf("making %s migration: %w", storeName, err)
	}
	return m, nil
}

// Migrate runs every pending up migration, logging the version transition.
func Migrate(storeName string, db *sql.DB, migrationFS fs.FS, migrationsName string) error {
	log.Printf("[dbutil] migrating %s\n", storeName)
	m, err := MakeMigrate(storeName, db, migrationFS, migrationsName)
	if err != nil {
		return err
	}
	curVersion, dirty, err := GetMigrateVersion(m)
	if dirty {
		return fmt.Errorf("%s: migrate up, database is dirty", storeName)
	}
	if err != nil {
		return fmt.Errorf("%s: cannot get current migration version: %w", storeName, err)
	}
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrating %s: %w", storeName, err)
	}
	newVersion, _, err := GetMigrateVersion(m)
	if err != nil {
		return fmt.Errorf("%s: cannot get new migration version: %w", storeName, err)
	}
	if newVersion != curVersion {
		log.Printf("[dbutil] %s migration done, version %d -> %d\n", storeName, curVersion, newVersion)
	}
	return nil
}
