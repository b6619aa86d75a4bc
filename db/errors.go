package db

import (
	"fmt"

	"codedrip/models"
)

// Common errors
var (
	ErrDatabaseConnection = fmt.Errorf("%w: database connection error", models.ErrPersistence)
	ErrMigration          = fmt.Errorf("%w: migration failed", models.ErrPersistence)
)
