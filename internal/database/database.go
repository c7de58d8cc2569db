package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshare/internal/database/audit"
	"github.com/mrlokans/bookshare/internal/database/books"
	"github.com/mrlokans/bookshare/internal/database/categories"
	"github.com/mrlokans/bookshare/internal/database/comments"
	"github.com/mrlokans/bookshare/internal/database/downloads"
	"github.com/mrlokans/bookshare/internal/database/likes"
	"github.com/mrlokans/bookshare/internal/database/users"
	"github.com/mrlokans/bookshare/internal/database/views"
	"github.com/mrlokans/bookshare/internal/entities"
	"github.com/mrlokans/bookshare/internal/logging"
)

var defaultCategories = []string{
	"Fiction",
	"Non-fiction",
	"Science",
	"History",
	"Philosophy",
	"Technology",
	"Biography",
	"Fantasy",
	"Poetry",
	"Children",
}

type Database struct {
	DB *gorm.DB
}

// Repositories groups every repository bound to the same connection or transaction.
type Repositories struct {
	Users      *users.Repository
	Books      *books.Repository
	Categories *categories.Repository
	Likes      *likes.Repository
	Views      *views.Repository
	Comments   *comments.Repository
	Downloads  *downloads.Repository
	Audit      *audit.Repository
}

func newRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:      users.NewRepository(db),
		Books:      books.NewRepository(db),
		Categories: categories.NewRepository(db),
		Likes:      likes.NewRepository(db),
		Views:      views.NewRepository(db),
		Comments:   comments.NewRepository(db),
		Downloads:  downloads.NewRepository(db),
		Audit:      audit.NewRepository(db),
	}
}

// DSN returns the SQLite connection string for path with foreign keys enforced.
func DSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(DSN(dbPath)), &gorm.Config{
		Logger: logging.NewGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(entities.Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedCategories(); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	logging.Info().Str("path", dbPath).Msg("Database initialized")

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Repos returns repositories bound to ctx outside of any transaction.
func (d *Database) Repos(ctx context.Context) *Repositories {
	return newRepositories(d.DB.WithContext(ctx))
}

// Transaction runs fn as one unit of work. Every write made through the
// supplied repositories is committed together when fn returns nil and rolled
// back when it returns an error.
func (d *Database) Transaction(ctx context.Context, fn func(r *Repositories) error) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}

func (d *Database) seedCategories() error {
	repo := categories.NewRepository(d.DB)
	for _, name := range defaultCategories {
		_, err := repo.GetByName(name)
		if err == gorm.ErrRecordNotFound {
			if err := repo.Create(&entities.Category{Name: name}); err != nil {
				return fmt.Errorf("failed to create category %s: %w", name, err)
			}
			logging.Debug().Str("category", name).Msg("Created category")
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
