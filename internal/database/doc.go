// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, category seeding, unit of work
//	├── page.go          # Pagination helpers
//	├── users/           # Accounts, refresh tokens, email confirmation
//	├── books/           # Books and their category links
//	├── categories/      # Category lookup
//	├── likes/           # Likes (one per user and book)
//	├── views/           # View events
//	├── comments/        # Comments
//	├── downloads/       # Download records
//	└── audit/           # Audit trail
//
// # Unit of Work
//
// Reads go through Repos, writes that must commit together go through
// Transaction:
//
//	db, err := database.NewDatabase("./bookshare.db")
//
//	err = db.Transaction(ctx, func(r *database.Repositories) error {
//	    if err := r.Books.Create(book); err != nil {
//	        return err
//	    }
//	    return r.Books.AddCategories(book.ID, categoryIDs)
//	})
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add the repository to Repositories in database.go
package database
