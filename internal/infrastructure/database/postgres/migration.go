// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Logger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// Models lists every table of the wishlist subsystem, parents first
func Models() []interface{} {
	return []interface{}{
		&wishlist.Wishlist{},
		&wishlist.Item{},
		&wishlist.Collaborator{},
		&wishlist.Invitation{},
		&wishlist.Share{},
		&wishlist.Comment{},
		&wishlist.ActivityEntry{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates the composite indexes AutoMigrate cannot express
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_wishlist_status ON wishlist_items(wishlist_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_wishlist_invitations_wishlist_email ON wishlist_invitations(wishlist_id, email, status)",
		"CREATE INDEX IF NOT EXISTS idx_wishlist_shares_wishlist_type ON wishlist_shares(wishlist_id, share_type)",
		"CREATE INDEX IF NOT EXISTS idx_wishlist_item_comments_item_created ON wishlist_item_comments(item_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_wishlist_activity_wishlist_created ON wishlist_activity(wishlist_id, created_at DESC, id DESC)",
	}

	successCount := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).WithField("sql", indexSQL).Warn("Failed to create index")
			continue
		}
		successCount++
	}

	m.log.WithFields(logrus.Fields{
		"created": successCount,
		"failed":  len(indexes) - successCount,
	}).Info("Database indexes processed")
	return nil
}

// SeedDemoData inserts a sample wishlist for local development when the
// database holds none
func (m *Migration) SeedDemoData(ownerID uint) error {
	var count int64
	if err := m.db.Model(&wishlist.Wishlist{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count wishlists: %w", err)
	}
	if count > 0 {
		m.log.Debug("Wishlists already present, skipping demo seed")
		return nil
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		w := &wishlist.Wishlist{
			OwnerID:         ownerID,
			Name:            "Birthday",
			Description:     "Demo wishlist",
			IsCollaborative: true,
			Settings:        wishlist.DefaultSettings(),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Create(w).Error; err != nil {
			return fmt.Errorf("failed to seed wishlist: %w", err)
		}

		items := []wishlist.Item{
			{WishlistID: w.ID, Title: "Stand mixer", Price: 249.99, Currency: "USD", Priority: wishlist.PriorityHigh, Status: wishlist.ItemStatusAvailable},
			{WishlistID: w.ID, Title: "Hardcover notebook", Price: 18, Currency: "USD", Priority: wishlist.PriorityLow, Status: wishlist.ItemStatusAvailable},
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to seed items: %w", err)
		}

		entry := &wishlist.ActivityEntry{
			WishlistID: w.ID,
			ActorID:    ownerID,
			Verb:       wishlist.VerbCreated,
			TargetType: wishlist.TargetWishlist,
			TargetID:   w.ID,
			Detail:     w.Name,
			CreatedAt:  now,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to seed activity: %w", err)
		}

		m.log.WithField("wishlist_id", w.ID).Info("Seeded demo wishlist")
		return nil
	})
}
