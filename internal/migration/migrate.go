package migration

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/internal/middleware"
	"github.com/sgsgita/moderation-backend/pkg/logger"
)

// models returns every table the service owns, in creation order
func models() []interface{} {
	return []interface{}{
		&domain.QueueItem{},
		&domain.HistoryRecord{},
		&domain.Moderator{},
		&middleware.AuditLog{},
	}
}

// Run executes AutoMigrate for the moderation schema.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(models()...)
}

// Seed inserts the initial admin account and two demo moderators. Runs only
// when the moderators table is empty. The admin password comes from
// SEED_ADMIN_PASSWORD; a generated default is logged when unset.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.Moderator{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "change-me-on-first-login"
		logger.GetLogger().Warn().Msg("SEED_ADMIN_PASSWORD not set, seeding admin with the default password")
	}

	hash := func(plain string) (string, error) {
		h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		return string(h), err
	}

	adminHash, err := hash(adminPassword)
	if err != nil {
		return err
	}
	demoHash, err := hash("review-queue-demo")
	if err != nil {
		return err
	}

	moderators := []domain.Moderator{
		{
			Username:    "admin",
			Email:       "admin@moderation.local",
			Password:    adminHash,
			DisplayName: "Administrator",
			Role:        domain.RoleAdmin,
			Status:      domain.ModeratorStatusActive,
		},
		{
			Username:    "asha",
			Email:       "asha@moderation.local",
			Password:    demoHash,
			DisplayName: "Asha Nair",
			Role:        domain.RoleModerator,
			Status:      domain.ModeratorStatusActive,
		},
		{
			Username:    "rahul",
			Email:       "rahul@moderation.local",
			Password:    demoHash,
			DisplayName: "Rahul Verma",
			Role:        domain.RoleModerator,
			Status:      domain.ModeratorStatusActive,
		},
	}

	if err := db.Create(&moderators).Error; err != nil {
		return err
	}

	logger.GetLogger().Info().Int("count", len(moderators)).Msg("seeded moderator accounts")
	return nil
}

// Drop removes every owned table. Destructive; the CLI requires an explicit
// flag before calling this.
func Drop(db *gorm.DB) error {
	return db.Migrator().DropTable(models()...)
}

// Verify checks that every owned table exists and reports row counts.
func Verify(db *gorm.DB) error {
	for _, model := range models() {
		if !db.Migrator().HasTable(model) {
			return fmt.Errorf("missing table for %T", model)
		}
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			return err
		}
		logger.Info("table %T: %d rows", model, count)
	}
	return nil
}
