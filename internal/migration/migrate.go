package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Charltoon/Memory-Archive/internal/domain"
)

// Models lists every table in creation order (referenced tables first)
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Memory{},
		&domain.Friend{},
		&domain.Like{},
		&domain.Comment{},
		&domain.CommentReaction{},
	}
}

// Run creates or updates the schema, including the unique
// (user_id, memory_id) and (user_id, comment_id) indexes that back the
// one-reaction-per-user rule
func Run(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	return nil
}

// Drop removes every table, dependents first
func Drop(db *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop %T: %w", models[i], err)
		}
	}
	return nil
}
