package repository

import (
	"context"
	"time"

	"github.com/amirasaad/econbot/pkg/domain/wallet"
	"github.com/amirasaad/econbot/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a UserRepository on db.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Upsert(ctx context.Context, u wallet.User) error {
	now := time.Now().UTC()
	row := &User{ID: u.ID, Name: u.Name, CreatedAt: now, UpdatedAt: now}
	// An empty name only means the caller did not know it.
	update := []string{"updated_at"}
	if u.Name != "" {
		update = append(update, "name")
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(update),
		}).Create(row).Error
	})
}

func (r *userRepository) Get(ctx context.Context, id int64) (*wallet.User, error) {
	var row User
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return &wallet.User{ID: row.ID, Name: row.Name}, nil
}
