package repository

import (
	"context"

	"github.com/amirasaad/econbot/pkg/domain/wallet"
	"github.com/amirasaad/econbot/pkg/repository"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository returns a TransactionRepository on db.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, t *wallet.Transaction) error {
	row := &Transaction{
		ID:              t.ID,
		UserID:          t.UserID,
		RelatedUserID:   t.RelatedUserID,
		CurrencyID:      t.CurrencyID,
		Amount:          t.Amount,
		TransactionType: string(t.Type),
		Note:            t.Note,
		CreatedAt:       t.CreatedAt,
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(row).Error
	})
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID int64) ([]*wallet.Transaction, error) {
	var rows []Transaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ? OR related_user_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*wallet.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, transactionToDomain(&rows[i]))
	}
	return out, nil
}

type rewardLogRepository struct {
	db *gorm.DB
}

// NewRewardLogRepository returns a RewardLogRepository on db.
func NewRewardLogRepository(db *gorm.DB) repository.RewardLogRepository {
	return &rewardLogRepository{db: db}
}

func (r *rewardLogRepository) Create(ctx context.Context, l *wallet.RewardLog) error {
	row := &RewardLog{
		ID:         l.ID,
		UserID:     l.UserID,
		CurrencyID: l.CurrencyID,
		Amount:     l.Amount,
		Rule:       l.Rule,
		EventKey:   l.EventKey,
		Note:       l.Note,
		CreatedAt:  l.CreatedAt,
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(row).Error
	})
}

func (r *rewardLogRepository) Exists(ctx context.Context, rule, eventKey string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&RewardLog{}).
		Where("rule = ? AND event_key = ?", rule, eventKey).
		Count(&n).Error; err != nil {
		return false, MapGormErrorToDomain(err)
	}
	return n > 0, nil
}

func (r *rewardLogRepository) ListByUser(ctx context.Context, userID int64) ([]*wallet.RewardLog, error) {
	var rows []RewardLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*wallet.RewardLog, 0, len(rows))
	for i := range rows {
		out = append(out, rewardLogToDomain(&rows[i]))
	}
	return out, nil
}
