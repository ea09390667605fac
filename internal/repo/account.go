package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/echotube/echotube/internal/models"
	"github.com/echotube/echotube/internal/policy"
)

func (r *GormRepo) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

func (r *GormRepo) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

// CreateAccount inserts the account and lets the unique index on username
// arbitrate duplicates, so a concurrent insert of the same name cannot slip
// past a pre-check.
func (r *GormRepo) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := r.DB.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *GormRepo) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *GormRepo) SaveAccount(ctx context.Context, account *models.Account) error {
	return r.DB.WithContext(ctx).Save(account).Error
}

func (r *GormRepo) DeleteAccount(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Account{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdminExists backs the idempotent bootstrap step.
func (r *GormRepo) AdminExists(ctx context.Context) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("role = ?", policy.RoleAdmin).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UsernamesByID resolves creator ids to display names for listings.
func (r *GormRepo) UsernamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	var accounts []models.Account
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&accounts).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(accounts))
	for _, a := range accounts {
		out[a.ID] = a.Username
	}
	return out, nil
}
