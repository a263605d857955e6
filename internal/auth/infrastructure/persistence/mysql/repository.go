package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"

	"github.com/marginalfriend/my-garage/internal/auth/domain"
)

type authRepository struct{ db *gorm.DB }

// NewAuthRepository 创建账号 + 顾客档案仓储实例
func NewAuthRepository(db *gorm.DB) *authRepository {
	return &authRepository{db: db}
}

var (
	_ domain.AccountRepository  = (*authRepository)(nil)
	_ domain.CustomerRepository = (*authRepository)(nil)
)

func (r *authRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

func (r *authRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

func (r *authRepository) SaveAccount(ctx context.Context, account *domain.Account) error {
	return r.getDB(ctx).WithContext(ctx).Save(account).Error
}

func (r *authRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.getDB(ctx).WithContext(ctx).Where("email = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *authRepository) GetAccountRoles(ctx context.Context, accountID uint) ([]domain.RoleName, error) {
	var roles []domain.Role
	err := r.getDB(ctx).WithContext(ctx).
		Joins("JOIN account_roles ON account_roles.role_id = roles.id").
		Where("account_roles.account_id = ?", accountID).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	names := make([]domain.RoleName, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names, nil
}

func (r *authRepository) EnsureRole(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	db := r.getDB(ctx).WithContext(ctx)
	var role domain.Role
	err := db.Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = domain.Role{Name: name}
		if err := db.Create(&role).Error; err != nil {
			return nil, err
		}
		return &role, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *authRepository) AssignRole(ctx context.Context, accountID, roleID uint) error {
	return r.getDB(ctx).WithContext(ctx).
		Exec("INSERT INTO account_roles (account_id, role_id) VALUES (?, ?)", accountID, roleID).Error
}

func (r *authRepository) SaveCustomer(ctx context.Context, customer *domain.Customer) error {
	return r.getDB(ctx).WithContext(ctx).Save(customer).Error
}

func (r *authRepository) GetCustomerByAccountID(ctx context.Context, accountID uint) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.getDB(ctx).WithContext(ctx).Where("account_id = ?", accountID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
