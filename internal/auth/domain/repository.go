package domain

import (
	"context"
	"errors"
)

var (
	// ErrAccountNotFound 账号不存在
	ErrAccountNotFound = errors.New("account not found")
	// ErrCustomerNotFound 顾客档案不存在
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrEmailTaken 邮箱已被占用
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials 邮箱或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AccountRepository 账号仓储接口
type AccountRepository interface {
	// WithTx 在单个事务内执行 fn
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// SaveAccount 保存账号
	SaveAccount(ctx context.Context, account *Account) error
	// GetAccountByEmail 按邮箱查账号，未找到返回 (nil, nil)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	// GetAccountRoles 查询账号的全部角色名
	GetAccountRoles(ctx context.Context, accountID uint) ([]RoleName, error)
	// EnsureRole 按名称取角色，不存在则创建
	EnsureRole(ctx context.Context, name RoleName) (*Role, error)
	// AssignRole 绑定账号与角色
	AssignRole(ctx context.Context, accountID, roleID uint) error
}

// CustomerRepository 顾客档案仓储接口
type CustomerRepository interface {
	// SaveCustomer 保存顾客档案
	SaveCustomer(ctx context.Context, customer *Customer) error
	// GetCustomerByAccountID 按账号查顾客档案，未找到返回 ErrCustomerNotFound
	GetCustomerByAccountID(ctx context.Context, accountID uint) (*Customer, error)
}
