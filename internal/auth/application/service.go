package application

import (
	"context"

	"github.com/wyfcoding/pkg/security"

	"github.com/marginalfriend/my-garage/internal/auth/domain"
)

// AuthService 注册、登录与顾客档案解析
type AuthService struct {
	accounts  domain.AccountRepository
	customers domain.CustomerRepository
	tokens    *TokenService
}

// NewAuthService 构造函数
func NewAuthService(accounts domain.AccountRepository, customers domain.CustomerRepository, tokens *TokenService) *AuthService {
	return &AuthService{accounts: accounts, customers: customers, tokens: tokens}
}

// RegisterCommand 注册命令
type RegisterCommand struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
}

// Register 注册新顾客。
// 账号、顾客档案与 CUSTOMER 角色绑定在一个事务内创建。
func (s *AuthService) Register(ctx context.Context, cmd RegisterCommand) (uint, error) {
	existing, err := s.accounts.GetAccountByEmail(ctx, cmd.Email)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, domain.ErrEmailTaken
	}

	hash, err := security.HashPassword(cmd.Password)
	if err != nil {
		return 0, err
	}

	var customerID uint
	err = s.accounts.WithTx(ctx, func(txCtx context.Context) error {
		account := &domain.Account{Email: cmd.Email, PasswordHash: hash}
		if err := s.accounts.SaveAccount(txCtx, account); err != nil {
			return err
		}

		customer := &domain.Customer{
			AccountID:   account.ID,
			Name:        cmd.Name,
			PhoneNumber: cmd.PhoneNumber,
		}
		if err := s.customers.SaveCustomer(txCtx, customer); err != nil {
			return err
		}

		role, err := s.accounts.EnsureRole(txCtx, domain.RoleCustomer)
		if err != nil {
			return err
		}
		if err := s.accounts.AssignRole(txCtx, account.ID, role.ID); err != nil {
			return err
		}

		customerID = customer.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return customerID, nil
}

// Login 校验凭证并签发访问令牌
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if account == nil || !security.CheckPassword(password, account.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	roles, err := s.accounts.GetAccountRoles(ctx, account.ID)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(account.ID, roles)
}

// ResolveCustomer 把已验证身份解析为顾客档案。
// 购物车与订单操作都先走这里，档案缺失按 NotFound 处理。
func (s *AuthService) ResolveCustomer(ctx context.Context, identity domain.Identity) (*domain.Customer, error) {
	return s.customers.GetCustomerByAccountID(ctx, identity.AccountID)
}
