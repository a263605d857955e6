// Package domain 包含账号、角色与顾客档案的领域模型
package domain

import (
	"gorm.io/gorm"
)

// RoleName 角色名称
type RoleName string

const (
	RoleCustomer   RoleName = "CUSTOMER"
	RoleAdmin      RoleName = "ADMIN"
	RoleSuperAdmin RoleName = "SUPER_ADMIN"
)

// Account 登录账号
type Account struct {
	gorm.Model
	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Roles        []Role `gorm:"many2many:account_roles" json:"roles,omitempty"`
}

func (Account) TableName() string { return "accounts" }

// Role 角色
type Role struct {
	gorm.Model
	Name RoleName `gorm:"column:name;type:varchar(32);uniqueIndex;not null" json:"name"`
}

func (Role) TableName() string { return "roles" }

// Customer 顾客档案，与账号一对一
type Customer struct {
	gorm.Model
	AccountID   uint   `gorm:"column:account_id;uniqueIndex;not null" json:"account_id"`
	Name        string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	PhoneNumber string `gorm:"column:phone_number;type:varchar(32)" json:"phone_number"`
}

func (Customer) TableName() string { return "customers" }

// Identity 已验证的调用者身份。
// 令牌签名校验通过后由中间件构造，之后所有授权判断都以它为准，
// 不再逐个处理器去解析 claim。
type Identity struct {
	AccountID uint
	Roles     []RoleName
}

// HasRole 是否持有指定角色
func (id Identity) HasRole(role RoleName) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaff 是否为后台人员（ADMIN 或 SUPER_ADMIN）
func (id Identity) IsStaff() bool {
	return id.HasRole(RoleAdmin) || id.HasRole(RoleSuperAdmin)
}
