package models

import "time"

type User struct {
	ID                  uint       `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name                string     `gorm:"size:255;not null"           json:"name"`
	Email               string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"size:255;not null"           json:"-"`
	Active              bool       `gorm:"not null"                    json:"active"`
	FailedLoginAttempts int        `gorm:"not null;default:0"          json:"failed_login_attempts"`
	LastLoggedIn        *time.Time `                                   json:"last_logged_in"`
	CreatedAt           time.Time  `                                   json:"created_at"`
	UpdatedAt           time.Time  `                                   json:"updated_at"`
}

func (User) TableName() string { return "mst_users" }

type Role struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text"                json:"description"`
}

func (Role) TableName() string { return "mst_roles" }

type Permission struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text"                json:"description"`
}

func (Permission) TableName() string { return "mst_permissions" }

type UserRole struct {
	UserID uint `gorm:"primaryKey" json:"user_id"`
	RoleID uint `gorm:"primaryKey" json:"role_id"`
}

func (UserRole) TableName() string { return "ref_user_roles" }

type RolePermission struct {
	RoleID       uint `gorm:"primaryKey" json:"role_id"`
	PermissionID uint `gorm:"primaryKey" json:"permission_id"`
}

func (RolePermission) TableName() string { return "ref_role_permissions" }

type UserPermission struct {
	UserID       uint `gorm:"primaryKey" json:"user_id"`
	PermissionID uint `gorm:"primaryKey" json:"permission_id"`
}

func (UserPermission) TableName() string { return "ref_user_permissions" }

type AuditLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"index;not null"           json:"user_id"`
	Action     string    `gorm:"size:50;not null"         json:"action"`
	RecordID   string    `gorm:"size:255;index"           json:"record_id"`
	ModelName  string    `gorm:"size:255;index"           json:"model_name"`
	IPAddress  string    `gorm:"size:64"                  json:"ip_address"`
	Notes      string    `gorm:"type:text"                json:"notes"`
	ActionedAt time.Time `gorm:"not null"                 json:"actioned_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

func All() []any {
	return []any{
		&User{}, &Role{}, &Permission{},
		&UserRole{}, &RolePermission{}, &UserPermission{},
		&AuditLog{},
	}
}
