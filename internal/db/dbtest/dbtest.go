// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/adminpanel/internal/db"
	"github.com/Skotchmaster/adminpanel/internal/models"
)

func InitTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	// every pooled connection to ":memory:" would otherwise see its own empty database
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(context.Background(), gdb); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return gdb
}

// SeedUser inserts an active user bound to roleID and returns it.
func SeedUser(t testing.TB, gdb *gorm.DB, name, email, passwordHash string, roleID uint) models.User {
	t.Helper()

	u := models.User{Name: name, Email: email, Password: passwordHash, Active: true}
	if err := gdb.Create(&u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := gdb.Create(&models.UserRole{UserID: u.ID, RoleID: roleID}).Error; err != nil {
		t.Fatalf("failed to bind role: %v", err)
	}
	return u
}

func SeedRole(t testing.TB, gdb *gorm.DB, name string) models.Role {
	t.Helper()

	r := models.Role{Name: name}
	if err := gdb.Create(&r).Error; err != nil {
		t.Fatalf("failed to create role: %v", err)
	}
	return r
}

func SeedPermission(t testing.TB, gdb *gorm.DB, name string) models.Permission {
	t.Helper()

	p := models.Permission{Name: name}
	if err := gdb.Create(&p).Error; err != nil {
		t.Fatalf("failed to create permission: %v", err)
	}
	return p
}

func GrantRole(t testing.TB, gdb *gorm.DB, roleID, permissionID uint) {
	t.Helper()
	if err := gdb.Create(&models.RolePermission{RoleID: roleID, PermissionID: permissionID}).Error; err != nil {
		t.Fatalf("failed to grant role permission: %v", err)
	}
}

func GrantUser(t testing.TB, gdb *gorm.DB, userID, permissionID uint) {
	t.Helper()
	if err := gdb.Create(&models.UserPermission{UserID: userID, PermissionID: permissionID}).Error; err != nil {
		t.Fatalf("failed to grant user permission: %v", err)
	}
}

// RoleID returns the id of a seeded role by name.
func RoleID(t testing.TB, gdb *gorm.DB, name string) uint {
	t.Helper()

	var r models.Role
	if err := gdb.Where("name = ?", name).First(&r).Error; err != nil {
		t.Fatalf("role %q not found: %v", name, err)
	}
	return r.ID
}
