//go:build !no_sqlite && cgo

package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/uploadvault/pkg/configs"
)

// CGo 可用时使用 mattn/go-sqlite3.
func init() {
	RegisterDialectorFactory(configs.SQLite, func(dsn string) gorm.Dialector {
		return sqlite.Open(dsn)
	})
}
