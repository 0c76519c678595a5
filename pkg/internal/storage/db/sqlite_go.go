//go:build !no_sqlite && !cgo

package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/uploadvault/pkg/configs"
)

// 纯 Go 实现的 SQLite，无需 CGo.
func init() {
	RegisterDialectorFactory(configs.SQLite, func(dsn string) gorm.Dialector {
		return sqlite.Open(dsn)
	})
}
