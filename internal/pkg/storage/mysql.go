package storage

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"valsia/internal/app/models"
	"valsia/pkg/config"
)

// OpenMysql 连接生成记录库并迁移表结构
func OpenMysql(conf config.Mysql, dev bool) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(conf.DSN()))
	if err != nil {
		return nil, fmt.Errorf("db connect fail: %w", err)
	}
	sqlDb, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	sqlDb.SetConnMaxLifetime(time.Hour * 6)
	sqlDb.SetMaxIdleConns(conf.MaxIdleConns)
	sqlDb.SetMaxOpenConns(conf.MaxOpenConns)
	if dev {
		db = db.Debug()
	}
	if err := db.AutoMigrate(&models.Generation{}); err != nil {
		return nil, fmt.Errorf("migrate generation: %w", err)
	}
	log.Info("mysql connection success")
	return db, nil
}
