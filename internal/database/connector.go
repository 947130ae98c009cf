package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"olympus.io/loot-of-olympus/internal/config"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
)

var (
	Postgres *gorm.DB
)

// InitPostgres connects to postgres and migrates the game tables.
func InitPostgres(conf *config.DBCredential) {
	cli, err := Open(conf)
	if err != nil {
		log.Fatalf("connect to pg:%v", err)
	}
	Postgres = cli
	log.Info("Connected to game postgres...")
}

func Open(conf *config.DBCredential) (*gorm.DB, error) {
	cli, err := gorm.Open(postgres.Open(conf.Dsn()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: "game.",
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open pg")
	}
	db, err := cli.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get pg conn")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping pg")
	}
	if err := cli.AutoMigrate(&PostItem{}); err != nil {
		return nil, errors.Wrap(err, "autoMigrate tables")
	}
	return cli, nil
}

func Close() {
	if Postgres == nil {
		return
	}
	db, err := Postgres.DB()
	if err != nil {
		log.Warnf("get pg conn:%v", err)
		return
	}
	if err := db.Close(); err != nil {
		log.Warnf("close pg:%v", err)
	}
	Postgres = nil
}
