package data

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/stake-plus/govboard/src/api/types"
)

func MustMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Connection{},
		&types.CachedProposal{},
		&types.VoteRecord{},
		&types.TxRecord{},
		&types.ProposalMeta{},
	); err != nil {
		log.Fatalf("mysql migrate: %v", err)
	}
	return db
}
