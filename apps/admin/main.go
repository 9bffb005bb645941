package main

import (
	"log"
	"os"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/party"
	"github.com/trezcool/tutorparty/core/usage"
	"github.com/trezcool/tutorparty/storage/database"
	sqlxrepos "github.com/trezcool/tutorparty/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// start CLI
	partySvc := party.NewService(sqlxrepos.NewMemberRepository(db), conf)
	cli := &commandLine{
		db:       db,
		partySvc: partySvc,
		usageSvc: usage.NewService(sqlxrepos.NewEventRepository(db), partySvc, conf),
		out:      os.Stdout,
	}
	if err := newRootCmd(cli).Execute(); err != nil {
		db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
