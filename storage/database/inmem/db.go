package inmemdb

import (
	"sync"

	"github.com/trezcool/tutorparty/core/party"
	"github.com/trezcool/tutorparty/core/usage"
)

type (
	DB struct {
		member *memberTable
		event  *eventTable
	}

	memberTable struct {
		sync.RWMutex
		table map[string]*party.Member
		order []string
	}

	eventTable struct {
		sync.RWMutex
		table []usage.Event
	}
)

// Open returns an empty in-memory database.
func Open() *DB {
	return &DB{
		member: &memberTable{table: make(map[string]*party.Member)},
		event:  &eventTable{},
	}
}
