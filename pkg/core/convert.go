package core

import (
	"errors"

	"github.com/crystallen/memchat/pkg/memstore"
	"github.com/crystallen/memchat/pkg/prompt"
)

func toPromptRecords(records []memstore.Record) []prompt.Record {
	out := make([]prompt.Record, len(records))
	for i, r := range records {
		out[i] = prompt.Record{ID: r.ID, Text: r.Text, Score: r.Score}
	}
	return out
}

func fromStoreRecord(r memstore.Record) MemoryRecord {
	return MemoryRecord{ID: r.ID, Text: r.Text, Score: r.Score}
}

func fromStoreRecords(records []memstore.Record) []MemoryRecord {
	out := make([]MemoryRecord, len(records))
	for i, r := range records {
		out[i] = fromStoreRecord(r)
	}
	return out
}

// storeError maps memstore.ErrNotFound to ErrNotFound and tags everything
// else with ErrStoreFailed.
func storeError(op string, err error) error {
	if errors.Is(err, memstore.ErrNotFound) {
		return NewMemoryError(op, wrapCause(ErrNotFound, err))
	}
	return NewMemoryError(op, wrapCause(ErrStoreFailed, err))
}
