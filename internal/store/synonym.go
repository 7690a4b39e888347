package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// GetSynonymGroups returns the synonym table as entered by the admin,
// group key to members. Empty map if none has been saved.
func (s *Store) GetSynonymGroups(ctx context.Context) (map[string][]string, error) {
	return s.getSynonymMap(ctx, synonymGroupsKey)
}

// GetExpandedSynonyms returns the stored bidirectional expansion, every
// member mapped to the rest of its group.
func (s *Store) GetExpandedSynonyms(ctx context.Context) (map[string][]string, error) {
	return s.getSynonymMap(ctx, synonymExpandedKey)
}

// SaveSynonyms persists the raw groups and their expansion together so
// the two can never drift apart.
func (s *Store) SaveSynonyms(ctx context.Context, groups, expanded map[string][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, []byte(synonymGroupsKey), groups); err != nil {
			return err
		}
		return setJSON(txn, []byte(synonymExpandedKey), expanded)
	})
}

func (s *Store) getSynonymMap(ctx context.Context, key string) (map[string][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make(map[string][]string)
	err := s.db.View(func(txn *badger.Txn) error {
		err := getJSON(txn, []byte(key), &result)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
