package sim

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/dgraph-io/badger/v4"
	"github.com/tidwall/btree"
)

var topicPrefix = []byte("topic/")

// topicStore persists subscribed topics per app in badger and mirrors them
// in an ordered set.
type topicStore struct {
	db     *badger.DB
	topics map[string]*btree.Set[string]
}

func openStore(dir string) (*topicStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open topic store: %w", err)
	}

	s := &topicStore{db: db, topics: make(map[string]*btree.Set[string])}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// topicKey escapes the app ID so it never contains the separator.
func topicKey(appID, topic string) []byte {
	app := url.PathEscape(appID)
	key := make([]byte, 0, len(topicPrefix)+len(app)+1+len(topic))
	key = append(key, topicPrefix...)
	key = append(key, app...)
	key = append(key, '/')
	return append(key, topic...)
}

func splitTopicKey(key []byte) (appID, topic string, ok bool) {
	rest := bytes.TrimPrefix(key, topicPrefix)
	i := bytes.IndexByte(rest, '/')
	if i < 0 {
		return "", "", false
	}
	app, err := url.PathUnescape(string(rest[:i]))
	if err != nil {
		return "", "", false
	}
	return app, string(rest[i+1:]), true
}

func (s *topicStore) load() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(topicPrefix); it.ValidForPrefix(topicPrefix); it.Next() {
			appID, topic, ok := splitTopicKey(it.Item().Key())
			if !ok {
				continue
			}
			s.set(appID).Insert(topic)
		}
		return nil
	})
}

func (s *topicStore) set(appID string) *btree.Set[string] {
	set, ok := s.topics[appID]
	if !ok {
		set = &btree.Set[string]{}
		s.topics[appID] = set
	}
	return set
}

func (s *topicStore) add(appID string, topics ...string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, t := range topics {
			if err := txn.Set(topicKey(appID, t), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store topics: %w", err)
	}

	set := s.set(appID)
	for _, t := range topics {
		set.Insert(t)
	}
	return nil
}

func (s *topicStore) remove(appID, topic string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(topicKey(appID, topic))
	})
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	s.set(appID).Delete(topic)
	return nil
}

func (s *topicStore) has(appID, topic string) bool {
	return s.set(appID).Contains(topic)
}

func (s *topicStore) list(appID string) []string {
	return s.set(appID).Keys()
}

func (s *topicStore) close() error {
	return s.db.Close()
}
