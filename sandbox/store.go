// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package sandbox

// A store holds raw JSON resource documents keyed by ID, preserving
// insertion order so list endpoints page deterministically. It is not
// safe for concurrent use; the Server's mutex guards it.
type store struct {
	ids  []string
	docs map[string][]byte
}

func newStore() *store {
	return &store{docs: make(map[string][]byte)}
}

func (s *store) get(id string) ([]byte, bool) {
	doc, ok := s.docs[id]
	return doc, ok
}

// put inserts or replaces the document for id. First insertion fixes
// the document's position in list order.
func (s *store) put(id string, doc []byte) {
	if _, ok := s.docs[id]; !ok {
		s.ids = append(s.ids, id)
	}
	s.docs[id] = doc
}

func (s *store) delete(id string) bool {
	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	for i, known := range s.ids {
		if known == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

// all returns the stored documents in insertion order.
func (s *store) all() [][]byte {
	docs := make([][]byte, 0, len(s.ids))
	for _, id := range s.ids {
		docs = append(docs, s.docs[id])
	}
	return docs
}

func (s *store) len() int {
	return len(s.ids)
}
