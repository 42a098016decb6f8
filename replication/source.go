package replication

import (
	"log"

	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

type slot struct {
	value   any
	version uint64
	data    []byte
}

type sourceEntity struct {
	owner netconfig.PeerID
	slots map[netconfig.FieldID]*slot
}

// Source is the authority side of replication. Capture diffs component
// values into versioned slots; Delta hands each peer the slots newer than
// what it was last sent.
type Source struct {
	fields   *Registry
	version  uint64
	entities map[netconfig.EntityID]*sourceEntity
	sent     map[netconfig.PeerID]uint64
}

func NewSource(fields *Registry) *Source {
	return &Source{
		fields:   fields,
		entities: make(map[netconfig.EntityID]*sourceEntity),
		sent:     make(map[netconfig.PeerID]uint64),
	}
}

// Track starts replicating an entity owned by owner.
func (s *Source) Track(id netconfig.EntityID, owner netconfig.PeerID) {
	if _, ok := s.entities[id]; ok {
		return
	}
	s.entities[id] = &sourceEntity{
		owner: owner,
		slots: make(map[netconfig.FieldID]*slot),
	}
}

// Untrack drops an entity. Pending values for it are never sent.
func (s *Source) Untrack(id netconfig.EntityID) {
	delete(s.entities, id)
}

// Tracked reports whether id is being replicated.
func (s *Source) Tracked(id netconfig.EntityID) bool {
	_, ok := s.entities[id]
	return ok
}

// AddPeer registers a peer that has seen nothing yet, so its first Delta
// carries the full current state.
func (s *Source) AddPeer(peer netconfig.PeerID) {
	s.sent[peer] = 0
}

func (s *Source) RemovePeer(peer netconfig.PeerID) {
	delete(s.sent, peer)
}

// Version is the newest version issued.
func (s *Source) Version() uint64 {
	return s.version
}

// Capture reads every registered field of e and bumps the version of those
// whose value differs from the last capture. It returns the number of fields
// that changed.
func (s *Source) Capture(id netconfig.EntityID, e *donburi.Entry) int {
	ent, ok := s.entities[id]
	if !ok {
		return 0
	}

	changed := 0
	for _, f := range s.fields.Fields() {
		v, present := f.read(e)
		if !present {
			continue
		}
		if sl, ok := ent.slots[f.ID]; ok && sl.value == v {
			continue
		}
		data, err := f.encode(v)
		if err != nil {
			log.Printf("[replication] field %s of entity %d: %v", f.Name, id, err)
			continue
		}
		s.version++
		ent.slots[f.ID] = &slot{value: v, version: s.version, data: data}
		changed++
	}
	return changed
}

// Delta returns every field update peer has not been sent yet and marks them
// sent. Updates are ordered by version, so a receiver applying them in order
// sees the same per-field history the authority wrote.
func (s *Source) Delta(peer netconfig.PeerID) []messages.FieldUpdate {
	since, ok := s.sent[peer]
	if !ok {
		return nil
	}

	var updates []messages.FieldUpdate
	for id, ent := range s.entities {
		for fid, sl := range ent.slots {
			if sl.version <= since {
				continue
			}
			f, ok := s.fields.Field(fid)
			if !ok || !f.Condition.allows(ent.owner, peer) {
				continue
			}
			updates = append(updates, messages.FieldUpdate{
				Entity:  id,
				Field:   fid,
				Version: sl.version,
				Value:   sl.data,
			})
		}
	}
	sortUpdates(updates)

	s.sent[peer] = s.version
	return updates
}
