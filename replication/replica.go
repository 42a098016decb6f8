package replication

import (
	"fmt"
	"sort"

	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

type fieldKey struct {
	entity netconfig.EntityID
	field  netconfig.FieldID
}

// Replica is the receiving side of replication on a proxy peer.
type Replica struct {
	fields *Registry
	seen   map[fieldKey]uint64
}

func NewReplica(fields *Registry) *Replica {
	return &Replica{
		fields: fields,
		seen:   make(map[fieldKey]uint64),
	}
}

// Apply writes u into e if it is newer than anything already applied for the
// same field. It reports whether the local value changed; the field's
// OnChanged callback has run by the time it returns.
func (r *Replica) Apply(e *donburi.Entry, u messages.FieldUpdate) (bool, error) {
	f, ok := r.fields.Field(u.Field)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownField, u.Field)
	}

	k := fieldKey{entity: u.Entity, field: u.Field}
	if u.Version <= r.seen[k] {
		return false, nil
	}
	r.seen[k] = u.Version

	changed, err := f.apply(e, u.Value)
	if err != nil {
		return false, fmt.Errorf("field %s of entity %d: %w", f.Name, u.Entity, err)
	}
	return changed, nil
}

// Forget drops version bookkeeping for a destroyed entity.
func (r *Replica) Forget(id netconfig.EntityID) {
	for k := range r.seen {
		if k.entity == id {
			delete(r.seen, k)
		}
	}
}

func sortUpdates(updates []messages.FieldUpdate) {
	sort.Slice(updates, func(i, j int) bool {
		return updates[i].Version < updates[j].Version
	})
}
