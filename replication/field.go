// Package replication pushes authoritative component values to peers. Each
// replicated field carries a version; the authority diffs captured values
// against the last captured ones and ships only the changed fields, and
// receivers apply last-write-wins per field and fire on-changed callbacks.
package replication

import (
	"errors"
	"fmt"
	"sort"

	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

var (
	ErrUnknownField   = errors.New("replication: unknown field")
	ErrDuplicateField = errors.New("replication: duplicate field id")
)

// Condition restricts which peers receive a field.
type Condition uint8

const (
	ToAll     Condition = iota
	OwnerOnly           // only the peer that owns the entity
	SkipOwner           // everyone except the owner
)

func (c Condition) allows(owner, peer netconfig.PeerID) bool {
	switch c {
	case OwnerOnly:
		return owner != netconfig.NoPeer && owner == peer
	case SkipOwner:
		return owner != peer
	}
	return true
}

// Binding connects a field to the component data it mirrors. Get reports
// false when the entry does not carry the field at all.
type Binding[T comparable] struct {
	Get       func(e *donburi.Entry) (T, bool)
	Set       func(e *donburi.Entry, v T)
	OnChanged func(e *donburi.Entry, old, cur T)
}

// Field is a registered replicated field with its value type erased.
type Field struct {
	ID        netconfig.FieldID
	Name      string
	Condition Condition

	read   func(e *donburi.Entry) (any, bool)
	encode func(v any) ([]byte, error)
	apply  func(e *donburi.Entry, data []byte) (changed bool, err error)
}

// NewField builds a Field for values of type T.
func NewField[T comparable](id netconfig.FieldID, name string, cond Condition, b Binding[T]) *Field {
	return &Field{
		ID:        id,
		Name:      name,
		Condition: cond,
		read: func(e *donburi.Entry) (any, bool) {
			v, ok := b.Get(e)
			if !ok {
				return nil, false
			}
			return v, true
		},
		encode: func(v any) ([]byte, error) {
			return Marshal(v.(T))
		},
		apply: func(e *donburi.Entry, data []byte) (bool, error) {
			var cur T
			if err := Unmarshal(data, &cur); err != nil {
				return false, err
			}
			old, _ := b.Get(e)
			b.Set(e, cur)
			if old == cur {
				return false, nil
			}
			if b.OnChanged != nil {
				b.OnChanged(e, old, cur)
			}
			return true, nil
		},
	}
}

// Registry is the set of fields a peer replicates. Authority and proxies must
// register the same IDs.
type Registry struct {
	fields map[netconfig.FieldID]*Field
	order  []*Field
}

func NewRegistry() *Registry {
	return &Registry{
		fields: make(map[netconfig.FieldID]*Field),
	}
}

// Register adds fields, failing on a reused ID.
func (r *Registry) Register(fields ...*Field) error {
	for _, f := range fields {
		if _, exists := r.fields[f.ID]; exists {
			return fmt.Errorf("%w: %d (%s)", ErrDuplicateField, f.ID, f.Name)
		}
		r.fields[f.ID] = f
		r.order = append(r.order, f)
	}
	sort.Slice(r.order, func(i, j int) bool { return r.order[i].ID < r.order[j].ID })
	return nil
}

// Field looks up a registered field.
func (r *Registry) Field(id netconfig.FieldID) (*Field, bool) {
	f, ok := r.fields[id]
	return f, ok
}

// Fields returns every registered field ordered by ID.
func (r *Registry) Fields() []*Field {
	return r.order
}
