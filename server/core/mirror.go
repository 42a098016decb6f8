package core

import (
	"log"

	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netcomponents"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/yohamta/donburi"
)

// Mirror keeps one esync entity per replicated entity so srvsync can ship
// interpolated transforms to clients.
type Mirror struct {
	world    donburi.World
	entities map[netconfig.EntityID]donburi.Entity
	seen     map[netconfig.EntityID]bool
}

func NewMirror(world donburi.World) *Mirror {
	return &Mirror{
		world:    world,
		entities: make(map[netconfig.EntityID]donburi.Entity),
		seen:     make(map[netconfig.EntityID]bool),
	}
}

// Update writes the latest transforms and removes entities that are gone.
func (m *Mirror) Update(transforms []messages.EntityTransform) {
	clear(m.seen)
	for _, t := range transforms {
		m.seen[t.ID] = true
		entity, ok := m.entities[t.ID]
		if !ok {
			var err error
			entity, err = m.create(t.ID)
			if err != nil {
				log.Printf("[mirror] entity %d: %v", t.ID, err)
				continue
			}
		}
		netcomponents.NetTransform.SetValue(m.world.Entry(entity), netcomponents.FromEntityTransform(t))
	}

	for id, entity := range m.entities {
		if m.seen[id] {
			continue
		}
		if m.world.Valid(entity) {
			m.world.Remove(entity)
		}
		delete(m.entities, id)
	}
}

// Len is the number of mirrored entities.
func (m *Mirror) Len() int {
	return len(m.entities)
}

func (m *Mirror) create(id netconfig.EntityID) (donburi.Entity, error) {
	entity := m.world.Create(netcomponents.NetIdentity, netcomponents.NetTransform)
	netcomponents.NetIdentity.SetValue(m.world.Entry(entity), netcomponents.NetIdentityData{Entity: id})

	err := srvsync.NetworkSync(m.world, &entity,
		srvsync.WithInterp(netcomponents.NetTransform),
		netcomponents.NetIdentity,
	)
	if err != nil {
		m.world.Remove(entity)
		return entity, err
	}
	m.entities[id] = entity
	return entity, nil
}
