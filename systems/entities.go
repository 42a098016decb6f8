package systems

import (
	"log"

	"github.com/automoto/blaster-mp/archetypes"
	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/physics"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/leveldata"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NewPhysicsWorld builds the collision space for a level.
func NewPhysicsWorld(level *leveldata.LevelData) *physics.World {
	w := physics.NewWorld(level.MapWidth, level.MapHeight, cfg.Level.CellSize)
	for _, wall := range level.Walls {
		w.AddSolid(wall.X, wall.Y, wall.W, wall.H, wall.Height)
	}
	log.Printf("[level] %d walls, %d spawn points, %d weapon spawns, %dx%d",
		len(level.Walls), len(level.SpawnPoints), len(level.WeaponSpawns), level.MapWidth, level.MapHeight)
	return w
}

// SpawnLevelWeapons places the level's weapons. Authority only.
func (s *Sim) SpawnLevelWeapons() {
	if !s.authority {
		return
	}
	for _, ws := range s.weaponSpawns {
		s.SpawnWeapon(ws.Kind, gamemath.V(ws.X, ws.Y, ws.Z))
	}
}

// SpawnCombatant creates a combatant for owner at spawn point index. Authority
// only.
func (s *Sim) SpawnCombatant(owner netconfig.PeerID, name string, index int) *donburi.Entry {
	if !s.authority {
		log.Printf("[sim] SpawnCombatant called without authority")
		return nil
	}
	pos := gamemath.V(0, 0, cfg.Combatant.CollisionHalfHeight)
	yaw := 0.0
	if index >= 0 && index < len(s.spawnPoints) {
		sp := s.spawnPoints[index]
		pos = gamemath.V(sp.X, sp.Y, sp.Z+cfg.Combatant.CollisionHalfHeight)
		yaw = sp.Yaw
	}

	msg := messages.EntitySpawned{
		ID:       s.allocateID(),
		Kind:     netconfig.KindCombatant,
		Owner:    owner,
		Name:     name,
		Position: pos,
		Yaw:      yaw,
	}
	e := s.createCombatant(msg)
	components.Combatant.Get(e).SpawnIndex = index
	s.spawned(e, msg)
	return e
}

// SpawnWeapon creates an unowned weapon resting at pos. Authority only.
func (s *Sim) SpawnWeapon(kind string, pos gamemath.Vec3) *donburi.Entry {
	if !s.authority {
		log.Printf("[sim] SpawnWeapon called without authority")
		return nil
	}
	msg := messages.EntitySpawned{
		ID:       s.allocateID(),
		Kind:     netconfig.KindWeapon,
		Name:     kind,
		Position: pos,
	}
	e := s.createWeapon(msg)
	s.spawned(e, msg)
	return e
}

func (s *Sim) spawned(e *donburi.Entry, msg messages.EntitySpawned) {
	if s.hooks.Spawned != nil {
		s.hooks.Spawned(e, msg)
	}
}

// Materialize creates the local copy of an entity the authority spawned. An
// entity that already exists is returned unchanged.
func (s *Sim) Materialize(msg messages.EntitySpawned) *donburi.Entry {
	if e, ok := s.Entry(msg.ID); ok {
		return e
	}
	switch msg.Kind {
	case netconfig.KindCombatant:
		return s.createCombatant(msg)
	case netconfig.KindWeapon:
		return s.createWeapon(msg)
	case netconfig.KindProjectile:
		return s.createProjectile(msg, components.ProjectileData{})
	}
	log.Printf("[sim] cannot materialize entity %d of kind %d", msg.ID, msg.Kind)
	return nil
}

// Describe rebuilds the spawn message for an existing entity, for peers that
// join after it was created.
func (s *Sim) Describe(e *donburi.Entry) messages.EntitySpawned {
	net := components.NetID.Get(e)
	tr := components.Transform.Get(e)
	msg := messages.EntitySpawned{
		ID:       net.ID,
		Kind:     net.Kind,
		Owner:    net.Owner,
		Position: tr.Position,
		Yaw:      tr.Yaw,
	}
	switch {
	case e.HasComponent(components.Combatant):
		msg.Name = components.Combatant.Get(e).Name
	case e.HasComponent(components.Weapon):
		msg.Name = components.Weapon.Get(e).Kind
	}
	return msg
}

func (s *Sim) createCombatant(msg messages.EntitySpawned) *donburi.Entry {
	e := archetypes.Combatant.Spawn(s.World)
	components.NetID.SetValue(e, components.NetIDData{ID: msg.ID, Kind: msg.Kind, Owner: msg.Owner})
	components.Combatant.SetValue(e, components.CombatantData{Name: msg.Name})
	components.Transform.SetValue(e, components.TransformData{
		Position: msg.Position,
		Yaw:      msg.Yaw,
		AimYaw:   msg.Yaw,
	})
	components.Movement.SetValue(e, components.MovementData{
		MaxWalkSpeed:     cfg.Combatant.BaseWalkSpeed,
		OrientToMovement: true,
	})
	components.Health.SetValue(e, components.HealthData{
		Current: cfg.Combatant.MaxHealth,
		Max:     cfg.Combatant.MaxHealth,
	})
	components.Combat.SetValue(e, components.CombatData{CanFire: true})
	components.Orientation.SetValue(e, components.OrientationData{
		StartingAimYaw: msg.Yaw,
		ProxyRotation:  msg.Yaw,
	})
	body := s.Physics.AddBox(msg.ID, msg.Position,
		cfg.Combatant.CollisionRadius, cfg.Combatant.CollisionHalfHeight, physics.TagCombatant)
	components.Body.SetValue(e, components.BodyData{Body: body})

	if msg.Owner != netconfig.NoPeer && msg.Owner == s.localPeer {
		donburi.Add(e, components.Crosshair, &components.CrosshairData{
			FOV:   cfg.Crosshair.DefaultFOV,
			Color: cfg.Crosshair.DefaultColor,
		})
		s.updateHUDHealth(e)
	}

	s.register(msg.ID, e)
	s.services.HUD.SetOverheadRole(msg.ID, s.Role(e))
	return e
}

func (s *Sim) createWeapon(msg messages.EntitySpawned) *donburi.Entry {
	spec := cfg.Weapon(msg.Name)
	e := archetypes.Weapon.Spawn(s.World)
	components.NetID.SetValue(e, components.NetIDData{ID: msg.ID, Kind: msg.Kind})
	components.Transform.SetValue(e, components.TransformData{Position: msg.Position, Yaw: msg.Yaw})

	body := s.Physics.AddBox(msg.ID, msg.Position, 30, 10, physics.TagWeapon)
	components.Body.SetValue(e, components.BodyData{Body: body})

	w := components.WeaponData{Kind: spec.Kind, State: netconfig.WeaponInitial}
	if s.authority {
		w.Sphere = s.Physics.AddSphere(msg.ID, msg.Position, spec.PickupRadius, physics.TagPickup)
	}
	components.Weapon.SetValue(e, w)
	s.applyWeaponState(e)

	s.register(msg.ID, e)
	return e
}

func (s *Sim) createProjectile(msg messages.EntitySpawned, p components.ProjectileData) *donburi.Entry {
	e := archetypes.Projectile.Spawn(s.World)
	components.NetID.SetValue(e, components.NetIDData{ID: msg.ID, Kind: msg.Kind, Owner: msg.Owner})
	components.Transform.SetValue(e, components.TransformData{Position: msg.Position, Yaw: msg.Yaw})
	components.Projectile.SetValue(e, p)
	s.register(msg.ID, e)
	return e
}

// DestroyEntity removes an entity from the table, the world and the collision
// space. On the authority the removal is announced to every peer.
func (s *Sim) DestroyEntity(id netconfig.EntityID) {
	e, ok := s.Entry(id)
	if !ok {
		return
	}

	if e.HasComponent(components.Body) {
		s.Physics.Remove(components.Body.Get(e).Body)
	}
	if e.HasComponent(components.Weapon) {
		w := components.Weapon.Get(e)
		s.Physics.Remove(w.Sphere)
		s.Timers.Cancel(w.DropTimer)
		if w.PickupWidgetVisible {
			s.services.HUD.ShowPickupWidget(id, false)
		}
		if s.authority {
			s.clearOverlapsOf(id)
		}
	}
	if e.HasComponent(components.Combat) {
		s.Timers.Cancel(components.Combat.Get(e).FireTimer)
	}
	if e.HasComponent(components.Elim) {
		s.Timers.Cancel(components.Elim.Get(e).RespawnTimer)
	}
	if e.HasComponent(components.Projectile) {
		s.Timers.Cancel(components.Projectile.Get(e).Lifetime)
		at := components.Transform.Get(e).Position
		s.services.Effects.SpawnImpact(at)
		s.services.Effects.PlaySound(cfg.SoundProjectileImpact, at)
	}

	delete(s.entities, id)
	s.World.Remove(e.Entity())

	if s.authority && s.hooks.Destroyed != nil {
		s.hooks.Destroyed(id)
	}
}

func (s *Sim) clearOverlapsOf(weapon netconfig.EntityID) {
	var holders []*donburi.Entry
	for c := range components.Overlap.Iter(s.World) {
		if components.Overlap.Get(c).Weapon == weapon {
			holders = append(holders, c)
		}
	}
	for _, c := range holders {
		s.SetOverlappingWeapon(c, netconfig.NoEntity)
	}
}

// RemovePeer drops everything a departing peer controlled. Its weapon is
// dropped first so it stays in the match.
func (s *Sim) RemovePeer(peer netconfig.PeerID) {
	if !s.authority {
		return
	}
	for {
		c, ok := s.CombatantOf(peer)
		if !ok {
			return
		}
		s.DropWeapon(c)
		s.DestroyEntity(idOf(c))
	}
}
