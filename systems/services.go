package systems

import (
	"image/color"
	"log"

	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/netconfig"
)

// Animator plays montages on the presentation side.
type Animator interface {
	PlayMontage(id netconfig.EntityID, montage cfg.MontageID, section string)
	PlayWeaponFire(weapon netconfig.EntityID)
}

// Effects spawns cosmetic sounds and particles.
type Effects interface {
	PlaySound(sound cfg.SoundID, at gamemath.Vec3)
	SpawnImpact(at gamemath.Vec3)
	SetDissolve(id netconfig.EntityID, amount float64)
}

// HUDPackage is what the crosshair widget draws.
type HUDPackage struct {
	Crosshairs string
	Spread     float64
	Color      color.RGBA
}

// HUD is the local player's heads-up display.
type HUD interface {
	SetHUDPackage(p HUDPackage)
	SetHealth(text string, percent float64)
	ShowPickupWidget(weapon netconfig.EntityID, visible bool)
	// SetOverheadRole labels a combatant with its network role on this peer.
	SetOverheadRole(id netconfig.EntityID, role netconfig.Role)
}

// View is where a combatant looks from.
type View struct {
	Position gamemath.Vec3
	AimYaw   float64
	AimPitch float64
}

// Camera deprojects the screen center and owns the field of view.
type Camera interface {
	CrosshairRay(v View) (origin, dir gamemath.Vec3, ok bool)
	SetFOV(fov float64)
}

// Services bundles the presentation collaborators a peer calls into.
type Services struct {
	Animator Animator
	Effects  Effects
	HUD      HUD
	Camera   Camera
}

// NopServices is used by headless peers.
func NopServices() Services {
	return Services{
		Animator: nopAnimator{},
		Effects:  nopEffects{},
		HUD:      nopHUD{},
		Camera:   &BoomCamera{},
	}
}

// LogServices reports every presentation call through the standard logger.
func LogServices(prefix string) Services {
	return Services{
		Animator: logAnimator{prefix: prefix},
		Effects:  logEffects{prefix: prefix},
		HUD:      logHUD{prefix: prefix},
		Camera:   &BoomCamera{},
	}
}

func (s Services) withDefaults() Services {
	if s.Animator == nil {
		s.Animator = nopAnimator{}
	}
	if s.Effects == nil {
		s.Effects = nopEffects{}
	}
	if s.HUD == nil {
		s.HUD = nopHUD{}
	}
	if s.Camera == nil {
		s.Camera = &BoomCamera{}
	}
	return s
}

// BoomCamera is a third-person camera on a spring arm behind the combatant.
type BoomCamera struct {
	FOV float64
}

func (c *BoomCamera) CrosshairRay(v View) (gamemath.Vec3, gamemath.Vec3, bool) {
	dir := gamemath.Forward(v.AimYaw, gamemath.UncompressPitch(v.AimPitch))
	pivot := v.Position.Add(gamemath.Vec3{Z: cfg.Combatant.CameraHeight})
	return pivot.Sub(dir.Scale(cfg.Combatant.CameraBoomLength)), dir, true
}

func (c *BoomCamera) SetFOV(fov float64) {
	c.FOV = fov
}

type nopAnimator struct{}

func (nopAnimator) PlayMontage(netconfig.EntityID, cfg.MontageID, string) {}
func (nopAnimator) PlayWeaponFire(netconfig.EntityID)                     {}

type nopEffects struct{}

func (nopEffects) PlaySound(cfg.SoundID, gamemath.Vec3)    {}
func (nopEffects) SpawnImpact(gamemath.Vec3)               {}
func (nopEffects) SetDissolve(netconfig.EntityID, float64) {}

type nopHUD struct{}

func (nopHUD) SetHUDPackage(HUDPackage)                           {}
func (nopHUD) SetHealth(string, float64)                          {}
func (nopHUD) ShowPickupWidget(netconfig.EntityID, bool)          {}
func (nopHUD) SetOverheadRole(netconfig.EntityID, netconfig.Role) {}

type logAnimator struct{ prefix string }

func (a logAnimator) PlayMontage(id netconfig.EntityID, montage cfg.MontageID, section string) {
	def := cfg.CharacterMontages["combatant"][montage]
	log.Printf("[%s] entity %d plays %s/%s", a.prefix, id, def.Name, section)
}

func (a logAnimator) PlayWeaponFire(weapon netconfig.EntityID) {
	log.Printf("[%s] weapon %d fire animation", a.prefix, weapon)
}

type logEffects struct{ prefix string }

func (f logEffects) PlaySound(sound cfg.SoundID, at gamemath.Vec3) {
	log.Printf("[%s] sound %s x%.2f at (%.0f, %.0f, %.0f)", f.prefix, cfg.Sound.Cues[sound], cfg.SoundVolume(sound), at.X, at.Y, at.Z)
}

func (f logEffects) SpawnImpact(at gamemath.Vec3) {
	log.Printf("[%s] impact at (%.0f, %.0f, %.0f)", f.prefix, at.X, at.Y, at.Z)
}

func (f logEffects) SetDissolve(netconfig.EntityID, float64) {}

type logHUD struct{ prefix string }

func (h logHUD) SetHUDPackage(HUDPackage) {}

func (h logHUD) SetHealth(text string, percent float64) {
	log.Printf("[%s] health %s (%.0f%%)", h.prefix, text, percent*100)
}

func (h logHUD) SetOverheadRole(id netconfig.EntityID, role netconfig.Role) {
	log.Printf("[%s] entity %d overhead %s", h.prefix, id, role)
}

func (h logHUD) ShowPickupWidget(weapon netconfig.EntityID, visible bool) {
	log.Printf("[%s] pickup widget for weapon %d visible=%v", h.prefix, weapon, visible)
}
