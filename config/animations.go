package config

// MontageID identifies an animation montage the simulation asks the
// animator to play.
type MontageID int

const (
	MontageNone MontageID = iota
	MontageFireWeapon
	MontageElim
	MontageHitReact
)

// MontageDef names a montage asset and the sections it exposes.
type MontageDef struct {
	Name     string
	Sections []string
}

// Montage section names
const (
	SectionRifleAim  = "RifleAim"
	SectionRifleHip  = "RifleHip"
	SectionDefault   = "Default"
	SectionFromFront = "FromFront"
)

// CharacterMontages maps a character key (e.g., "combatant")
// to its montage definitions.
var CharacterMontages = map[string]map[MontageID]MontageDef{
	"combatant": {
		MontageFireWeapon: {Name: "FireWeapon", Sections: []string{SectionRifleAim, SectionRifleHip}},
		MontageElim:       {Name: "Elim", Sections: []string{SectionDefault}},
		MontageHitReact:   {Name: "HitReact", Sections: []string{SectionFromFront}},
	},
}

// FireSection picks the fire montage section for the aiming flag.
func FireSection(aiming bool) string {
	if aiming {
		return SectionRifleAim
	}
	return SectionRifleHip
}
