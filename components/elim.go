package components

import (
	"github.com/automoto/blaster-mp/timers"
	"github.com/tanema/gween"
	"github.com/yohamta/donburi"
)

type ElimData struct {
	Elimmed bool

	// Dissolve runs from 0 to 1 after elimination
	Dissolve      *gween.Tween
	DissolveValue float64

	RespawnTimer timers.Handle
}

var Elim = donburi.NewComponentType[ElimData]()
