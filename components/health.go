package components

import "github.com/yohamta/donburi"

// HealthData is replicated to every peer. Current stays in [0, Max].
type HealthData struct {
	Current float64
	Max     float64
}

var Health = donburi.NewComponentType[HealthData]()
