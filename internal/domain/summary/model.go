package summary

import (
	"math"
	"time"
)

// Summary es la proyección derivada de toda la población: cantidad de
// conejos, felicidad total y promedio. No tiene foreign keys, solo un
// contrato de reconciliación: un rescan desde los conejos actuales siempre
// la reconstruye correcta.
type Summary struct {
	TotalBunnies   int
	TotalHappiness int

	// AverageHappiness = round(total/count, 1) cuando count > 0, si no 0.
	AverageHappiness float64

	LastUpdated time.Time
	LastEventID string
}

// RoundAverage calcula el promedio redondeado a un decimal.
func RoundAverage(totalHappiness, totalBunnies int) float64 {
	if totalBunnies <= 0 {
		return 0
	}
	avg := float64(totalHappiness) / float64(totalBunnies)
	return math.Round(avg*10) / 10
}
