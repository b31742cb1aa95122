// Package deadline maps complaint categories onto resolution deadlines.
package deadline

import (
	"time"

	"cityline/internal/complaint/models"
)

// Offsets in whole calendar days per category class. An unrecognized category
// falls into the default window; that is policy, not a failure.
const (
	daysUrgentUtility  = 3
	daysPublicSafety   = 2
	daysInfrastructure = 7
	daysDefault        = 14
)

// Compute returns the resolution deadline for a complaint of the given
// category submitted at now. Pure function, no error path.
func Compute(category models.Category, now time.Time) time.Time {
	switch category {
	case models.CategoryWater, models.CategoryElectricity:
		return now.AddDate(0, 0, daysUrgentUtility)
	case models.CategoryPublicSafety:
		return now.AddDate(0, 0, daysPublicSafety)
	case models.CategoryRoads, models.CategorySanitation:
		return now.AddDate(0, 0, daysInfrastructure)
	default:
		return now.AddDate(0, 0, daysDefault)
	}
}
