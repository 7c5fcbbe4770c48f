package tiering

import (
	pkgerrors "github.com/khetisathi/khetisathi-backend/pkg/errors"

	"github.com/khetisathi/khetisathi-backend/pkg/enums"
)

// Tier is the vehicle requirement derived from an accepted worker count.
type Tier struct {
	Vehicle enums.VehicleClass
	Count   int
}

// Resolution carries the primary tier plus the substitution allowed when the
// primary cannot be staffed. Only the smallest tier has a fallback.
type Resolution struct {
	Primary  Tier
	Fallback *Tier
}

// Resolve maps the count of accepted workers onto the transport tier table.
func Resolve(acceptedWorkers int) (Resolution, error) {
	switch {
	case acceptedWorkers <= 0:
		return Resolution{}, pkgerrors.New(pkgerrors.CodeValidation, "accepted worker count must be positive")
	case acceptedWorkers <= 4:
		return Resolution{
			Primary:  Tier{Vehicle: enums.VehicleBike, Count: 2},
			Fallback: &Tier{Vehicle: enums.VehicleUVAuto, Count: 1},
		}, nil
	case acceptedWorkers <= 6:
		return Resolution{Primary: Tier{Vehicle: enums.VehicleUVAuto, Count: 1}}, nil
	case acceptedWorkers <= 10:
		return Resolution{Primary: Tier{Vehicle: enums.VehicleOmni, Count: 1}}, nil
	case acceptedWorkers <= 15:
		return Resolution{Primary: Tier{Vehicle: enums.VehicleTataMagic, Count: 1}}, nil
	default:
		return Resolution{Primary: Tier{Vehicle: enums.VehicleBolero, Count: 1}}, nil
	}
}
