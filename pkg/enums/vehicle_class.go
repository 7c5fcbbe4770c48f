package enums

import "fmt"

// VehicleClass is the class of vehicle a driver is certified for.
type VehicleClass string

const (
	VehicleBike      VehicleClass = "bike"
	VehicleUVAuto    VehicleClass = "uv-auto"
	VehicleOmni      VehicleClass = "omni"
	VehicleTataMagic VehicleClass = "tata-magic"
	VehicleBolero    VehicleClass = "bolero"
)

var validVehicleClasses = []VehicleClass{
	VehicleBike,
	VehicleUVAuto,
	VehicleOmni,
	VehicleTataMagic,
	VehicleBolero,
}

// String implements fmt.Stringer.
func (v VehicleClass) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VehicleClass.
func (v VehicleClass) IsValid() bool {
	for _, candidate := range validVehicleClasses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVehicleClass converts raw input into a VehicleClass.
func ParseVehicleClass(value string) (VehicleClass, error) {
	for _, candidate := range validVehicleClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle class %q", value)
}
