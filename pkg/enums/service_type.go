package enums

import "fmt"

// ServiceType identifies what kind of labor an order books.
//
// The farm-workers service is gendered and counted per gender; every other
// service is a single-skill booking with a flat head count.
type ServiceType string

const (
	ServiceTypeFarmWorkers   ServiceType = "farm-workers"
	ServiceTypePloughing     ServiceType = "ploughing"
	ServiceTypeSowing        ServiceType = "sowing"
	ServiceTypeHarvesting    ServiceType = "harvesting"
	ServiceTypeSpraying      ServiceType = "spraying"
	ServiceTypeTractorDriver ServiceType = "tractor-driver"
)

var validServiceTypes = []ServiceType{
	ServiceTypeFarmWorkers,
	ServiceTypePloughing,
	ServiceTypeSowing,
	ServiceTypeHarvesting,
	ServiceTypeSpraying,
	ServiceTypeTractorDriver,
}

// SkillTagFarmWorker is the skill tag matched for the farm-workers service.
const SkillTagFarmWorker = "farm-worker"

// String implements fmt.Stringer.
func (s ServiceType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ServiceType.
func (s ServiceType) IsValid() bool {
	for _, candidate := range validServiceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsGendered reports whether the requirement is split by gender.
func (s ServiceType) IsGendered() bool {
	return s == ServiceTypeFarmWorkers
}

// SkillTag returns the skill tag a candidate must carry to serve this service.
func (s ServiceType) SkillTag() string {
	if s == ServiceTypeFarmWorkers {
		return SkillTagFarmWorker
	}
	return string(s)
}

// ParseServiceType converts raw input into a ServiceType.
func ParseServiceType(value string) (ServiceType, error) {
	for _, candidate := range validServiceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service type %q", value)
}
