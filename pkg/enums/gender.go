package enums

import "fmt"

// Gender is matched exactly when a service's requirement is gendered.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// IsValid reports whether the value is a known Gender.
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// ParseGender converts raw input into a Gender.
func ParseGender(value string) (Gender, error) {
	switch Gender(value) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	}
	return "", fmt.Errorf("invalid gender %q", value)
}
