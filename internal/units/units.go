// Package units provides shared constants and validation for cadence units
package units

// Unit constants
const (
	SPM     = "spm"     // steps per minute
	Strides = "strides" // strides (two steps) per minute
	Hz      = "hz"      // steps per second
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{SPM, Strides, Hz}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "spm, strides, hz"
}

// ConvertCadence converts a cadence from steps per minute to the target units.
// Reports store cadence in steps per minute.
func ConvertCadence(spm float64, targetUnits string) float64 {
	switch targetUnits {
	case Strides:
		return spm / 2
	case Hz:
		return spm / 60
	default:
		return spm
	}
}
