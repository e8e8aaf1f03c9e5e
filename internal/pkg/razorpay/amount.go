package razorpay

// Razorpay amounts are integers in the currency subunit (paise for INR).
const subunitsPerUnit = 100

// ToSubunits converts a whole-currency amount to paise.
func ToSubunits(amount int64) int64 {
	return amount * subunitsPerUnit
}

// FromSubunits converts paise back to whole currency. ok is false when the
// value is not a whole number of units.
func FromSubunits(subunits int64) (amount int64, ok bool) {
	return subunits / subunitsPerUnit, subunits%subunitsPerUnit == 0
}
