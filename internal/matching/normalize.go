package matching

// ToBase converts a (price, currency) pair into the base currency using the
// supplied rate map. Currencies missing from the map default to rate 1, so
// an empty map degrades to identity conversion.
//
// No rounding happens here: full floating-point precision is carried through
// the pipeline and only rounded at display time. Invalid input is signaled
// by a non-finite or non-positive result, never by a panic - callers filter
// such values out before use.
func ToBase(price float64, currency string, rates RateMap, base string) float64 {
	return price * (rateOrOne(rates, currency) / rateOrOne(rates, base))
}

// FromBase converts a base-currency value into a target currency for
// display. Same tolerance-for-invalid-input policy as ToBase.
func FromBase(valueBase float64, targetCurrency string, rates RateMap, base string) float64 {
	return valueBase * (rateOrOne(rates, base) / rateOrOne(rates, targetCurrency))
}

func rateOrOne(rates RateMap, currency string) float64 {
	if rates == nil {
		return 1
	}
	if r, ok := rates[currency]; ok {
		return r
	}
	return 1
}
