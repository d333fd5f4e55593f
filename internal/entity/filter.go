package entity

import "strings"

type OrderFactor string

const (
	Ascending  OrderFactor = "ASC"
	Descending OrderFactor = "DESC"
)

func (of *OrderFactor) String() string {
	if of != nil {
		if *of == Ascending {
			return "ASC"
		}
		return "DESC"
	}
	return "ASC"
}

// ParseOrderFactor defaults to descending, newest first.
func ParseOrderFactor(s string) OrderFactor {
	if strings.EqualFold(s, string(Ascending)) {
		return Ascending
	}
	return Descending
}
