package model

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Type is the direction of money flow. Stored values are the short codes.
type Type string

const (
	TypeDebit   Type = "D"
	TypeCredit  Type = "C"
	TypeUnknown Type = "Unk"
)

// typeAliases maps upper-cased statement codes to a direction. Codes that are
// not listed parse as TypeUnknown.
var typeAliases = map[string]Type{
	"D": TypeDebit,
	"C": TypeCredit,
	"K": TypeCredit,
}

// ParseType never fails: unrecognised input is TypeUnknown.
func ParseType(value string) Type {
	if t, ok := typeAliases[strings.ToUpper(strings.TrimSpace(value))]; ok {
		return t
	}
	return TypeUnknown
}

func (t Type) String() string {
	return string(t)
}

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

var currencies = map[Currency]struct{}{
	CurrencyUSD: {},
	CurrencyEUR: {},
}

func ParseCurrency(value string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := currencies[c]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownCurrency, value)
	}
	return c, nil
}

func (c Currency) String() string {
	return string(c)
}

type Category string

const (
	CategoryFood      Category = "Food"
	CategoryGames     Category = "Games"
	CategoryHealth    Category = "Health"
	CategoryPets      Category = "Pets"
	CategoryTransport Category = "Transport"
	CategoryIncome    Category = "Income"
	CategoryShopping  Category = "Shopping"
	CategoryBeauty    Category = "Beauty"
	CategoryEducation Category = "Education"
	CategorySport     Category = "Sport"
	CategoryServices  Category = "Services"
	CategoryTravel    Category = "Travel"
	CategoryHousing   Category = "Housing"
	CategoryMisc      Category = "Misc"
	CategoryUnknown   Category = "Unknown"
)

var categories = map[Category]struct{}{
	CategoryFood:      {},
	CategoryGames:     {},
	CategoryHealth:    {},
	CategoryPets:      {},
	CategoryTransport: {},
	CategoryIncome:    {},
	CategoryShopping:  {},
	CategoryBeauty:    {},
	CategoryEducation: {},
	CategorySport:     {},
	CategoryServices:  {},
	CategoryTravel:    {},
	CategoryHousing:   {},
	CategoryMisc:      {},
	CategoryUnknown:   {},
}

// ParseCategory lower-cases the label and capitalises its first letter before
// the lookup, so "FOOD" and "food" resolve to Food. Only the first word is
// capitalised: "fast food" becomes "Fast food" and has to be a category as is.
func ParseCategory(value string) (Category, error) {
	c := Category(capitalize(strings.ToLower(strings.TrimSpace(value))))
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownCategory, value)
	}
	return c, nil
}

func (c Category) String() string {
	return string(c)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
