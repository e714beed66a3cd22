package diff

import (
	"reflect"

	odiff "github.com/r3labs/diff/v3"
	"github.com/shopspring/decimal"
)

// GetCustomDiffer returns a differ that compares decimals by value and treats
// slice order as significant.
func GetCustomDiffer() *odiff.Differ {
	ret, err := odiff.NewDiffer(
		odiff.CustomValueDiffers(&DecimalComparer{}),
		odiff.SliceOrdering(true),
	)
	if err != nil {
		panic(err)
	}
	return ret
}

// Changes lists the differences between a and b.
func Changes(a, b interface{}) (odiff.Changelog, error) {
	return GetCustomDiffer().Diff(a, b)
}

type DecimalComparer struct{}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// Match check is field match this custom type
func (c DecimalComparer) Match(a, b reflect.Value) bool {
	aok := a.IsValid() && a.Type() == decimalType
	bok := b.IsValid() && b.Type() == decimalType
	return (aok && bok) || (a.Kind() == reflect.Invalid && bok) || (b.Kind() == reflect.Invalid && aok)
}

// Diff records an update when the two amounts differ in value. 1.50 and 1.5
// are equal.
func (c DecimalComparer) Diff(_ odiff.DiffType, _ odiff.DiffFunc, cl *odiff.Changelog, path []string, a reflect.Value, b reflect.Value, _ interface{}) error {
	if !a.IsValid() || !b.IsValid() {
		if a.IsValid() != b.IsValid() {
			cl.Add(odiff.UPDATE, path, valueOrNil(a), valueOrNil(b))
		}
		return nil
	}

	d1 := a.Interface().(decimal.Decimal)
	d2 := b.Interface().(decimal.Decimal)
	if !d1.Equal(d2) {
		cl.Add(odiff.UPDATE, path, d1.String(), d2.String())
	}
	return nil
}

// InsertParentDiffer do something with parent，
// decimal is leaf, so do not thing
func (c DecimalComparer) InsertParentDiffer(_ func(path []string, a reflect.Value, b reflect.Value, p interface{}) error) {
	// do not thing
}

func valueOrNil(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}
	return v.Interface().(decimal.Decimal).String()
}
