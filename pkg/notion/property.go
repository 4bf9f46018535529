package notion

import (
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// Failure kinds reported by the property accessors. Callers match them with
// errors.Is to decide which problems are recoverable.
var (
	ErrPropertyMissing = eris.New("property missing")
	ErrPropertyType    = eris.New("property has unexpected type")
	ErrRollupEmpty     = eris.New("rollup has no linked values")
	ErrTitleEmpty      = eris.New("title is empty")
)

func lookup(p notionapi.Page, name string) (notionapi.Property, error) {
	prop, ok := p.Properties[name]
	if !ok || prop == nil {
		return nil, eris.Wrapf(ErrPropertyMissing, "%q", name)
	}
	return prop, nil
}

func typeError(name string, prop notionapi.Property) error {
	return eris.Wrapf(ErrPropertyType, "%q is %s", name, prop.GetType())
}

// Title returns the plain text of a title property.
func Title(p notionapi.Page, name string) (string, error) {
	prop, err := lookup(p, name)
	if err != nil {
		return "", err
	}
	var rt []notionapi.RichText
	switch tp := prop.(type) {
	case *notionapi.TitleProperty:
		rt = tp.Title
	case notionapi.TitleProperty:
		rt = tp.Title
	default:
		return "", typeError(name, prop)
	}
	if len(rt) == 0 {
		return "", eris.Wrapf(ErrTitleEmpty, "%q", name)
	}
	return PlainText(rt), nil
}

// Number returns the value of a number property.
func Number(p notionapi.Page, name string) (float64, error) {
	prop, err := lookup(p, name)
	if err != nil {
		return 0, err
	}
	switch np := prop.(type) {
	case *notionapi.NumberProperty:
		return np.Number, nil
	case notionapi.NumberProperty:
		return np.Number, nil
	}
	return 0, typeError(name, prop)
}

// FormulaNumber returns the numeric result of a formula property. Formulas
// of any other result type are an ErrPropertyType.
func FormulaNumber(p notionapi.Page, name string) (float64, error) {
	prop, err := lookup(p, name)
	if err != nil {
		return 0, err
	}
	var f notionapi.Formula
	switch fp := prop.(type) {
	case *notionapi.FormulaProperty:
		f = fp.Formula
	case notionapi.FormulaProperty:
		f = fp.Formula
	default:
		return 0, typeError(name, prop)
	}
	if f.Type != notionapi.FormulaTypeNumber {
		return 0, eris.Wrapf(ErrPropertyType, "%q is a %q formula, want number", name, f.Type)
	}
	return f.Number, nil
}

// Select returns the chosen option name of a select property. An unset
// select yields "" and no error.
func Select(p notionapi.Page, name string) (string, error) {
	prop, err := lookup(p, name)
	if err != nil {
		return "", err
	}
	switch sp := prop.(type) {
	case *notionapi.SelectProperty:
		return sp.Select.Name, nil
	case notionapi.SelectProperty:
		return sp.Select.Name, nil
	}
	return "", typeError(name, prop)
}

// Date returns the start of a date property. An unset date yields the zero time.
func Date(p notionapi.Page, name string) (time.Time, error) {
	prop, err := lookup(p, name)
	if err != nil {
		return time.Time{}, err
	}
	var obj *notionapi.DateObject
	switch dp := prop.(type) {
	case *notionapi.DateProperty:
		obj = dp.Date
	case notionapi.DateProperty:
		obj = dp.Date
	default:
		return time.Time{}, typeError(name, prop)
	}
	if obj == nil || obj.Start == nil {
		return time.Time{}, nil
	}
	return time.Time(*obj.Start), nil
}

// rollupFirst returns the first element of a rollup's array.
func rollupFirst(p notionapi.Page, name string) (notionapi.Property, error) {
	prop, err := lookup(p, name)
	if err != nil {
		return nil, err
	}
	var arr notionapi.PropertyArray
	switch rp := prop.(type) {
	case *notionapi.RollupProperty:
		arr = rp.Rollup.Array
	case notionapi.RollupProperty:
		arr = rp.Rollup.Array
	default:
		return nil, typeError(name, prop)
	}
	if len(arr) == 0 || arr[0] == nil {
		return nil, eris.Wrapf(ErrRollupEmpty, "%q", name)
	}
	return arr[0], nil
}

// RollupTitle returns the title text of the first record linked through a
// rollup property.
func RollupTitle(p notionapi.Page, name string) (string, error) {
	first, err := rollupFirst(p, name)
	if err != nil {
		return "", err
	}
	var rt []notionapi.RichText
	switch tp := first.(type) {
	case *notionapi.TitleProperty:
		rt = tp.Title
	case notionapi.TitleProperty:
		rt = tp.Title
	default:
		return "", typeError(name, first)
	}
	if len(rt) == 0 {
		return "", eris.Wrapf(ErrRollupEmpty, "%q has an untitled record", name)
	}
	return PlainText(rt), nil
}

// RollupSelect returns the select option of the first record linked through
// a rollup property.
func RollupSelect(p notionapi.Page, name string) (string, error) {
	first, err := rollupFirst(p, name)
	if err != nil {
		return "", err
	}
	switch sp := first.(type) {
	case *notionapi.SelectProperty:
		return sp.Select.Name, nil
	case notionapi.SelectProperty:
		return sp.Select.Name, nil
	}
	return "", typeError(name, first)
}

// PlainText concatenates the plain_text segments of a rich text array.
func PlainText(rt []notionapi.RichText) string {
	var b strings.Builder
	for _, r := range rt {
		if r.PlainText != "" {
			b.WriteString(r.PlainText)
		} else if r.Text != nil {
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}
