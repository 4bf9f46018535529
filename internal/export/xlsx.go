package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// SheetName is the worksheet the shopping list is written to.
const SheetName = "Nákup"

// WriteXLSXFile writes rows into a single-sheet workbook at path, using the
// same layout as the CSV export. Amounts are stored as numbers.
func WriteXLSXFile(path string, rows []Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	for _, r := range rows {
		row := sheet.AddRow()
		if r.Header {
			row.AddCell().SetString(r.Category)
			continue
		}
		row.AddCell().SetString(r.Ingredient)
		row.AddCell().SetFloat(r.Entry.Amount)
		row.AddCell().SetString(r.Entry.Unit)
		row.AddCell().SetString(r.Entry.Recipe)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
