package export

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// WriteCSV writes rows as comma-separated UTF-8 prefixed with a byte order
// mark, which spreadsheet apps need to detect the encoding. Lines end in CRLF.
func WriteCSV(w io.Writer, rows []Row) error {
	enc := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(enc)
	cw.UseCRLF = true

	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "export: flush encoder")
	}
	return nil
}

// WriteCSVFile creates path and writes rows into it. The file is closed even
// when writing fails.
func WriteCSVFile(path string, rows []Row) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "export: close %s", path)
		}
	}()

	return WriteCSV(f, rows)
}
