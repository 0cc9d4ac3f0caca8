package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"cafedir/database"
	"cafedir/form"
	"cafedir/model"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	workbookSheet    = "Cafes"
	workbookType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxWorkbookBytes = 5 << 20
)

// Limits on how far an uploaded workbook may expand when unzipped. The
// upload cap alone does not bound a highly compressed file.
var (
	workbookUnzipLimit    int64 = 64 << 20
	workbookUnzipXMLLimit int64 = 16 << 20
)

var (
	errBadWorkbook = errors.New("file is not a readable .xlsx workbook")
	errNoDataRows  = errors.New("workbook must have a header row and at least one row of data")
	errNoColumns   = errors.New("header row names none of the cafe columns")
)

// ExportCafes serves every cafe as an .xlsx workbook with one header row.
func (ctl *Controller) ExportCafes(c *gin.Context) {
	cafes, err := ctl.cafes.List(c.Request.Context())
	if err != nil {
		ctl.fail(c, err)
		return
	}

	xl := excelize.NewFile()
	defer xl.Close()

	if err := writeCafes(xl, cafes); err != nil {
		ctl.fail(c, err)
		return
	}
	buf, err := xl.WriteToBuffer()
	if err != nil {
		ctl.fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="cafes.xlsx"`)
	c.Data(http.StatusOK, workbookType, buf.Bytes())
}

func writeCafes(xl *excelize.File, cafes []model.Cafe) error {
	if err := xl.SetSheetName(xl.GetSheetName(0), workbookSheet); err != nil {
		return err
	}

	header := append([]string(nil), form.CafeFields...)
	if err := xl.SetSheetRow(workbookSheet, "A1", &header); err != nil {
		return err
	}
	for i, cafe := range cafes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := form.FromCafe(cafe).Row()
		if err := xl.SetSheetRow(workbookSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (ctl *Controller) ImportForm(c *gin.Context) {
	ctl.render(c, http.StatusOK, "import.html", gin.H{"Title": "Import Cafes", "Columns": form.CafeFields})
}

// ImportCafes adds every valid row of the uploaded workbook. Rows that fail
// validation or repeat an existing name are skipped and counted.
func (ctl *Controller) ImportCafes(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		ctl.importFailed(c, "Choose an .xlsx file to import.")
		return
	}
	if fileHeader.Size > maxWorkbookBytes {
		ctl.importFailed(c, "The file is larger than 5 MB.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctl.fail(c, err)
		return
	}
	defer file.Close()

	imported, skipped, err := ctl.importCafes(c.Request.Context(), file)
	switch {
	case errors.Is(err, errBadWorkbook), errors.Is(err, errNoDataRows), errors.Is(err, errNoColumns):
		ctl.importFailed(c, capitalize(err.Error())+".")
		return
	case err != nil:
		ctl.fail(c, err)
		return
	}

	ctl.log.Info().Int("imported", imported).Int("skipped", skipped).Msg("cafes imported")
	ctl.flash(c, fmt.Sprintf("Imported %d cafes, skipped %d rows", imported, skipped))
	ctl.redirect(c, "/")
}

func (ctl *Controller) importFailed(c *gin.Context, msg string) {
	ctl.flash(c, msg)
	ctl.render(c, http.StatusBadRequest, "import.html", gin.H{"Title": "Import Cafes", "Columns": form.CafeFields})
}

func (ctl *Controller) importCafes(ctx context.Context, r io.Reader) (imported, skipped int, err error) {
	xl, err := excelize.OpenReader(r, excelize.Options{
		UnzipSizeLimit:    workbookUnzipLimit,
		UnzipXMLSizeLimit: workbookUnzipXMLLimit,
	})
	if err != nil {
		ctl.log.Debug().Err(err).Msg("open uploaded workbook")
		return 0, 0, errBadWorkbook
	}
	defer xl.Close()

	rows, err := xl.GetRows(xl.GetSheetName(0))
	if err != nil || len(rows) < 2 {
		return 0, 0, errNoDataRows
	}

	columns := headerColumns(rows[0])
	if len(columns) == 0 {
		return 0, 0, errNoColumns
	}

	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}

		values := url.Values{}
		for name, idx := range columns {
			if idx < len(row) {
				values.Set(name, row[idx])
			}
		}

		var f form.CafeForm
		if err := form.Validate(values, &f); err != nil {
			ctl.log.Debug().Int("row", i+2).Err(err).Msg("import row skipped")
			skipped++
			continue
		}

		cafe := f.Cafe()
		if err := ctl.cafes.Create(ctx, &cafe); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				ctl.log.Debug().Int("row", i+2).Str("name", f.Name).Msg("import row duplicates a listed cafe")
				skipped++
				continue
			}
			return imported, skipped, err
		}
		imported++
	}
	return imported, skipped, nil
}

// headerColumns maps each known field name to its column index. Matching
// ignores case and surrounding space.
func headerColumns(header []string) map[string]int {
	known := make(map[string]bool, len(form.CafeFields))
	for _, name := range form.CafeFields {
		known[name] = true
	}

	columns := make(map[string]int)
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if _, seen := columns[name]; known[name] && !seen {
			columns[name] = i
		}
	}
	return columns
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
