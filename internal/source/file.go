package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/zimhealth/registry-cli/internal/model"
)

// FileSource loads one raw file, dispatching on its extension. The
// source label is the file stem, which feeds record provenance.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Label() string {
	base := filepath.Base(s.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *FileSource) Load(ctx context.Context) ([]model.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "source: load cancelled")
	}
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".json":
		return s.loadJSON()
	case ".csv":
		return s.loadCSV()
	case ".xlsx", ".xls":
		return s.loadXLSX()
	case ".htm", ".html":
		return s.loadHTML()
	case ".pdf":
		// Table extraction from PDFs is handled outside this tool; the
		// fetched file is kept on disk for it.
		zap.L().Warn("source: skipping PDF, no table extraction support", zap.String("file", s.path))
		return nil, nil
	default:
		zap.L().Warn("source: skipping unsupported format", zap.String("file", s.path))
		return nil, nil
	}
}

func (s *FileSource) loadJSON() ([]model.RawRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, eris.Wrap(err, "source: read json")
	}
	var records []model.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrap(err, "source: parse json")
	}
	return records, nil
}

func (s *FileSource) loadCSV() ([]model.RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, eris.Wrap(err, "source: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "source: parse csv")
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	var records []model.RawRecord
	for _, row := range rows[1:] {
		record := model.RawRecord{}
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			record[headers[i]] = cell
		}
		if len(record) > 0 {
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *FileSource) loadXLSX() ([]model.RawRecord, error) {
	f, err := xlsx.OpenFile(s.path)
	if err != nil {
		return nil, eris.Wrap(err, "source: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, nil
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, nil
	}

	headers := make([]string, len(sheet.Rows[0].Cells))
	for i, cell := range sheet.Rows[0].Cells {
		headers[i] = strings.TrimSpace(cell.String())
	}

	var records []model.RawRecord
	for _, row := range sheet.Rows[1:] {
		record := model.RawRecord{}
		for i, cell := range row.Cells {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			record[headers[i]] = cell.String()
		}
		if len(record) > 0 {
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *FileSource) loadHTML() ([]model.RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, eris.Wrap(err, "source: open html")
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, eris.Wrap(err, "source: parse html")
	}

	var records []model.RawRecord
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		var headers []string
		rows.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.TrimSpace(cell.Text()))
		})

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			record := model.RawRecord{}
			row.Find("td, th").Each(func(i int, cell *goquery.Selection) {
				header := fmt.Sprintf("column_%d", i)
				if i < len(headers) && headers[i] != "" {
					header = headers[i]
				}
				record[header] = strings.TrimSpace(cell.Text())
			})
			if len(record) > 0 {
				records = append(records, record)
			}
		})
	})
	return records, nil
}
