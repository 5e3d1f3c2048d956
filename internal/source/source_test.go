package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFileSource_Label(t *testing.T) {
	s := NewFileSource("/data/raw/hpa_registered_facilities.csv")
	assert.Equal(t, "hpa_registered_facilities", s.Label())
}

func TestFileSource_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mohcc_official.json", `[
		{"name": "Harare Central Hospital", "province": "Harare", "bed_count": 1200},
		{"name": "Mpilo Central Hospital", "province": "Bulawayo"}
	]`)

	records, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Harare Central Hospital", records[0]["name"])
	assert.Equal(t, float64(1200), records[0]["bed_count"])
}

func TestFileSource_JSON_Malformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.json", `{"name": "not an array"}`)

	_, err := NewFileSource(path).Load(context.Background())
	assert.Error(t, err)
}

func TestFileSource_CSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hpa_registered_facilities.csv",
		"provider,town,province,tel\n"+
			"Avenues Clinic,Harare,Harare,+263 4 251180\n"+
			"Mater Dei Hospital,Bulawayo,Bulawayo,+263 9 240000\n")

	records, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Avenues Clinic", records[0]["provider"])
	assert.Equal(t, "Bulawayo", records[1]["town"])
}

func TestFileSource_CSV_HeaderOnly(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.csv", "name,province\n")

	records, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileSource_XLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Facilities")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"name", "province", "city"} {
		header.AddCell().Value = h
	}
	row := sheet.AddRow()
	for _, v := range []string{"Chinhoyi Provincial Hospital", "Mashonaland West", "Chinhoyi"} {
		row.AddCell().Value = v
	}

	path := filepath.Join(t.TempDir(), "mohcc_facilities.xlsx")
	require.NoError(t, f.Save(path))

	records, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Chinhoyi Provincial Hospital", records[0]["name"])
	assert.Equal(t, "Chinhoyi", records[0]["city"])
}

func TestFileSource_HTML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mcaz_premises_register.html", `
		<html><body><table>
			<tr><th>Premises Name</th><th>Town</th><th></th></tr>
			<tr><td>Greenwood Pharmacy</td><td>Harare</td><td>stray</td></tr>
			<tr><td>QV Pharmacy</td><td>Bulawayo</td><td></td></tr>
		</table></body></html>`)

	records, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Greenwood Pharmacy", records[0]["Premises Name"])
	assert.Equal(t, "Harare", records[0]["Town"])
	// Blank header falls back to a positional column name.
	assert.Equal(t, "stray", records[0]["column_2"])
}

func TestFileSource_PDFSkipped(t *testing.T) {
	path := writeFile(t, t.TempDir(), "alliance_provider_list_2020.pdf", "%PDF-1.4")

	records, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_source.csv", "name\nX\n")
	writeFile(t, dir, "a_source.json", "[]")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	loaders, err := ScanDir(dir)
	require.NoError(t, err)
	require.Len(t, loaders, 2)
	assert.Equal(t, "a_source", loaders[0].Label())
	assert.Equal(t, "b_source", loaders[1].Label())
}

func TestScanDir_Missing(t *testing.T) {
	loaders, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, loaders)
}

func TestSeeds(t *testing.T) {
	seeds := Seeds()
	require.Len(t, seeds, 3)

	total := 0
	for _, s := range seeds {
		records, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, s.Label())
		for _, r := range records {
			assert.NotEmpty(t, r["name"])
			assert.NotEmpty(t, r["province"])
		}
		total += len(records)
	}
	assert.Equal(t, 4, total)
}
