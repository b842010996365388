// Package etl imports the raw housing sales extract into a Dataset. It is a
// thin wrapper around the cleaning pipeline's tabular boundary: file format,
// header handling and nullable-cell mapping live here, not in the pipeline.
package etl

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/housing-cleanse/internal/dataset"
	"github.com/housing-cleanse/internal/debug"
)

// baseColumns are the raw extract columns, in ingestion order. Everything
// except the identity key is nullable text; the pipeline derives typed
// columns from these.
var baseColumns = []struct {
	name string
	typ  dataset.ColumnType
	csv  string
}{
	{dataset.KeyColumn, dataset.TypeInteger, "uniqueid"},
	{"parcel_id", dataset.TypeText, "parcelid"},
	{"land_use", dataset.TypeText, "landuse"},
	{"property_address", dataset.TypeText, "propertyaddress"},
	{"sale_date", dataset.TypeText, "saledate"},
	{"sale_price", dataset.TypeText, "saleprice"},
	{"legal_reference", dataset.TypeText, "legalreference"},
	{"sold_as_vacant", dataset.TypeText, "soldasvacant"},
	{"owner_name", dataset.TypeText, "ownername"},
	{"owner_address", dataset.TypeText, "owneraddress"},
	{"acreage", dataset.TypeText, "acreage"},
	{"tax_district", dataset.TypeText, "taxdistrict"},
}

// Importer loads sale records from CSV into a Dataset.
type Importer struct {
	ds dataset.Dataset
}

// NewImporter creates a new sales extract importer.
func NewImporter(ds dataset.Dataset) *Importer {
	return &Importer{ds: ds}
}

// ImportSales loads the CSV at csvPath. Rows without a parseable unique id
// are skipped and counted; empty cells become null. Returns the number of
// records imported.
func (im *Importer) ImportSales(localDebug bool, csvPath string) (int, error) {
	debug.Output(localDebug, "Importing sales extract from: %s", csvPath)

	for _, col := range baseColumns {
		if err := im.ds.AddColumn(col.name, col.typ); err != nil {
			return 0, fmt.Errorf("failed to add column %s: %w", col.name, err)
		}
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open sales CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	debug.Output(localDebug, "CSV columns: %v", header)

	// Create column mapping
	columnMap := make(map[string]int)
	for i, col := range header {
		columnMap[normalizeHeader(col)] = i
	}
	if _, ok := columnMap["uniqueid"]; !ok {
		return 0, fmt.Errorf("sales CSV is missing the uniqueid column")
	}

	imported := 0
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			debug.Output(localDebug, "Error reading CSV record: %v", err)
			skipped++
			continue
		}

		rec, err := im.mapRecord(row, columnMap)
		if err != nil {
			debug.Output(localDebug, "Skipping record: %v", err)
			skipped++
			continue
		}

		if err := im.ds.Insert(rec); err != nil {
			debug.Output(localDebug, "Error inserting record: %v", err)
			skipped++
			continue
		}

		imported++
		if imported%1000 == 0 {
			debug.Output(localDebug, "Imported %d records", imported)
		}
	}

	debug.Output(localDebug, "Import complete: %d imported, %d skipped", imported, skipped)
	return imported, nil
}

// mapRecord converts one CSV row into a sale record.
func (im *Importer) mapRecord(row []string, columnMap map[string]int) (dataset.Record, error) {
	rawID := columnValue(row, columnMap, "uniqueid")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unparseable unique id %q", rawID)
	}

	rec := dataset.Record{dataset.KeyColumn: id}
	for _, col := range baseColumns[1:] {
		rec[col.name] = nullIfEmpty(columnValue(row, columnMap, col.csv))
	}
	return rec, nil
}

// normalizeHeader lowercases a header cell and strips spaces so extracts
// with "Unique ID" or "UniqueID" map the same way.
func normalizeHeader(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
}

func columnValue(row []string, columnMap map[string]int, name string) string {
	if idx, exists := columnMap[name]; exists && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
