package excel

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sentinel/domain/military"
	"sentinel/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	fileType := ""
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		fileType = "csv"
	case ".xlsx", ".xlsm":
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Path returns the file the reader was created for
func (r *DataReader) Path() string {
	return r.filePath
}

// Stat returns the resource version without reading the content
func (r *DataReader) Stat() (military.Version, error) {
	info, err := os.Stat(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return military.Version{}, errors.DataLoadError(fmt.Sprintf("dataset file not found: %s", r.filePath), err)
		}
		return military.Version{}, errors.DataLoadError(fmt.Sprintf("cannot stat dataset file: %s", r.filePath), err)
	}
	if info.IsDir() {
		return military.Version{}, errors.DataLoadError(fmt.Sprintf("dataset path is a directory: %s", r.filePath), nil)
	}
	return military.Version{
		Path:    r.filePath,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if r.fileType == "" {
		return nil, errors.DataLoadError(fmt.Sprintf("unsupported dataset file type: %s", filepath.Ext(r.filePath)), nil)
	}

	version, err := r.Stat()
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, errors.DataLoadError(fmt.Sprintf("failed to read dataset file: %s", r.filePath), err)
	}
	sum := sha256.Sum256(content)
	version.Hash = hex.EncodeToString(sum[:])

	var rows [][]string
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows(content)
	case "xlsx":
		rows, err = r.readExcelRows(content)
	}
	if err != nil {
		return nil, err
	}

	data, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	data.Version = version
	return data, nil
}

// readExcelRows reads the first sheet of a workbook
func (r *DataReader) readExcelRows(content []byte) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.DataLoadError("failed to open Excel file", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.DataLoadError("Excel file has no sheets", nil)
	}

	// Raw values keep full numeric precision regardless of cell number format.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.DataLoadError(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	log.Printf("[DataReader] Sheet %s read in %.2fms (%d rows)", sheets[0], float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return rows, nil
}

// readCSVRows reads CSV content; every row must have the header's field count
func (r *DataReader) readCSVRows(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.TrimLeadingSpace = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.DataLoadError("failed to read CSV file", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return rows, nil
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	if len(rows) < 2 {
		return nil, errors.DataLoadError(
			fmt.Sprintf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType)), nil)
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	seen := make(map[string]bool, len(headerRow))
	for i, header := range headerRow {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if header != "" && seen[header] {
			return nil, errors.DataLoadError(fmt.Sprintf("duplicate column %q", header), nil)
		}
		seen[header] = true
		headers[i] = header
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
