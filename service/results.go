package service

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"querydraft/models"
)

var ErrInvalidFilename = errors.New("invalid result filename")

// ResultsStorage archives executed results as JSON or CSV files.
type ResultsStorage struct {
	resultsDir string
}

func NewResultsStorage(resultsDir string) (*ResultsStorage, error) {
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	return &ResultsStorage{resultsDir: resultsDir}, nil
}

// GenerateFileName creates a unique filename with timestamp
func (r *ResultsStorage) GenerateFileName(format string) string {
	now := time.Now()
	return fmt.Sprintf("result_%s_%d.%s", now.Format("20060102_150405"), now.UnixNano(), format)
}

// Save archives result in the given format ("json" or "csv").
func (r *ResultsStorage) Save(result *models.ExecutionResult, query string, format string) (string, error) {
	switch format {
	case "csv":
		return r.SaveResultAsCSV(result)
	case "json", "":
		return r.SaveResultAsJSON(result, query)
	default:
		return "", fmt.Errorf("unsupported result format %q", format)
	}
}

// SaveResultAsJSON saves an execution result as JSON file
func (r *ResultsStorage) SaveResultAsJSON(result *models.ExecutionResult, query string) (string, error) {
	filename := r.GenerateFileName("json")
	filePath := filepath.Join(r.resultsDir, filename)

	resultData := models.ResultFile{
		Filename:  filename,
		Query:     query,
		Timestamp: result.ExecutedAt.Format(time.RFC3339),
		Columns:   result.Columns,
		Rows:      result.Rows,
		RowCount:  result.RowCount,
	}

	data, err := json.MarshalIndent(resultData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filename, nil
}

// SaveResultAsCSV saves an execution result as CSV file
func (r *ResultsStorage) SaveResultAsCSV(result *models.ExecutionResult) (string, error) {
	filename := r.GenerateFileName("csv")
	filePath := filepath.Join(r.resultsDir, filename)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(result.Columns); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range result.Rows {
		record := make([]string, len(row))
		for i, val := range row {
			if val != nil {
				record[i] = fmt.Sprintf("%v", val)
			}
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV file: %w", err)
	}
	return filename, nil
}

func (r *ResultsStorage) path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", ErrInvalidFilename
	}
	return filepath.Join(r.resultsDir, filename), nil
}

// GetResultFile reads a result file
func (r *ResultsStorage) GetResultFile(filename string) (*models.ResultFile, error) {
	filePath, err := r.path(filename)
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(filename) {
	case ".json":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}

		var result models.ResultFile
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
		result.Filename = filename
		return &result, nil

	case ".csv":
		file, err := os.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat CSV file: %w", err)
		}

		records, err := csv.NewReader(file).ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		result := &models.ResultFile{
			Filename:  filename,
			Columns:   []string{},
			Rows:      [][]interface{}{},
			Timestamp: info.ModTime().Format(time.RFC3339),
		}
		if len(records) == 0 {
			return result, nil
		}

		// First row is header
		result.Columns = records[0]
		for _, record := range records[1:] {
			row := make([]interface{}, len(record))
			for j, val := range record {
				row[j] = val
			}
			result.Rows = append(result.Rows, row)
		}
		result.RowCount = len(result.Rows)
		return result, nil
	}

	return nil, fmt.Errorf("unsupported file format")
}

// ListResultFiles returns all result files, newest first.
func (r *ResultsStorage) ListResultFiles() ([]models.ResultFileInfo, error) {
	files, err := os.ReadDir(r.resultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	resultFiles := []models.ResultFileInfo{}
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		if ext != ".json" && ext != ".csv" {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		resultFiles = append(resultFiles, models.ResultFileInfo{
			Filename: file.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().Format(time.RFC3339),
			Format:   ext[1:],
		})
	}

	sort.Slice(resultFiles, func(i, j int) bool {
		return resultFiles[i].Filename > resultFiles[j].Filename
	})
	return resultFiles, nil
}
