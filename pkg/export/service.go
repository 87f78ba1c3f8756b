package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/voicelane/voicelane/pkg/domain"
	"github.com/voicelane/voicelane/pkg/models"
	"github.com/voicelane/voicelane/pkg/store"
	"github.com/xuri/excelize/v2"
)

// Supported export formats
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

const maxExportCalls = 10000

// Service generates call export files
type Service struct {
	calls       *store.CallStore
	storagePath string
}

// NewService creates a new export service
func NewService(callStore *store.CallStore, storagePath string) *Service {
	// Ensure storage directory exists
	os.MkdirAll(storagePath, 0755)

	return &Service{
		calls:       callStore,
		storagePath: storagePath,
	}
}

// Result describes a generated export file
type Result struct {
	Filename  string `json:"filename"`
	FilePath  string `json:"-"`
	Format    string `json:"format"`
	CallCount int    `json:"call_count"`
	CreatedAt string `json:"created_at"`
}

// ExportCalls writes a user's call records to a file in the requested format
// and returns its location.
func (s *Service) ExportCalls(ctx context.Context, userID, format string) (*Result, error) {
	if format != FormatCSV && format != FormatExcel {
		return nil, domain.NewValidationError("invalid format: must be csv or excel")
	}
	if userID == "" {
		return nil, domain.NewValidationError("user_id is required")
	}
	// The user id becomes part of the filename; anything that could walk out
	// of the storage directory is rejected up front.
	if strings.ContainsAny(userID, `/\`) || strings.Contains(userID, "..") {
		return nil, domain.NewValidationError("user_id contains invalid characters")
	}

	calls, err := s.calls.ListByUser(ctx, userID, maxExportCalls)
	if err != nil {
		return nil, domain.NewDatabaseError(err)
	}

	ext := "csv"
	if format == FormatExcel {
		ext = "xlsx"
	}
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("calls-%s-%s.%s", userID, timestamp, ext)
	path := filepath.Join(s.storagePath, filename)

	if format == FormatCSV {
		err = s.generateCSV(path, calls)
	} else {
		err = s.generateExcel(path, calls)
	}
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	return &Result{
		Filename:  filename,
		FilePath:  path,
		Format:    format,
		CallCount: len(calls),
		CreatedAt: time.Now().Format(time.RFC3339),
	}, nil
}

// ResolveFile maps an export filename back to its path on disk, rejecting
// anything that escapes the storage directory.
func (s *Service) ResolveFile(filename string) (string, error) {
	if filename == "" || strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return "", domain.NewValidationError("invalid export filename")
	}
	path := filepath.Join(s.storagePath, filename)
	if _, err := os.Stat(path); err != nil {
		return "", domain.NewNotFoundError("export file")
	}
	return path, nil
}

var exportHeaders = []string{
	"ID", "Lead ID", "Provider", "Phone Number", "Direction", "Status",
	"Duration", "Lead Score", "Qualification", "Analyzer", "Started At", "Created At",
}

// generateCSV generates a CSV file from call records
func (s *Service) generateCSV(path string, calls []*models.CallRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, call := range calls {
		row := []string{
			call.ID,
			strOrEmpty(call.LeadID),
			call.Provider,
			call.PhoneNumber,
			call.Direction,
			call.Status,
			strconv.Itoa(call.Duration),
			intOrEmpty(call.LeadScore),
			strOrEmpty(call.Qualification),
			strOrEmpty(call.AnalyzerUsed),
			timeOrEmpty(call.StartedAt),
			call.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

// generateExcel generates an Excel file from call records
func (s *Service) generateExcel(path string, calls []*models.CallRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Calls"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, call := range calls {
		row := rowIdx + 2 // Start from row 2 (after header)
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), call.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), strOrEmpty(call.LeadID))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), call.Provider)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), call.PhoneNumber)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), call.Direction)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), call.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), call.Duration)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), intOrEmpty(call.LeadScore))
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), strOrEmpty(call.Qualification))
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), strOrEmpty(call.AnalyzerUsed))
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), timeOrEmpty(call.StartedAt))
		f.SetCellValue(sheetName, fmt.Sprintf("L%d", row), call.CreatedAt.Format(time.RFC3339))
	}

	for i := 0; i < len(exportHeaders); i++ {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 15)
	}

	f.SetActiveSheet(index)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
