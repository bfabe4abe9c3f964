// Package importer loads course lessons from spreadsheets.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"go-elearn-app/internal/data"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Config defines the import configuration. Columns are fixed: A holds the
// lesson order, B the title and C the markdown content.
type Config struct {
	FilePath  string // Path to the .xlsx or .csv file
	CourseID  int64  // Course receiving the lessons
	SheetName string // Sheet to read; the first sheet when empty
	StartRow  int    // First data row (1-based); 2 skips a header
}

// Result holds the result of an import operation
type Result struct {
	TotalProcessed int
	Created        int
	Updated        int
	Errors         []string
}

// CourseFinder checks that the target course exists.
type CourseFinder interface {
	GetCourseByID(ctx context.Context, id int64) (*data.Course, error)
}

// LessonStore writes imported lessons.
type LessonStore interface {
	CreateLesson(ctx context.Context, lesson *data.Lesson) error
	UpdateLessonByOrder(ctx context.Context, lesson *data.Lesson) (bool, error)
}

// Importer creates or updates lessons from spreadsheet rows. A row whose
// order already exists in the course overwrites that lesson.
type Importer struct {
	courses CourseFinder
	lessons LessonStore
}

// New creates an Importer.
func New(courses CourseFinder, lessons LessonStore) *Importer {
	return &Importer{courses: courses, lessons: lessons}
}

// Import reads cfg.FilePath and writes its lessons. Bad rows are reported
// in Result.Errors and do not stop the import.
func (im *Importer) Import(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.StartRow <= 0 {
		cfg.StartRow = 2
	}
	if _, err := im.courses.GetCourseByID(ctx, cfg.CourseID); err != nil {
		return nil, err
	}

	var rows [][]string
	var err error
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		rows, err = readCSV(cfg.FilePath)
	} else {
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow || blank(row) {
			continue
		}
		result.TotalProcessed++
		if err := im.processRow(ctx, cfg.CourseID, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

func (im *Importer) processRow(ctx context.Context, courseID int64, row []string, result *Result) error {
	order, err := strconv.Atoi(cell(row, 0))
	if err != nil || order <= 0 {
		return fmt.Errorf("order must be a positive integer, got %q", cell(row, 0))
	}
	title := cell(row, 1)
	if title == "" {
		return errors.New("title is required")
	}
	lesson := &data.Lesson{CourseID: courseID, Title: title, Content: cell(row, 2), Order: order}

	updated, err := im.lessons.UpdateLessonByOrder(ctx, lesson)
	if err != nil {
		return err
	}
	if updated {
		result.Updated++
		return nil
	}
	if err := im.lessons.CreateLesson(ctx, lesson); err != nil {
		return err
	}
	result.Created++
	return nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
