package analytics

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ConsultationExportHeader 导出表头（列顺序固定）
var ConsultationExportHeader = []string{
	"Patient ID",
	"First Name",
	"Last Name",
	"Phone",
	"Consultation Date",
	"Doctor Name",
	"Department",
	"Consultation Amount",
	"Consultation Type",
	"Gender",
	"Age",
	"Address",
	"Patient Tag",
	"Total Patient Spent",
	"Registration Date",
}

// ExportFileName 文件名中嵌入当前日期窗口标签
func ExportFileName(rangeLabel string) string {
	return fmt.Sprintf("patient-consultations-%s.xlsx", rangeLabel)
}

// GenerateConsultationExport 生成按就诊去重后的患者流水 Excel
func GenerateConsultationExport(rows []ConsultationRow) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Consultations"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range ConsultationExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	columnWidths := []float64{
		14, // Patient ID
		14, // First Name
		14, // Last Name
		14, // Phone
		30, // Consultation Date (placeholder text is long)
		22, // Doctor Name
		18, // Department
		18, // Consultation Amount
		16, // Consultation Type
		10, // Gender
		8,  // Age
		30, // Address
		14, // Patient Tag
		18, // Total Patient Spent
		16, // Registration Date
	}
	for i := range ConsultationExportHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if i < len(columnWidths) && columnWidths[i] > 0 {
			if err := f.SetColWidth(sheetName, col, col, columnWidths[i]); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	for rowIdx, item := range rows {
		row := rowIdx + 2 // 第1行是表头

		date := item.ConsultationDate
		if date != NoConsultations && date != "" {
			date = FormatDate(date)
		}

		values := []any{
			item.PatientID,
			item.FirstName,
			item.LastName,
			item.Phone,
			date,
			item.DoctorName,
			item.Department,
			FormatCurrency(item.Amount),
			item.ConsultationType,
			item.Gender,
			item.Age,
			item.Address,
			item.PatientTag,
			FormatCurrency(item.TotalSpent),
			formatIfDate(item.RegistrationDate),
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if value == nil || value == "" {
				continue
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, col+1, err)
			}
		}
	}

	// 冻结表头
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return buf.Bytes(), nil
}

func formatIfDate(d string) string {
	if reISODate.MatchString(d) {
		return FormatDate(d)
	}
	return d
}
