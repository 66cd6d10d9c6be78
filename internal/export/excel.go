package export

import (
	"fmt"
	"os"
	"path/filepath"

	"slotbook/internal/models"

	"github.com/xuri/excelize/v2"
)

// ToExcel writes appointments to an xlsx file under dir and returns
// the file path. Start and end are ISO calendar dates and become part
// of the file name.
func ToExcel(dir, start, end string, appts []*models.Appointment) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Appointments"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s", start, end))
	_ = f.MergeCell(sheetName, "A1", "G1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	headers := []string{"Date", "Time", "Name", "Service", "Phone", "Address", "Notes"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	for row, appt := range appts {
		values := []string{appt.Date, appt.Time, appt.Name, appt.Service, appt.Phone, appt.Address, appt.Notes}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "G", 20)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("export_%s_to_%s.xlsx", start, end)
	filePath := filepath.Join(dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	return filePath, nil
}
