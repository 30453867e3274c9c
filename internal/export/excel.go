// Package export renders appointment reports for download.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"styllobarbe/internal/models"
)

var reportColumns = []string{
	"ID", "Cliente", "Barbeiro", "Serviço", "Início", "Duração (min)",
	"Total (R$)", "Status", "Observações",
}

// AppointmentReport builds an xlsx workbook with one sheet of
// appointments and streams it to w.
func AppointmentReport(w io.Writer, sheetName string, appts []models.Appointment) error {
	f := excelize.NewFile()
	defer f.Close()

	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Agendamentos"
	}
	f.SetSheetName("Sheet1", sheetName)

	for i, col := range reportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return err
		}
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(reportColumns), 1)
		_ = f.SetCellStyle(sheetName, startCell, endCell, style)
	}

	for i, a := range appts {
		row := []any{
			a.ID,
			a.ClientName,
			a.BarberID,
			a.ServiceName,
			a.Start.Format("2006-01-02 15:04"),
			a.DurationMin,
			float64(a.TotalCents) / 100,
			string(a.Status),
			a.Notes,
		}
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
