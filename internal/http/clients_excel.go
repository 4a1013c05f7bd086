package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"church-registry/internal/domain"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ClientsExportHeader 导出表头
var ClientsExportHeader = []string{
	"ID",
	"Responsável",
	"Igreja",
	"Email",
	"CNPJ/CPF",
	"Endereço",
	"Banco de Dados",
	"Status",
	"Criado em",
}

// GenerateClientsExport renders the client listing as an .xlsx workbook.
// Credential fields are never included in the export.
func GenerateClientsExport(items []*domain.ClientListing) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Clientes"
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
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range ClientsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header cell: %w", err)
		}
	}

	for rowIdx, item := range items {
		values := []any{
			item.ID,
			item.ResponsibleName,
			item.ChurchName,
			item.Email,
			item.TaxID,
			item.Address,
			item.DatabaseName,
			item.Status,
			item.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to compute data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set data cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Export handles GET /api/listagem/export.
func (h *ClientsHandler) Export(w http.ResponseWriter, r *http.Request) {
	items, err := h.lifecycle.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	data, err := GenerateClientsExport(items)
	if err != nil {
		h.logger.Error("clients export failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Erro ao exportar clientes.")
		return
	}

	filename := fmt.Sprintf("clientes_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
