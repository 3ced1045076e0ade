package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/devicesales/api/internal/ledger"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sales"

var exportHeader = []interface{}{
	"ID", "Sale date", "Customer", "Seller", "Device", "IMEI",
	"Down payment", "Total", "Remaining", "Due date", "Status",
}

// Export handles GET /sales/export. It applies the same filters as List and
// streams the result as an .xlsx workbook.
func (h *SaleHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sales, err := h.svc.ListSales(r.Context())
	if err != nil {
		writeInternal(w, "list sales for export", err)
		return
	}

	now := h.opts.now()
	f, err := buildWorkbook(ledger.Apply(sales, filter, now, h.opts.Locale), now.Location())
	if err != nil {
		writeInternal(w, "build sales workbook", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sales-%s.xlsx"`, now.Format("2006-01-02")))
	if err := f.Write(w); err != nil {
		// Headers are already out; all we can do is log.
		log.Printf("ERROR: write sales workbook: %v", err)
	}
}

// buildWorkbook renders sales into a single-sheet workbook. Amounts are
// numeric cells so the sheet can be summed; dates use dd/mm/yyyy in loc.
func buildWorkbook(sales []ledger.Sale, loc *time.Location) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	for i, s := range sales {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := []interface{}{
			s.ID,
			s.SaleDate.In(loc).Format("02/01/2006"),
			s.CustomerName,
			s.SellerName,
			s.DeviceName,
			s.IMEI,
			s.DownPayment.InexactFloat64(),
			s.TotalAmount.InexactFloat64(),
			s.RemainingAmount.InexactFloat64(),
			s.PaymentDueDate.In(loc).Format("02/01/2006"),
			string(s.Status),
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
	}

	if len(sales) > 0 {
		last := len(sales) + 1
		if err := f.SetCellStyle(exportSheet, "G2", fmt.Sprintf("I%d", last), moneyStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetColWidth(exportSheet, "B", "F", 18); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
