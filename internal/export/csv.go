// Package export renders a user's portfolio as CSV. Fields are quoted by
// the csv writer and cells are escaped against spreadsheet formula
// injection before writing.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cardfolio/cardfolio/backend/internal/models"
)

// PortfolioCSVHeader is the fixed 10-column export header
var PortfolioCSVHeader = []string{
	"Card Name",
	"Set",
	"Number",
	"Rarity",
	"Grading Status",
	"Quantity",
	"Purchase Price",
	"Purchase Date",
	"Current Price",
	"ROI %",
}

// WritePortfolioCSV writes the header and one row per portfolio item
func WritePortfolioCSV(w io.Writer, items []models.PortfolioItem) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(PortfolioCSVHeader); err != nil {
		return err
	}

	for _, item := range items {
		row := []string{
			item.Card.Name,
			item.Card.SetName,
			item.Card.Number,
			item.Card.Rarity,
			string(item.GradingStatus),
			fmt.Sprintf("%d", item.Quantity),
			fmt.Sprintf("%.2f", item.PurchasePrice),
			item.PurchaseDate.Format("2006-01-02"),
			fmt.Sprintf("%.2f", item.CurrentPrice),
			fmt.Sprintf("%.2f", item.ROIPercent),
		}
		if err := cw.Write(escapeRow(row)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// escapeCell protects against CSV formula injection by prefixing cells
// that a spreadsheet would evaluate
func escapeCell(value string) string {
	if value == "" {
		return value
	}

	switch value[0] {
	case '=', '+', '@', '|', '%':
		return "'" + value
	}
	if strings.HasPrefix(value, "\t") || strings.HasPrefix(value, "\r") || strings.HasPrefix(value, "\n") {
		return "'" + value
	}
	return value
}

func escapeRow(row []string) []string {
	escaped := make([]string, len(row))
	for i, cell := range row {
		escaped[i] = escapeCell(cell)
	}
	return escaped
}
