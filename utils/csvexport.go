package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/momandme/tailorshop-api/models"
)

// csvDateFormat is dd/mm/yyyy, the date style the shop reads its reports in.
const csvDateFormat = "02/01/2006"

// ReportFilename returns the date-stamped attachment filename for a CSV
// export, branded with the shop name.
func ReportFilename(shopName string, now time.Time) string {
	safe := ""
	for _, r := range shopName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			safe += string(r)
		}
	}
	if safe == "" {
		safe = "Shop"
	}
	return fmt.Sprintf("%s_Report_%s.csv", safe, now.Format("2006-01-02"))
}

// WriteReportCSV writes the orders report, a totals row, and (optionally) an
// expenses report to w.
func WriteReportCSV(w io.Writer, orders []models.Order, expenses []models.Expense, includeExpenses bool) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"ORDERS REPORT"}); err != nil {
		return err
	}
	if err := cw.Write([]string{
		"Order No", "Book No", "Customer Name", "Phone", "Category",
		"Order Date", "Trial Date", "Delivery Date",
		"Amount", "Advance", "Balance Received", "Pending", "Status",
	}); err != nil {
		return err
	}

	var totalIncome, totalAdvance, totalBalanceRecd, totalPending float64
	for _, order := range orders {
		if err := cw.Write([]string{
			order.OrderNo,
			order.OrderNoFromBook,
			order.CustomerName,
			order.PhoneNumber,
			order.Category,
			order.OrderDate.Format(csvDateFormat),
			formatOptionalDate(order.TrialDate),
			formatOptionalDate(order.DeliveryDate),
			formatAmount(order.TotalAmount),
			formatAmount(order.AdvanceAmountPaid),
			formatAmount(order.BalanceAmountReceived),
			formatAmount(order.Balance),
			order.Status,
		}); err != nil {
			return err
		}
		totalIncome += order.TotalAmount
		totalAdvance += order.AdvanceAmountPaid
		totalBalanceRecd += order.BalanceAmountReceived
		totalPending += order.Balance
	}

	if err := cw.Write([]string{
		"TOTALS", "", "", "", "", "", "", "",
		formatAmount(totalIncome),
		formatAmount(totalAdvance),
		formatAmount(totalBalanceRecd),
		formatAmount(totalPending),
		"",
	}); err != nil {
		return err
	}

	if includeExpenses && len(expenses) > 0 {
		if err := cw.Write([]string{}); err != nil {
			return err
		}
		if err := cw.Write([]string{"EXPENSES REPORT"}); err != nil {
			return err
		}
		if err := cw.Write([]string{"Date", "Category", "Description", "Amount"}); err != nil {
			return err
		}

		var totalExpenses float64
		for _, exp := range expenses {
			if err := cw.Write([]string{
				exp.Date.Format(csvDateFormat),
				exp.Category,
				exp.Description,
				formatAmount(exp.Amount),
			}); err != nil {
				return err
			}
			totalExpenses += exp.Amount
		}

		if err := cw.Write([]string{"TOTAL", "", "", formatAmount(totalExpenses)}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(csvDateFormat)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
