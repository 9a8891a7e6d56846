// Package reports renders printable documents for front-of-house staff.
package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/restaurant-booking/models"
)

var sheetColumns = []struct {
	title string
	width float64
	align string
}{
	{"Time", 28, "L"},
	{"Table", 30, "L"},
	{"Party", 14, "R"},
	{"Guest", 50, "L"},
	{"Reference", 48, "L"},
	{"Status", 20, "L"},
}

// WriteBookingSheet writes the day's bookings for r as an A4 PDF.
// Times are shown in the restaurant's time zone.
func WriteBookingSheet(w io.Writer, r *models.Restaurant, day time.Time, bookings []models.Booking) error {
	loc := r.Location()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s bookings %s", r.Name, day.Format("2006-01-02")), true)
	pdf.SetCreator("restaurant-booking", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Bookings for %s (%s, open %s-%s)",
		day.Format("Monday 2 January 2006"), loc, r.OpeningTime, r.ClosingTime), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range sheetColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	covers := 0
	for _, b := range bookings {
		table := fmt.Sprintf("#%d", b.TableID)
		if b.Table != nil {
			table = b.Table.Name
		}
		if b.Status == models.BookingConfirmed {
			covers += b.PartySize
		}
		cells := []string{
			b.StartTime.In(loc).Format("15:04") + "-" + b.EndTime.In(loc).Format("15:04"),
			table,
			fmt.Sprint(b.PartySize),
			b.GuestName,
			b.Reference,
			b.Status,
		}
		for i, col := range sheetColumns {
			pdf.CellFormat(col.width, 7, tr(cells[i]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(bookings) == 0 {
		pdf.CellFormat(0, 8, "No bookings.", "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Confirmed covers: %d", covers), "", 1, "L", false, 0, "")

	return pdf.Output(w)
}
