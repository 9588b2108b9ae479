package driver

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
)

// WriteTripSheet renders a printable PDF listing the driver's trips in loc.
func WriteTripSheet(w io.Writer, d *Driver, trips []Trip, loc *time.Location, generatedAt time.Time) error {
	if loc == nil {
		loc = time.UTC
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Trip Sheet - "+d.Name, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRIP SHEET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr("Driver    : "+d.Name))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Phone     : "+safe(d.Phone, "-")))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Generated : "+generatedAt.In(loc).Format("2006-01-02 15:04 MST"))
	pdf.Ln(10)

	if len(trips) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 7, "No confirmed trips in this period.")
		pdf.Ln(7)
	}

	for i, t := range trips {
		start := t.Start.In(loc)
		end := t.End.In(loc)

		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("%d) %s  %s - %s", i+1, start.Format("Mon Jan 2"), start.Format("15:04"), end.Format("15:04")))
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "", 11)
		rows := []string{
			"Bus        : " + safe(t.BusName, "-"),
			"Client     : " + safe(t.ClientName, "-"),
			"Phone      : " + safe(t.ClientPhone, "-"),
			"Pickup     : " + safe(t.PickupLocation, "-"),
			"Dropoff    : " + safe(t.DropoffLocation, "-"),
			fmt.Sprintf("Passengers : %d", t.PassengerCount),
		}
		for _, r := range rows {
			pdf.Cell(0, 6, tr(r))
			pdf.Ln(6)
		}
		if t.Notes != "" {
			pdf.MultiCell(0, 6, tr("Notes      : "+t.Notes), "", "", false)
		}

		pdf.Ln(2)
		x, y := pdf.GetXY()
		pdf.Line(x, y, 200, y)
		pdf.Ln(4)
	}

	return pdf.Output(w)
}

func safe(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
