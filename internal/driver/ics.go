package driver

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	icsTimeLayout = "20060102T150405Z"
	icsLineLimit  = 75
	icsUIDDomain  = "partybus.booking"
)

var icsEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

// WriteICS writes an iCalendar document with one event per trip.
// Times are written in UTC; now stamps DTSTAMP.
func WriteICS(w io.Writer, d *Driver, trips []Trip, now time.Time) error {
	bw := bufio.NewWriter(w)
	line := func(name, value string) {
		writeFolded(bw, name+":"+value)
	}

	line("BEGIN", "VCALENDAR")
	line("VERSION", "2.0")
	line("PRODID", "-//Party Bus Booking//Driver Schedule//EN")
	line("CALSCALE", "GREGORIAN")
	line("METHOD", "PUBLISH")
	line("X-WR-CALNAME", icsEscaper.Replace(d.Name+"'s Schedule"))
	line("X-WR-TIMEZONE", "UTC")

	stamp := now.UTC().Format(icsTimeLayout)
	for _, t := range trips {
		client := t.ClientName
		if client == "" {
			client = "Unknown Client"
		}
		bus := t.BusName
		if bus == "" {
			bus = "Unknown"
		}

		line("BEGIN", "VEVENT")
		line("UID", t.BookingID+"@"+icsUIDDomain)
		line("DTSTAMP", stamp)
		line("DTSTART", t.Start.UTC().Format(icsTimeLayout))
		line("DTEND", t.End.UTC().Format(icsTimeLayout))
		line("SUMMARY", icsEscaper.Replace("Party Bus Duty: "+client))
		line("LOCATION", icsEscaper.Replace(fmt.Sprintf("Pickup: %s | Dropoff: %s", t.PickupLocation, t.DropoffLocation)))
		line("DESCRIPTION", icsEscaper.Replace(fmt.Sprintf("Client: %s\nPassengers: %d\nBus: %s", client, t.PassengerCount, bus)))
		line("STATUS", "CONFIRMED")
		line("END", "VEVENT")
	}

	line("END", "VCALENDAR")
	return bw.Flush()
}

// writeFolded writes s as one content line, folding it into continuation
// lines so no physical line exceeds 75 octets. Runes are never split.
func writeFolded(w *bufio.Writer, s string) {
	limit := icsLineLimit
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		_, _ = w.WriteString(s[:cut])
		_, _ = w.WriteString("\r\n ")
		s = s[cut:]
		// Continuation lines start with a space, which counts toward the limit.
		limit = icsLineLimit - 1
	}
	_, _ = w.WriteString(s)
	_, _ = w.WriteString("\r\n")
}
