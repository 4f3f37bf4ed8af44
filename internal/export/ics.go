// Package export converts events to and from iCalendar.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/eventboard/eventboard-server/internal/domain"
)

// ProductID identifies the generator in exported calendars.
const ProductID = "-//Eventboard//Eventboard Server//EN"

// uidNamespace seeds the UUIDv5 uids of exported events so an event keeps
// its uid across exports.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:eventboard:event"))

// EventUID returns the stable calendar uid of an event id.
func EventUID(eventID int64) string {
	return uuid.NewSHA1(uidNamespace, []byte(strconv.FormatInt(eventID, 10))).String()
}

// WriteICS writes a VCALENDAR with one all-day VEVENT per event.
// Events whose date is not YYYY-MM-DD are skipped. It returns the number
// of events written.
func WriteICS(w io.Writer, events []domain.Event, name string) (int, error) {
	return writeICS(w, events, name, time.Now().UTC())
}

func writeICS(w io.Writer, events []domain.Event, name string, stamp time.Time) (int, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetName(name)
	}

	written := 0
	for _, e := range events {
		day, err := time.Parse(domain.DateLayout, e.Date)
		if err != nil {
			continue
		}

		ve := cal.AddEvent(EventUID(e.ID))
		ve.SetDtStampTime(stamp)
		ve.SetAllDayStartAt(day)
		ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ve.SetSummary(e.Name)
		ve.SetLocation(e.Location)
		if e.HasDescription() {
			ve.SetDescription(e.Description)
		}
		if e.Category != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, e.Category)
		}
		written++
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return written, fmt.Errorf("write calendar: %w", err)
	}
	return written, nil
}

// ParseICS reads the VEVENTs of a calendar as event input. The date is the
// start day in the event's own timezone. VEVENTs without a usable start are
// skipped. The first CATEGORIES value becomes the category.
func ParseICS(r io.Reader) ([]domain.NewEvent, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	out := make([]domain.NewEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		in, ok := parseVEvent(ve)
		if !ok {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

func parseVEvent(ve *ical.VEvent) (domain.NewEvent, bool) {
	var in domain.NewEvent

	start, err := ve.GetStartAt()
	if err != nil {
		start, err = ve.GetAllDayStartAt()
		if err != nil {
			return in, false
		}
	}
	in.Date = start.Format(domain.DateLayout)

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		in.Name = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		in.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		in.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		first, _, _ := strings.Cut(p.Value, ",")
		in.Category = strings.TrimSpace(first)
	}
	return in, true
}
