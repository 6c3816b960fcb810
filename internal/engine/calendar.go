package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/tartampluch/go-agecategory/internal/config"
)

// BuildCalendar renders an iCalendar feed with one all-day event on
// September 1 of the JK entry year for every child whose eligibility has
// not passed. It returns the feed and the number of events. An empty
// roster still yields a valid VCALENDAR.
func BuildCalendar(children []ChildEntry, now time.Time) ([]byte, int, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, child := range children {
		elig := child.Age.Eligibility
		if elig.Status == EligibilityPassed {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, child.UID, config.ICalDomain))
		event.Props.SetText(config.PropSummary, fmt.Sprintf(config.FormatEventSummary, child.Name))
		event.Props.SetText(config.PropDescription,
			fmt.Sprintf(config.FormatEventDescription, child.Name, child.Born(), elig.Year))

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(elig.Starts())
		event.Props.Set(dtStartProp)
		event.Props.Set(dtStampProp)

		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		logCalendar(0, len(children))
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	logCalendar(len(cal.Children), len(children))
	return buf.Bytes(), len(cal.Children), nil
}

func logCalendar(events, children int) {
	slog.Info(config.MsgCalendarBuilt,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyFound, children),
			slog.Int(config.LogKeyEligible, events),
		),
	)
}
