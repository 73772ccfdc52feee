// Package export writes recorded sessions as CSV for use in spreadsheets.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/persist"
)

// Header is the first CSV row.
var Header = []string{"Date", "Type", "Exercise", "Set", "Weight", "Reps", "Notes"}

// DateLayout is the short date and time style used in the Date column.
const DateLayout = "1/2/06, 3:04 PM"

// WriteCSV writes one row per set, in session, exercise and set order.
// Dates are rendered in loc.
func WriteCSV(w io.Writer, sessions []models.WorkoutSession, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, s := range sessions {
		date := s.StartTime.In(loc).Format(DateLayout)
		for _, e := range s.Exercises {
			for i, set := range e.Sets {
				notes := ""
				if set.Notes != nil {
					notes = *set.Notes
				}
				row := []string{
					date,
					s.Type.Name,
					e.Exercise.Name,
					strconv.Itoa(i + 1),
					strconv.FormatFloat(set.Weight, 'f', -1, 64),
					strconv.Itoa(set.Reps),
					notes,
				}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("writing row: %w", err)
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile renders the CSV and replaces the file at path with it.
func WriteFile(path string, sessions []models.WorkoutSession, loc *time.Location) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sessions, loc); err != nil {
		return err
	}
	if err := persist.WriteAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
