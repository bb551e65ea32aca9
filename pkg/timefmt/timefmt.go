// Package timefmt holds the two canonical timestamp layouts used at the
// portal boundary: a human display form and the official form used in
// attendance exports.
package timefmt

import "time"

const (
	// DisplayLayout renders timestamps as DD.MM.YYYY HH:MM.
	DisplayLayout = "02.01.2006 15:04"
	// OfficialLayout renders timestamps as YYYY-MM-DD HH:MM:SS.
	OfficialLayout = "2006-01-02 15:04:05"
)

// Display formats t in the human display form.
func Display(t time.Time) string {
	return t.Format(DisplayLayout)
}

// Official formats t in the official machine form.
func Official(t time.Time) string {
	return t.Format(OfficialLayout)
}
