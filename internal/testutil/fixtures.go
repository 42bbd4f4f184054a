// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"io"
	"log/slog"
	"time"

	"github.com/roach88/dasha/internal/domain"
)

// Birth is the epoch used throughout the tests.
var Birth = time.Date(1990, time.March, 14, 6, 30, 0, 0, time.UTC)

// Chart longitudes for Birth.
const (
	// RohiniMoon is 45°20′, two fifths through Rohini (Moon's star).
	RohiniMoon = 45*domain.Degree + 20*domain.Arcminute
	// PushyaSun is 100°, inside Pushya (Saturn's star).
	PushyaSun = 100 * domain.Degree
	// AshwiniLagna is 0°, the start of Ashwini (Ketu's star).
	AshwiniLagna = domain.Value(0)
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
