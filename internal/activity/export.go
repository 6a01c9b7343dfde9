package activity

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"
)

// WriteCSV encodes records as a CSV document for download.
func WriteCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"id", "ip_address", "country", "city", "method", "routes", "login_at", "logout_at", "session_duration_s", "device", "user"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, rec := range records {
		user := ""
		if rec.User != nil {
			user = rec.User.Name + " <" + rec.User.Email + ">"
		}
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.IPAddress,
			rec.Country,
			rec.City,
			rec.Method,
			strings.Join(rec.Routes, " "),
			formatTimePtr(rec.LoginAt),
			formatTimePtr(rec.LogoutAt),
			strconv.FormatInt(rec.SessionDuration, 10),
			DeviceLabel(rec.UserAgent),
			user,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
