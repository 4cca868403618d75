package bot

import (
	"errors"
	"strings"

	"sewa-attendance/internal/models"
)

var errUsage = errors.New("invalid command arguments")

// parseDate reads an optional YYYY-MM-DD argument; empty means today
func parseDate(args string) (string, bool) {
	args = strings.TrimSpace(args)
	if args == "" {
		return models.TodayKey(), true
	}
	return args, models.ValidDate(args)
}

// parseCheckIn reads "Name | Counter [| HH:mm]"
func parseCheckIn(args string) (models.CheckInRequest, error) {
	parts := strings.Split(args, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return models.CheckInRequest{}, errUsage
	}

	req := models.CheckInRequest{
		SewadarName: strings.TrimSpace(parts[0]),
		CounterName: strings.TrimSpace(parts[1]),
	}
	if req.SewadarName == "" || req.CounterName == "" {
		return models.CheckInRequest{}, errUsage
	}
	if len(parts) == 3 {
		req.InTime = strings.TrimSpace(parts[2])
		if !models.ValidTime(req.InTime) {
			return models.CheckInRequest{}, errUsage
		}
	}
	return req, nil
}

// parseCheckOut reads "Name [HH:mm]"; a trailing valid time is the out-time
func parseCheckOut(args string) (name, outTime string, err error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", "", errUsage
	}
	if last := fields[len(fields)-1]; len(fields) > 1 && models.ValidTime(last) {
		outTime = last
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " "), outTime, nil
}
