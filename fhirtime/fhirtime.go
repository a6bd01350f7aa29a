// Package fhirtime converts between FHIR date/dateTime strings and the
// millisecond-resolution timestamps the binary format stores on disk.
//
// FHIR allows four date/time precisions (see https://hl7.org/fhir/datatypes.html#dateTime):
//
//	YYYY                          2018
//	YYYY-MM                       1973-06
//	YYYY-MM-DD                    1905-08-23
//	YYYY-MM-DDThh:mm:ss+zz:zz     2015-02-07T13:28:17-05:00
//
// Every value is normalized to UTC on the way in; the precision itself is
// not retained, matching the reference engine (a round-tripped date loses
// its original precision — it becomes a full instant at midnight UTC).
package fhirtime

import (
	"strconv"
	"strings"
	"time"

	"fhirbin/fhirerr"
)

// Parse converts a FHIR date or dateTime string to milliseconds since the
// Unix epoch, UTC. Inputs longer than 10 bytes are parsed as RFC 3339;
// shorter inputs are treated as a YYYY, YYYY-MM or YYYY-MM-DD calendar date
// at midnight UTC.
func Parse(s string) (int64, error) {
	if len(s) > 10 {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return 0, fhirerr.Newf(fhirerr.KindTimestampParse, "%q: %v", s, err)
		}
		return t.UTC().UnixMilli(), nil
	}

	parts := strings.Split(s, "-")
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fhirerr.Newf(fhirerr.KindTimestampParse, "%q: bad year", s)
	}
	month := 1
	day := 1
	if len(parts) > 1 {
		month, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, fhirerr.Newf(fhirerr.KindTimestampParse, "%q: bad month", s)
		}
	}
	if len(parts) > 2 {
		day, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, fhirerr.Newf(fhirerr.KindTimestampParse, "%q: bad day", s)
		}
	}
	if len(parts) > 3 {
		return 0, fhirerr.Newf(fhirerr.KindTimestampParse, "%q: too many date components", s)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.UnixMilli(), nil
}

// Format renders epochMs (milliseconds since the Unix epoch, UTC) as an RFC
// 3339 dateTime string with millisecond precision, the canonical shape the
// reader re-emits every stored timestamp in, regardless of the precision the
// original JSON string had.
func Format(epochMs int64) string {
	return time.UnixMilli(epochMs).UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// TimestampBytes encodes epochMs as the 8-byte big-endian payload a DATETIME
// or DATE unit carries on disk.
func TimestampBytes(epochMs int64) [8]byte {
	var b [8]byte
	u := uint64(epochMs)
	for i := 7; i >= 0; i-- {
		b[i] = byte(u)
		u >>= 8
	}
	return b
}

// TimestampFromBytes decodes the 8-byte big-endian payload of a DATETIME or
// DATE unit back to milliseconds since the Unix epoch.
func TimestampFromBytes(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fhirerr.Newf(fhirerr.KindTimestampParse, "timestamp payload must be 8 bytes, got %d", len(b))
	}
	var u uint64
	for _, v := range b {
		u = u<<8 | uint64(v)
	}
	return int64(u), nil
}
