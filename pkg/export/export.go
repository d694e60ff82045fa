// Package export writes audit records in JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/jobgate/core/audit"
)

// Formats accepted by Write.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Write dispatches to WriteJSON or WriteCSV.
func Write(w io.Writer, format string, recs []audit.Record) error {
	switch format {
	case FormatJSON, "":
		return WriteJSON(w, recs)
	case FormatCSV:
		return WriteCSV(w, recs)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteJSON writes the records to w as a JSON array.
func WriteJSON(w io.Writer, recs []audit.Record) error {
	if recs == nil {
		recs = []audit.Record{}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(recs)
}

// WriteCSV writes the records to w in CSV format with a header row.
func WriteCSV(w io.Writer, recs []audit.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "request_id", "configuration", "priority", "sender", "mode", "accepted", "reply", "wait_ms"}); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			r.Timestamp.Format(time.RFC3339Nano),
			r.RequestID,
			r.Configuration,
			strconv.Itoa(r.Priority),
			r.Sender,
			r.Mode,
			strconv.FormatBool(r.Accepted),
			r.Reply,
			strconv.FormatInt(r.WaitMS, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
