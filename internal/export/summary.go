package export

import (
	"time"

	"github.com/nilefleet/genset-invoicer/pkg/utils"
)

// Summary converts a report into the summary log layout.
func (r Report) Summary(runID, customer, backend, theme string, total int, start, end time.Time) utils.ExportSummary {
	s := utils.ExportSummary{
		RunID:     runID,
		StartTime: start,
		EndTime:   end,
		Customer:  customer,
		Backend:   backend,
		Theme:     theme,
		Total:     total,
		Processed: r.Processed,
	}
	for _, res := range r.Results {
		if res.OK() {
			s.Exported = append(s.Exported, utils.ExportedFileInfo{
				Serial:      res.Serial,
				OutputFile:  res.OutputPath,
				Attempts:    res.Attempts,
				ProcessTime: res.Duration,
			})
			continue
		}
		s.Failed = append(s.Failed, utils.FailedFileInfo{
			Serial:       res.Serial,
			ErrorMessage: res.Err.Error(),
		})
	}
	return s
}

// ErrorEntries returns one error log entry per failed result.
func (r Report) ErrorEntries(at time.Time) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry
	for _, res := range r.Failed() {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    at,
			InvoiceID:    res.InvoiceID,
			Serial:       res.Serial,
			Customer:     res.Customer,
			ErrorType:    ErrorType(res.Err),
			ErrorMessage: res.Err.Error(),
			Attempts:     res.Attempts,
		})
	}
	return entries
}
