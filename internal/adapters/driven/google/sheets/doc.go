// Package sheets implements the Store port over one Google Sheets
// spreadsheet, with one tab per collection, and provisions that spreadsheet
// through Google Drive on first use.
package sheets
