// Package models defines the run-scoped entities of the daily task pipeline.
//
// Everything here lives for a single run and is never persisted:
//   - [Record] : one sheet row, an ordered column → [Value] mapping keyed by the header row
//   - [Value] : a cell, tagged as empty, string, number or boolean
//   - [Block] : a configured source tab, template and destination document
//   - [Destinations] : rendered text accumulated per document, in first-insertion order
//   - [RunResult] : counts of written and failed documents
package models
