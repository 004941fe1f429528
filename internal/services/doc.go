// Package services talks to Google Sheets and Google Docs on behalf of a service account.
//
// # Credentials
//
// [LoadCredentials] reads a service account JSON key and returns [Credentials], an
// authorised HTTP client passed explicitly to every call. Nothing is stored globally.
// The client's transport is a [RateLimitedTransport] so a run with many blocks stays
// under the API quotas.
//
// # Row Source
//
// [SheetsService] fetches one tab with values.get and turns it into [models.Record] values:
// the first row is the header, short rows are padded with empty values and blank rows are skipped.
//
// # Document Writer
//
// [DocsService] replaces a document's body text in one batchUpdate: delete the existing
// span (only when there is one) and insert the new content at index 1.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrCredentialsUnavailable] : key missing, unreadable or not a service account
//   - [shared.ErrSourceUnavailable] : spreadsheet or tab could not be read
//   - [shared.ErrWriteFailed] : document read or batchUpdate failed
//
// No call is retried.
package services
