// Package tasks runs the daily schedule: today's sheet rows in, rendered documents out.
//
// # Core Operations
//
//  1. [Aggregator.Aggregate] : Build per-document content
//     - Skips disabled blocks without touching the sheet
//     - Reads the block's tab and finds the row dated today
//     - Renders the block template with the row (spaces in column names become underscores)
//     - Appends the output to the block's document, newline-joined in declaration order
//
//  2. [Bot.Run] : One full cycle
//     - Acquires credentials, aggregates, then overwrites each document in order
//     - A failed write is recorded in [models.RunResult] and the other documents are still written
//
//  3. [Bot.Preview] : Aggregate without writing
//
// # Lifecycle
//
// [Bot] implements [Lifecycle]. [Bot.Start] schedules a daily run with gocron in the sheet
// time zone; runs never overlap. [Bot.Stop] stops the scheduler and waits for the in-flight run.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends use select with default so a
// slow or absent reader never blocks a run.
//
// # Errors
//
// Credential and aggregation errors abort the run before anything is written. Aggregation
// errors are wrapped with the block name and keep their [shared] sentinel for errors.Is.
package tasks
