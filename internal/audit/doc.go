// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

// Package audit records what the pipeline did and reports on corpus health.
//
// # Event Log
//
// Logger is an events.Sink. Every pipeline event (ideas added, duplicated
// or rejected, feedback applied, weight updates, federated rounds and
// integrity alerts) becomes an audit Event with a severity and outcome:
//
//	Engine/Feedback -> events.Fanout -> Logger.Publish -> buffer (chan) -> writer -> Store
//
// Writes are asynchronous and never block the caller; when the buffer is
// full the event is dropped with a warning. Close drains the buffer.
//
// Two stores are provided. DuckDBStore shares the idea database's
// connection and keeps events in the audit_events table. MemoryStore is
// bounded and used by the CLI and tests. Logger.Serve deletes events past
// the retention period and runs under the supervisor.
//
// Events export as JSON or as Common Event Format lines for SIEM ingestion:
//
//	data, _ := audit.ExporterFor("cef").Export(events)
//
// # Reports
//
// Reporter.Build produces a point-in-time report:
//
//   - signature validation of every idea and the list of tampered IDs
//   - the corpus bias report
//   - a hashed run manifest of the weights and parameters in effect
//   - average integrity score and the provenance chain summary
//   - ideas with no version snapshot for 30 days, and a 45-day refresh list
//   - graph-propagated provenance
//   - federated round count and meta-learning progress
//
// Each tampered idea raises an IntegrityAlert event. The report status is
// FAIL when any signature mismatches or the chain does not verify.
package audit
