// Package logger provides the per-test audit trail written by the e2e suite and
// the slog factory used for infrastructure logging.
//
// A Logger appends one line per entry to logs/<test>-<YYYY-MM-DD>.log and
// echoes the same line to a console writer:
//
//	[2026-10-14T09:47:12.345Z] [STEP] [Step 2] Entering valid username
//	[2026-10-14T09:47:12.561Z] [INFO] Username entered - {"username":"standard_user"}
//
// Each write opens the file in append mode, writes the line and closes it, so
// nothing is held open between entries.
package logger
