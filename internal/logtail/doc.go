// Package logtail reads the tail of the gifbox log file for the logs view.
//
// # Reading
//
// Read keeps a ring buffer of maxLines entries while scanning the file once,
// so memory stays O(maxLines) regardless of file size. Lines come back in
// file order. A missing file is not an error.
//
// # Formatting
//
// gifbox writes zerolog JSON. FormatLine turns each record into the compact
// console form ("15:04:05 INF message key=value") using zerolog's own
// ConsoleWriter; anything that is not a JSON object passes through as is.
package logtail
