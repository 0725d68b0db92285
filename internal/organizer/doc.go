// Package organizer decides where a downloaded file belongs and moves it there.
//
// A Table maps lowercase extensions to category names with "Others" as the
// catch-all. UniquePath picks a free name inside a category folder by
// appending " (n)" before the extension. Mover ties both together: it skips
// anything that is not a regular file directly inside the root, creates the
// category folder on demand and renames the file, printing one
// "Moved: <name> → <destination>" line per success.
package organizer
