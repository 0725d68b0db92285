// Package watcher subscribes to a single directory with fsnotify and feeds
// settled files to a Mover.
//
// Events for directories and ignored names are dropped. Every other path is
// debounced so repeated writes collapse into one move, then handed to a
// small worker pool. Cancelling the context passed to Run stops the
// subscription, moves files still waiting on their timer right away and
// waits for every queued move to finish.
package watcher
