// Package hooksource feeds hotkey.Watcher from the operating system's global
// input hook. It is kept apart from package hotkey so that only the daemon
// links the cgo hook; config, ui and the client commands build without it.
package hooksource
