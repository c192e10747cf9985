// Package watch observes a single palette file and drives the pipeline.
// A [Notifier] exclusively owns the OS watch handle and exposes it only
// as a stream of "written and closed" notifications; [Run] consumes that
// stream in one receive loop, processing one event at a time.
package watch
