package daemon

import "context"

// WrapSweepForTest runs fn around the startup sweep. fn receives whether the
// watcher was already running and the original sweep to call.
func WrapSweepForTest(d *Daemon, fn func(watching bool, sweep func())) {
	original := d.sweep
	d.sweep = func(ctx context.Context) {
		fn(d.watcher.Running(), func() { original(ctx) })
	}
}
