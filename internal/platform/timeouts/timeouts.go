// Package timeouts defines shared timeout constants used by the radiocontrol
// process. Keeping them together makes the durations discoverable.
package timeouts

import "time"

// StoreOpen caps how long opening and migrating the local store may take before
// the command gives up with a storage-unavailable error.
const StoreOpen = 5 * time.Second

// StoreBusy is the SQLite busy timeout applied to every connection.
const StoreBusy = 5 * time.Second

// Command is the default overall deadline for one CLI invocation.
const Command = 30 * time.Second

// TelemetryShutdown limits how long pending spans may take to flush on exit.
const TelemetryShutdown = 5 * time.Second
