// Package watchdog watches for USB serial devices being attached and
// detached and emits notifications describing each change.
//
// The design is strictly poll-based: a Detector enumerates the attached
// devices on a fixed interval, compares the result with the previous
// snapshot and emits events on a channel. It holds no reference to any
// presentation layer; consumers subscribe to Events and issue Stop.
//
// # Basic Usage
//
//	det, err := watchdog.New(watchdog.NewSysfsLister(),
//	    watchdog.WithPollInterval(time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	go func() {
//	    for ev := range det.Events() {
//	        switch e := ev.(type) {
//	        case watchdog.DeviceAdded:
//	            fmt.Println("new device:", e.Device)
//	        case watchdog.ListChanged:
//	            fmt.Println(len(e.Devices), "devices")
//	        case watchdog.StatusMessage:
//	            fmt.Println(e.Title, e.Body)
//	        }
//	    }
//	}()
//
//	err = det.Run(ctx) // returns after det.Stop() or ctx cancellation
//
// # Notification Policy
//
// Only a growing device count is announced individually (DeviceAdded).
// Any change in count produces a ListChanged carrying the full listing.
// Removals are only visible through ListChanged. When several devices are
// added within one interval, a single DeviceAdded names the first new port
// in enumeration order unless WithAnnounceAllAdditions is set.
//
// # Classification
//
// A listing entry counts as a USB device when its hardware address contains
// the USB marker (default "USB"). The description is never consulted.
// Composite devices reporting several ports under one address are expanded
// into one DeviceRecord per port.
//
// # Error Handling
//
// A failed platform query surfaces as *EnumerationError, never as an empty
// snapshot. The Detector skips that cycle, keeps its baseline, emits a
// warning StatusMessage and polls again on the next tick.
//
// # Platform Support
//
// SysfsLister reads /dev and /sys and is Linux-only. Any other source can be
// plugged in through the Lister or Enumerator interfaces.
package watchdog
