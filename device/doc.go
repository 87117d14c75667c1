// Package device owns the control channel to one attached device.
//
// A Session wraps a single open channel and exposes the opcode-level
// primitives used to install a sandbox: SendControl for raw frames,
// DisableRunningMode and SetModePointer for the mode pointer slot.
// Every call is a synchronous round trip that mutates device state; there is
// no read-back.
//
//	sess, err := device.Open(device.DefaultVendorID, device.DefaultProductID,
//	    device.WithLogger(logger),
//	)
//	if err != nil {
//	    // *device.DeviceNotFoundError when nothing is attached
//	    return err
//	}
//	defer sess.Close()
package device
