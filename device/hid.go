package device

import (
	"fmt"

	"github.com/sstallion/go-hid"
)

// Transport locates and opens devices by vendor/product identifier.
type Transport interface {
	// Present reports whether at least one matching device is attached.
	Present(vid, pid uint16) (bool, error)

	// OpenChannel opens the first matching device.
	OpenChannel(vid, pid uint16) (Channel, error)
}

// HIDTransport is the Transport backed by hidapi.
type HIDTransport struct{}

// Present enumerates attached HID devices matching vid/pid.
func (HIDTransport) Present(vid, pid uint16) (bool, error) {
	if err := hid.Init(); err != nil {
		return false, fmt.Errorf("init hidapi: %w", err)
	}

	found := false
	err := hid.Enumerate(vid, pid, func(info *hid.DeviceInfo) error {
		found = true
		return nil
	})
	if err != nil {
		_ = hid.Exit()
		return false, fmt.Errorf("enumerate %04x:%04x: %w", vid, pid, err)
	}
	if !found {
		_ = hid.Exit()
	}
	return found, nil
}

// OpenChannel opens the first HID device matching vid/pid.
func (HIDTransport) OpenChannel(vid, pid uint16) (Channel, error) {
	d, err := hid.OpenFirst(vid, pid)
	if err != nil {
		_ = hid.Exit()
		return nil, fmt.Errorf("open %04x:%04x: %w", vid, pid, err)
	}
	return &hidChannel{dev: d}, nil
}

// hidChannel releases hidapi together with the device handle.
type hidChannel struct {
	dev *hid.Device
}

func (c *hidChannel) SendFeatureReport(b []byte) (int, error) {
	return c.dev.SendFeatureReport(b)
}

func (c *hidChannel) Close() error {
	err := c.dev.Close()
	if exitErr := hid.Exit(); err == nil {
		err = exitErr
	}
	return err
}

// Open opens the attached device identified by vid/pid over USB HID.
// It returns a *DeviceNotFoundError if no such device is attached.
//
// Example:
//
//	sess, err := device.Open(device.DefaultVendorID, device.DefaultProductID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
func Open(vid, pid uint16, opts ...Option) (*Session, error) {
	return OpenWith(HIDTransport{}, vid, pid, opts...)
}

// OpenWith opens a device through the given transport.
func OpenWith(t Transport, vid, pid uint16, opts ...Option) (*Session, error) {
	present, err := t.Present(vid, pid)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, &DeviceNotFoundError{VendorID: vid, ProductID: pid}
	}

	ch, err := t.OpenChannel(vid, pid)
	if err != nil {
		return nil, err
	}

	return NewSession(ch, opts...), nil
}
