// Copyright (c) 2016-2026 The daqwave developers. All rights reserved.
// Project site: https://github.com/gotmc/daqwave
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package usb20x

import (
	"fmt"
	"log"
	"time"

	"github.com/gotmc/libusb"
)

const (
	vendorID       = 0x09db
	defaultTimeout = 2000
	msSleepTime    = 500
)

// ProductID identifies a model of the USB-20X family.
type ProductID uint16

// USB-20X product IDs
const (
	USB201 ProductID = 0x0113
	USB202 ProductID = 0x012b
	USB204 ProductID = 0x0114
	USB205 ProductID = 0x012c
)

var productNames = map[ProductID]string{
	USB201: "USB-201",
	USB202: "USB-202",
	USB204: "USB-204",
	USB205: "USB-205",
}

func (p ProductID) String() string {
	if name, ok := productNames[p]; ok {
		return name
	}
	return fmt.Sprintf("unknown product 0x%04x", uint16(p))
}

// HasAnalogOutput reports whether the model has the two analog outputs.
// Only the USB-202 and USB-205 do.
func (p ProductID) HasAnalogOutput() bool {
	return p == USB202 || p == USB205
}

// DAQer defines the interface required for a DAQ.
type DAQer interface {
	ReadCommandFromDevice(cmd command, data []byte) (int, error)
	SendValueToDevice(cmd command, value, index uint16) error
}

// USB20X models a MCC USB-201, USB-202, USB-204 or USB-205 DAQ.
type USB20X struct {
	Timeout          int
	Product          ProductID
	Device           *libusb.Device
	DeviceDescriptor *libusb.DeviceDescriptor
	DeviceHandle     *libusb.DeviceHandle
	ConfigDescriptor *libusb.ConfigDescriptor
	BulkEndpoint     *libusb.EndpointDescriptor
}

// Init intializes a new libusb session/context by creating a new Context and
// returning a pointer to that Context.
func Init() (*libusb.Context, error) {
	return libusb.NewContext()
}

// NewViaSN creates a new daq instance by searching through the list of USB
// devices for the given serial number.
func NewViaSN(ctx *libusb.Context, sn string) (*USB20X, error) {
	usbDevices, err := ctx.GetDeviceList()
	if err != nil {
		return nil, fmt.Errorf("error getting USB device list: %s", err)
	}
	for _, usbDevice := range usbDevices {
		usbDeviceDescriptor, err := usbDevice.GetDeviceDescriptor()
		if err != nil {
			return nil, fmt.Errorf("error getting device descriptor: %s", err)
		}
		// Only open MCC devices of the USB-20X family to read their S/N.
		if usbDeviceDescriptor.VendorID != vendorID {
			continue
		}
		if _, ok := productNames[ProductID(usbDeviceDescriptor.ProductID)]; !ok {
			continue
		}
		usbDeviceHandle, err := usbDevice.Open()
		if err != nil {
			return nil, fmt.Errorf("error getting device handle: %s", err)
		}
		serialNum, err := usbDeviceHandle.GetStringDescriptorASCII(
			usbDeviceDescriptor.SerialNumberIndex)
		if err != nil {
			usbDeviceHandle.Close()
			return nil, fmt.Errorf("error reading S/N: %s", err)
		}
		if serialNum == sn {
			log.Printf("Found S/N %s. Creating device", sn)
			return create(usbDevice, usbDeviceHandle)
		}
		usbDeviceHandle.Close()
	}
	return nil, fmt.Errorf("couldn't find device s/n %s", sn)
}

// GetFirstDevice creates a new instance of a daq using the first USB-20X
// found in the USB context, trying the models with analog outputs first.
func GetFirstDevice(ctx *libusb.Context) (*USB20X, error) {
	for _, pid := range []ProductID{USB202, USB205, USB201, USB204} {
		dev, dh, err := ctx.OpenDeviceWithVendorProduct(vendorID, uint16(pid))
		if err != nil {
			continue
		}
		return create(dev, dh)
	}
	return nil, fmt.Errorf("error opening a USB-20X: no device found")
}

// interfaceHandle is the part of a libusb device handle that create claims
// and must give back on failure.
type interfaceHandle interface {
	ClaimInterface(num int) error
	ReleaseInterface(num int) error
	Close() error
}

// claim claims interface 0 of dh and then runs describe. If either step
// fails dh is closed, after releasing the interface if it was claimed.
func claim(dh interfaceHandle, describe func() error) error {
	if err := dh.ClaimInterface(0); err != nil {
		dh.Close()
		return fmt.Errorf("error claiming the bulk interface %s", err)
	}
	if err := describe(); err != nil {
		dh.ReleaseInterface(0)
		dh.Close()
		return err
	}
	return nil
}

func create(dev *libusb.Device, dh *libusb.DeviceHandle) (*USB20X, error) {
	daq := USB20X{
		Timeout:      defaultTimeout,
		Device:       dev,
		DeviceHandle: dh,
	}
	err := claim(dh, func() error {
		deviceDescriptor, err := dev.GetDeviceDescriptor()
		if err != nil {
			return fmt.Errorf("error getting device descriptor %s", err)
		}
		daq.DeviceDescriptor = deviceDescriptor
		daq.Product = ProductID(deviceDescriptor.ProductID)
		configDescriptor, err := dev.GetActiveConfigDescriptor()
		if err != nil {
			return fmt.Errorf("error getting active config descriptor. %s", err)
		}
		daq.ConfigDescriptor = configDescriptor
		if len(configDescriptor.SupportedInterfaces) == 0 ||
			len(configDescriptor.SupportedInterfaces[0].InterfaceDescriptors) == 0 ||
			len(configDescriptor.SupportedInterfaces[0].InterfaceDescriptors[0].EndpointDescriptors) == 0 {
			return fmt.Errorf("%s reports no bulk endpoint", daq.Product)
		}
		firstDescriptor := configDescriptor.SupportedInterfaces[0].InterfaceDescriptors[0]
		daq.BulkEndpoint = firstDescriptor.EndpointDescriptors[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &daq, nil
}

// Close implements the Closer interface for USB20X.
func (daq *USB20X) Close() error {
	// Release the interface and close up shop
	err := daq.DeviceHandle.ReleaseInterface(0)
	if err != nil {
		return fmt.Errorf("error releasing interface %s", err)
	}
	time.Sleep(msSleepTime * time.Millisecond)
	_, err = daq.Reset()
	if err != nil {
		return fmt.Errorf("error reseting %s %s", daq.Product, err)
	}
	time.Sleep(msSleepTime * time.Millisecond)
	daq.DeviceHandle.Close()
	return nil
}

// Reset resets the device.
func (daq *USB20X) Reset() (int, error) {
	requestType := libusb.BitmapRequestType(
		libusb.HostToDevice, libusb.Vendor, libusb.DeviceRecipient)
	ret, err := daq.DeviceHandle.ControlTransfer(
		requestType, byte(commandReset), 0x0, 0x0, []byte{0x00}, 1, daq.Timeout)
	if err != nil {
		return ret, fmt.Errorf("error resetting device %s", err)
	}
	return ret, nil
}

// SendValueToDevice sends a command whose argument travels in the wValue and
// wIndex fields of the setup packet, with no data stage.
func (daq *USB20X) SendValueToDevice(cmd command, value, index uint16) error {
	requestType := libusb.BitmapRequestType(
		libusb.HostToDevice, libusb.Vendor, libusb.DeviceRecipient)
	_, err := daq.DeviceHandle.ControlTransfer(
		requestType, byte(cmd), value, index, []byte{0x00}, 0, daq.Timeout)
	if err != nil {
		return fmt.Errorf("error sending command '%s' with value 0x%x to device: %s", cmd, value, err)
	}
	return nil
}

// ReadCommandFromDevice sends a command to the DAQ via USB and reads the
// results of the command.
func (daq *USB20X) ReadCommandFromDevice(cmd command, data []byte) (int, error) {
	if data == nil {
		data = []byte{0}
	}
	requestType := libusb.BitmapRequestType(
		libusb.DeviceToHost, libusb.Vendor, libusb.DeviceRecipient)
	bytesReceived, err := daq.DeviceHandle.ControlTransfer(
		requestType, byte(cmd), 0x0, 0x0, data, len(data), daq.Timeout)
	if err != nil {
		return bytesReceived, fmt.Errorf("error reading command '%s' from device: %s", cmd, err)
	}
	return bytesReceived, nil
}

// SerialNumber retrieves the serial number via a control transfer.
func (daq *USB20X) SerialNumber() (string, error) {
	data := make([]byte, 8)
	if _, err := daq.ReadCommandFromDevice(commandSerialNum, data); err != nil {
		return "", err
	}
	return string(data), nil
}
