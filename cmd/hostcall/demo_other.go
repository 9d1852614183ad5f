//go:build !linux

package main

import (
	"context"

	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/fdtable"
	"github.com/wippyai/hostcall/guest"
)

func udpDemo(context.Context, *guest.Guest, *fdtable.Table) error {
	return errors.Unsupported(errors.PhaseHost, "udp demo outside linux")
}
