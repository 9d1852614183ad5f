//go:build !linux

package host

import (
	"context"
	"os"

	"github.com/wippyai/hostcall/abi"
)

// Only getpid has a portable implementation. Everything else answers ENOSYS
// unless installed with WithHandler.
func platformHandlers() map[abi.Number]Handler {
	return map[abi.Number]Handler{
		abi.SysGetpid: func(context.Context, *Frame) abi.Ret {
			return abi.FromValue(int64(os.Getpid()))
		},
	}
}
