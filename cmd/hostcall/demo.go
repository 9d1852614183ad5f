package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/wippyai/hostcall/abi"
	"github.com/wippyai/hostcall/errors"
	"github.com/wippyai/hostcall/fdtable"
	"github.com/wippyai/hostcall/guest"
	"github.com/wippyai/hostcall/host"
)

// demoCalls lists the calls each demo issues.
var demoCalls = map[string][]abi.Number{
	"pipe": {abi.SysWrite, abi.SysRead, abi.SysClose},
	"udp":  {abi.SysGetsockname, abi.SysSendto, abi.SysRecvfrom},
}

// checkDemo fails when the host cannot serve every call the demo issues.
func checkDemo(exec *host.Executor, demo string) error {
	calls, ok := demoCalls[demo]
	if !ok {
		return fmt.Errorf("unknown demo %q", demo)
	}
	for _, num := range calls {
		if !exec.Supports(num) {
			return errors.Unsupported(errors.PhaseHost, demo+" demo needs "+num.String())
		}
	}
	return nil
}

// describe renders a result the way the inspector and demos print it.
func describe(res guest.Result) string {
	switch {
	case !res.Present:
		return fmt.Sprintf("absent (%v)", res.DiscardReason())
	case res.Err != nil:
		return res.Err.Error()
	default:
		return strconv.FormatInt(res.Value, 10)
	}
}

func pipeDemo(ctx context.Context, g *guest.Guest, table *fdtable.Table) error {
	r, w, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("pipe: %w", err)
	}
	defer r.Close()
	defer w.Close()

	rfd, err := table.Insert(fdtable.Entry{Name: "pipe-r", Kind: fdtable.KindFile, HostFD: int(r.Fd())})
	if err != nil {
		return err
	}
	wfd, err := table.Insert(fdtable.Entry{Name: "pipe-w", Kind: fdtable.KindFile, HostFD: int(w.Fd())})
	if err != nil {
		return err
	}
	// the files own the descriptors
	defer table.Remove(rfd)
	defer table.Remove(wfd)

	msg := []byte("hello through the block")
	res, err := g.Write(ctx, int32(wfd), msg)
	if err != nil {
		return err
	}
	fmt.Printf("write(%d, %d bytes) = %s\n", wfd, len(msg), describe(res))

	buf := make([]byte, 64)
	res, err = g.Read(ctx, int32(rfd), buf)
	if err != nil {
		return err
	}
	fmt.Printf("read(%d) = %s", rfd, describe(res))
	if res.Present && res.Err == nil {
		fmt.Printf(" %q", buf[:res.Value])
	}
	fmt.Println()

	res, err = g.Getpid(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("getpid() = %s\n", describe(res))

	res, err = g.Close(ctx, 99)
	if err != nil {
		return err
	}
	fmt.Printf("close(99) = %s\n", describe(res))
	return nil
}
