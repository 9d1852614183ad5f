package syscalls

import "github.com/wippyai/hostcall/call"

type result = call.Collected[int64]

var (
	_ call.Syscall[call.Output, call.Output, result]          = Read{}
	_ call.Syscall[call.Input, call.Input, result]            = Write{}
	_ call.Syscall[call.None, call.None, result]              = Close{}
	_ call.Syscall[RecvfromStaged, RecvfromCommitted, result] = Recvfrom{}
	_ call.Syscall[SendtoStaged, SendtoStaged, result]        = Sendto{}
	_ call.Syscall[StagedSockaddr, CommittedSockaddr, result] = Getsockname{}
	_ call.Syscall[call.None, call.None, result]              = Getpid{}
)
