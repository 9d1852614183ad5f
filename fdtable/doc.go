// Package fdtable keeps the host-side mapping from guest descriptor numbers
// to host descriptors.
//
// Guest descriptors start at FirstFD; 0 to 2 exist only with WithStdio.
// Numbers freed by Remove are reused, most recently freed first.
//
//	t := fdtable.New(fdtable.WithCloser(unix.Close))
//	fd, _ := t.Insert(fdtable.Entry{Name: "udp", Kind: fdtable.KindSocket, HostFD: sock})
//	defer t.Close()
//
// Observers see every insert and removal, including the removals Close
// performs.
package fdtable
