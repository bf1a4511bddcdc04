//go:build s390x || ppc64 || mips || mips64 || sparc64

// endian_be.go - host byte order on known big-endian targets. See endian.go.

package main

const hostLittleEndian = false
