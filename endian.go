//go:build amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm

// endian.go - host byte order used to pick a catalog magic at build time.
//
// The renderer never byte-swaps in the hot loop (see DESIGN.md); it only
// accepts catalogs whose header magic matches the host's native order.
// This file compiles on known little-endian targets. The sibling file
// endian_be.go covers the known big-endian targets; an architecture
// listed in neither file has no hostLittleEndian and does not build.

package main

const hostLittleEndian = true
