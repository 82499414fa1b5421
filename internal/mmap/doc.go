// Package mmap maps dataset files read-only into memory.
//
// A raw dataset is a flat run of little-endian float64 values, so a mapped
// file can be decoded into points without reading it through a buffer first.
//
//	m, err := mmap.Open("osm.bin")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix uses mmap(2) with madvise(2) hints. Windows uses
// CreateFileMapping/MapViewOfFile and ignores hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch the slice from Bytes after Close returns.
package mmap
