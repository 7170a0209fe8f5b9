// Package mmap maps image files read-only into memory so blob stores can
// serve ReadAt without an intermediate copy.
//
//	m, err := mmap.Open("photo.png")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// On unix the file is mapped with mmap(2); elsewhere it is read into a heap
// buffer behind the same API. Close is idempotent, but the slice returned by
// Bytes must not be used after Close returns.
package mmap
