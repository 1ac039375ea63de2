// Package rop holds Result[T], the railway value shared by the synchronous (solo, tiny)
// and channel based (core, mass, lite) pipeline packages.
package rop
