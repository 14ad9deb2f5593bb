//go:build iconv && cgo

package main

import "github.com/tdsgo/iconv"

func init() {
	backends["libc"] = iconv.OpenLibc
}
