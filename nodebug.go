//go:build !debug

package pacs

func debugAssert(bool, ...interface{}) {}
