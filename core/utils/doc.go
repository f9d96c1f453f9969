// Package utils provides common utility functions for the inventory-sync application.
// It includes helpers for converting loosely typed SQL column values (which differ
// between drivers: []byte, int64, string, nil) into Go values, distinguishing
// "unset" from zero values.
package utils
