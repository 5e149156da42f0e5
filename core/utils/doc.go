// Package utils provides loose decoding helpers for platform APIs that are inconsistent
// about JSON types, returning counts as numbers in one endpoint and as strings in the next.
package utils
