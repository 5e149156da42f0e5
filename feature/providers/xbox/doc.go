// Package xbox implements the Xbox provider through the OpenXBL API.
//
// The signed-in account's XUID is looked up at construction. Title history drives both
// scans and refreshes; a refresh only expands titles played since the library last saw
// them.
package xbox
