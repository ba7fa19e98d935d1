// Package credstore bridges persisted credential records and the on-disk credential tree.
//
// Each session owns one directory below the base directory, named by its id, holding
// at least creds.json. Records carrying a selected-files payload are expanded into
// their concrete file set; all other records are written as creds.json when missing.
package credstore
