package models

import "strconv"

// HistorySnapshotVersion is written into every persisted snapshot
const HistorySnapshotVersion = "1.0.0"

// HistorySnapshot is the persisted form of an account's scan history.
// The transient current selection is never part of it.
type HistorySnapshot struct {
	Version string      `json:"version"`
	Events  []ScanEvent `json:"events"`
}

// HistoryKey returns the persistence key for an account's history
func HistoryKey(userID uint) string {
	return "history:" + strconv.FormatUint(uint64(userID), 10)
}
