// Package storage provides durable single-key slots for the ledger snapshot.
package storage

import "errors"

// ErrSlotEmpty means nothing has been written to the slot yet, or it was
// cleared. It is not a failure.
var ErrSlotEmpty = errors.New("slot is empty")

// DefaultKey names the snapshot slot.
const DefaultKey = "financeTracker"
