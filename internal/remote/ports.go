// Package remote defines the ports implemented by the backends that hold the
// authoritative transaction and category tables.
package remote

import (
	"context"

	"finboard/internal/core"
)

// Ports for outbound adapters.
type (
	TransactionReader interface {
		// ListTransactions returns every record of the transactions table.
		ListTransactions(ctx context.Context) ([]core.Record, error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context) ([]core.Record, error)
	}

	// TransactionWriter creates and patches transaction records. Both calls
	// return the record as stored by the backend, including its assigned id.
	TransactionWriter interface {
		CreateTransaction(ctx context.Context, fields map[string]any) (core.Record, error)
		UpdateTransaction(ctx context.Context, id string, fields map[string]any) (core.Record, error)
	}

	// Store is the full set of operations a backend offers.
	Store interface {
		TransactionReader
		CategoryReader
		TransactionWriter
	}
)
