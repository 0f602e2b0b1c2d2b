package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lakupos/internal/domain"
	"lakupos/internal/remote"
)

// RecordTransaction applies one command either directly to the remote store
// (online) or to the local outbox with an optimistic stock decrement
// (offline). Connectivity is consulted at call time, once. Online failures
// surface to the caller; they are never silently demoted to queuing.
func (e *Engine) RecordTransaction(ctx context.Context, cmd domain.TransactionCommand) (domain.WriteOutcome, error) {
	if err := e.validate.Struct(cmd); err != nil {
		return domain.WriteOutcome{}, err
	}

	online := e.oracle.Online(ctx)
	sess, err := e.resolveSession(ctx, online)
	if err != nil {
		return domain.WriteOutcome{}, err
	}
	return e.record(ctx, sess, cmd, "", online)
}

// RecordInvoice fans an invoice out to one transaction per line, all lines
// sharing one generated invoice reference. Line failures are isolated: the
// remaining lines are still attempted.
func (e *Engine) RecordInvoice(ctx context.Context, cmd domain.InvoiceCommand) (domain.InvoiceOutcome, error) {
	if err := e.validate.Struct(cmd); err != nil {
		return domain.InvoiceOutcome{}, err
	}

	online := e.oracle.Online(ctx)
	sess, err := e.resolveSession(ctx, online)
	if err != nil {
		return domain.InvoiceOutcome{}, err
	}

	out := domain.InvoiceOutcome{InvoiceRef: uuid.NewString()}
	for _, line := range cmd.Lines {
		if line.Description == "" {
			line.Description = cmd.Description
		}
		res, err := e.record(ctx, sess, line, out.InvoiceRef, online)
		ln := domain.InvoiceLine{Outcome: res}
		if err != nil {
			ln.Error = err.Error()
		}
		out.Lines = append(out.Lines, ln)
	}
	return out, nil
}

func (e *Engine) record(ctx context.Context, sess domain.SessionContext, cmd domain.TransactionCommand, invoiceRef string, online bool) (domain.WriteOutcome, error) {
	if online {
		return e.recordOnline(ctx, sess, cmd, invoiceRef)
	}
	return e.recordOffline(ctx, sess, cmd, invoiceRef)
}

// recordOnline re-checks authoritative stock, decrements it remotely, then
// inserts the transaction. The client ref rides along so a retried insert
// cannot be applied twice.
func (e *Engine) recordOnline(ctx context.Context, sess domain.SessionContext, cmd domain.TransactionCommand, invoiceRef string) (domain.WriteOutcome, error) {
	name := cmd.ProductName

	if cmd.ProductID != "" && cmd.Type.ConsumesStock() {
		ps, err := e.remote.ProductStock(ctx, cmd.ProductID)
		if err != nil {
			return domain.WriteOutcome{}, err
		}
		if ps == nil {
			return domain.WriteOutcome{}, &domain.InsufficientStockError{ProductID: cmd.ProductID, Requested: cmd.Quantity, Available: 0}
		}
		if ps.Stock < cmd.Quantity {
			return domain.WriteOutcome{}, &domain.InsufficientStockError{ProductID: cmd.ProductID, Requested: cmd.Quantity, Available: ps.Stock}
		}
		// Catalog name is authoritative over the caller-supplied one.
		name = ps.Name
		if err := e.remote.UpdateProductStock(ctx, cmd.ProductID, ps.Stock-cmd.Quantity); err != nil {
			return domain.WriteOutcome{}, err
		}
	}

	total := cmd.UnitPrice * float64(cmd.Quantity)
	rec := remote.TransactionRecord{
		ClientRef:   uuid.NewString(),
		UserID:      sess.UserID,
		StoreID:     sess.StoreID,
		ProductID:   cmd.ProductID,
		ProductName: name,
		UnitPrice:   cmd.UnitPrice,
		TotalPrice:  total,
		Quantity:    cmd.Quantity,
		Type:        string(cmd.Type),
		Description: cmd.Description,
		InvoiceRef:  invoiceRef,
		CreatedAt:   e.now().UTC().Format(time.RFC3339Nano),
	}
	txID, err := e.remote.InsertTransaction(ctx, rec)
	if err != nil {
		return domain.WriteOutcome{}, err
	}

	e.log.Info("transaction committed",
		zap.String("transaction_id", txID),
		zap.String("type", string(cmd.Type)),
		zap.Float64("total", total))
	return domain.WriteOutcome{
		State:         domain.WriteCommitted,
		TransactionID: txID,
		ClientRef:     rec.ClientRef,
		TotalPrice:    total,
	}, nil
}

// recordOffline validates against the cached stock, optimistically
// decrements it and appends a pending outbox entry. No remote call is made
// on this path.
func (e *Engine) recordOffline(ctx context.Context, sess domain.SessionContext, cmd domain.TransactionCommand, invoiceRef string) (domain.WriteOutcome, error) {
	name := cmd.ProductName

	if cmd.ProductID != "" && cmd.Type.ConsumesStock() {
		p, err := e.products.Get(ctx, cmd.ProductID)
		if err != nil {
			return domain.WriteOutcome{}, err
		}
		avail := 0
		if p != nil {
			avail = p.Stock
			name = p.Name
		}
		if avail < cmd.Quantity {
			return domain.WriteOutcome{}, &domain.InsufficientStockError{ProductID: cmd.ProductID, Requested: cmd.Quantity, Available: avail}
		}
		if err := e.products.Decrement(ctx, cmd.ProductID, cmd.Quantity); err != nil {
			return domain.WriteOutcome{}, err
		}
	}

	total := cmd.UnitPrice * float64(cmd.Quantity)
	entry := &domain.OutboxEntry{
		ClientRef:   uuid.NewString(),
		UserID:      sess.UserID,
		StoreID:     sess.StoreID,
		ProductID:   cmd.ProductID,
		ProductName: name,
		UnitPrice:   cmd.UnitPrice,
		TotalPrice:  total,
		Quantity:    cmd.Quantity,
		Type:        cmd.Type,
		Description: cmd.Description,
		InvoiceRef:  invoiceRef,
		CreatedAt:   e.now().UTC().Format(time.RFC3339Nano),
	}
	localID, err := e.outbox.Append(ctx, entry)
	if err != nil {
		return domain.WriteOutcome{}, err
	}

	e.log.Info("transaction queued",
		zap.Int64("local_id", localID),
		zap.String("client_ref", entry.ClientRef),
		zap.String("type", string(cmd.Type)),
		zap.Float64("total", total))
	return domain.WriteOutcome{
		State:      domain.WriteQueued,
		LocalID:    localID,
		ClientRef:  entry.ClientRef,
		TotalPrice: total,
	}, nil
}
