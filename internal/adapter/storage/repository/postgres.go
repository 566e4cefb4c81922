package repository

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quickpos/stablepay/internal/adapter/storage"
	"github.com/quickpos/stablepay/internal/core/domain"
)

const orderColumns = "order_id, amount_fiat, asset_network, asset_symbol, " +
	"merchant_address, description, status, created_at, updated_at, expires_at"

type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order,
	record *domain.PaymentStatusRecord) (*domain.Order, error) {

	history, err := json.Marshal(record.StatusHistory)
	if err != nil {
		return nil, err
	}

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		orderSt := r.db.QueryBuilder.Insert("orders").
			Columns("order_id", "amount_fiat", "asset_network", "asset_symbol",
				"merchant_address", "description", "status",
				"created_at", "updated_at", "expires_at").
			Values(order.OrderID, order.AmountFiat, order.Asset.Network, order.Asset.Symbol,
				order.MerchantAddress, order.Description, order.Status,
				order.CreatedAt, order.UpdatedAt, order.ExpiresAt)

		sql, args, err := orderSt.ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		statusSt := r.db.QueryBuilder.Insert("payment_status").
			Columns("order_id", "status", "history").
			Values(record.OrderID, record.Status, string(history))

		sql, args, err = statusSt.ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}

	return order, nil
}

func (r *Repository) ReadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns).
		From("orders").
		Where(sq.Eq{"order_id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	return order, nil
}

func (r *Repository) ReadPaymentStatus(ctx context.Context, orderID string) (*domain.PaymentStatusRecord, error) {
	statement := r.db.QueryBuilder.
		Select("order_id", "status", "transaction_hash", "sender_address",
			"amount_received", "network_id", "asset_symbol",
			"provider_transfer_id", "history", "error_code", "error_message").
		From("payment_status").
		Where(sq.Eq{"order_id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	record := domain.PaymentStatusRecord{}
	var history []byte

	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&record.OrderID,
		&record.Status,
		&record.TransactionHash,
		&record.SenderAddress,
		&record.AmountReceived,
		&record.NetworkID,
		&record.AssetSymbol,
		&record.ProviderTransferID,
		&history,
		&record.ErrorCode,
		&record.ErrorMessage,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(history, &record.StatusHistory); err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *Repository) ListOpenOrders(ctx context.Context, merchantAddress string) ([]*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns).
		From("orders").
		Where(sq.Eq{"merchant_address": merchantAddress}).
		Where(sq.Eq{"status": domain.OpenOrderStatuses}).
		OrderBy("created_at")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, order)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return list, nil
}

// UpdateOrderStatus is the linearization point for every status transition.
// The order row is updated only while its status is still in expectedFrom;
// zero rows affected means another channel moved the order first and the
// caller's transition must be dropped. The payment status mirror and its
// history append ride in the same transaction.
func (r *Repository) UpdateOrderStatus(ctx context.Context, orderID string,
	expectedFrom []domain.OrderStatus, to domain.OrderStatus,
	update *domain.StatusUpdate) (*domain.Order, error) {

	now := time.Now().UTC()

	entry, err := json.Marshal([]domain.StatusHistoryEntry{{
		Status:    to,
		Timestamp: now,
		Message:   update.Message,
	}})
	if err != nil {
		return nil, err
	}

	var updated *domain.Order
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		orderSt := r.db.QueryBuilder.Update("orders").
			Set("status", to).
			Set("updated_at", now).
			Where(sq.Eq{"order_id": orderID}).
			Where(sq.Eq{"status": expectedFrom}).
			Suffix("RETURNING " + orderColumns)

		sql, args, err := orderSt.ToSql()
		if err != nil {
			return err
		}

		updated, err = scanOrder(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			if err == pgx.ErrNoRows {
				return domain.ErrStatusConflict
			}
			return err
		}

		statusSt := r.db.QueryBuilder.Update("payment_status").
			Set("status", to).
			Set("history", sq.Expr("history || ?::jsonb", string(entry))).
			Where(sq.Eq{"order_id": orderID})

		if update.ProviderTransferID != "" {
			statusSt = statusSt.Set("provider_transfer_id", update.ProviderTransferID)
		}
		if update.Details != nil {
			statusSt = statusSt.
				Set("transaction_hash", update.Details.TransactionHash).
				Set("sender_address", update.Details.SenderAddress).
				Set("amount_received", update.Details.AmountReceived).
				Set("network_id", update.Details.NetworkID).
				Set("asset_symbol", update.Details.AssetSymbol)
		}
		if update.ErrorCode != "" {
			statusSt = statusSt.
				Set("error_code", update.ErrorCode).
				Set("error_message", update.ErrorMessage)
		}

		sql, args, err = statusSt.ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := domain.Order{}
	err := row.Scan(
		&order.OrderID,
		&order.AmountFiat,
		&order.Asset.Network,
		&order.Asset.Symbol,
		&order.MerchantAddress,
		&order.Description,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
