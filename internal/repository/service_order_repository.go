package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-dashboard/internal/domain"
)

// ServiceOrderRepository reads ordens_servico.
type ServiceOrderRepository interface {
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.ServiceOrder, error)
}

type serviceOrderRepository struct {
	pool *pgxpool.Pool
}

// NewServiceOrderRepository builds repository.
func NewServiceOrderRepository(pool *pgxpool.Pool) ServiceOrderRepository {
	return &serviceOrderRepository{pool: pool}
}

func (r *serviceOrderRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.ServiceOrder, error) {
	if r.pool == nil {
		return nil, ErrNotConfigured
	}
	const query = `
        SELECT id, chamado_id, tecnico, data, hora_inicio, hora_fim, descricao
        FROM ordens_servico WHERE chamado_id=$1 ORDER BY data ASC, hora_inicio ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceOrder
	for rows.Next() {
		var order domain.ServiceOrder
		if err := rows.Scan(
			&order.ID,
			&order.TicketID,
			&order.Technician,
			&order.Date,
			&order.StartTime,
			&order.EndTime,
			&order.Description,
		); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}
