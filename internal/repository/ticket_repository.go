package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-dashboard/internal/domain"
)

// ErrNotConfigured is returned when no database pool is available.
var ErrNotConfigured = errors.New("database not configured")

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// TicketFilter captures dashboard search parameters.
type TicketFilter struct {
	Statuses   []string
	Priorities []int
	OpenedFrom *time.Time
	OpenedTo   *time.Time
	// OnlyOpen excludes tickets already concluded.
	OnlyOpen bool
	// Limit <= 0 uses the default page size; Unbounded skips LIMIT entirely.
	Limit     int
	Offset    int
	Unbounded bool
}

// TicketRepository reads chamados.
type TicketRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, titulo, cliente, data_abertura, hora_abertura, prioridade, status,
               data_atendimento, data_conclusao, criado_em`

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	if r.pool == nil {
		return nil, ErrNotConfigured
	}
	query := `SELECT ` + ticketColumns + ` FROM chamados WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	if r.pool == nil {
		return nil, ErrNotConfigured
	}
	query, args := buildTicketQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func buildTicketQuery(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, strings.ToLower(status))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("LOWER(status) IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("prioridade IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.OpenedFrom != nil {
		args = append(args, *filter.OpenedFrom)
		clauses = append(clauses, fmt.Sprintf("data_abertura >= $%d", len(args)))
	}
	if filter.OpenedTo != nil {
		args = append(args, *filter.OpenedTo)
		clauses = append(clauses, fmt.Sprintf("data_abertura <= $%d", len(args)))
	}
	if filter.OnlyOpen {
		clauses = append(clauses, "data_conclusao IS NULL")
	}

	query := fmt.Sprintf(`SELECT %s FROM chamados WHERE %s ORDER BY data_abertura DESC, hora_abertura DESC, id DESC`,
		ticketColumns, strings.Join(clauses, " AND "))

	if filter.Unbounded {
		return query, args
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", query, limit, offset), args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Client,
		&ticket.OpenedOn,
		&ticket.OpenedAtTime,
		&ticket.Priority,
		&ticket.Status,
		&ticket.AttendedAt,
		&ticket.ConcludedAt,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
