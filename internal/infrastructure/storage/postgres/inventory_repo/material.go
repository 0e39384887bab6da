// Package inventory_repo provides the PostgreSQL raw material and purchase repository.
package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/inventory"
	"bizbooks/internal/infrastructure/storage/postgres"
)

var _ inventory.Repository = (*Repo)(nil)

const (
	materialsTable = "raw_materials"
	purchasesTable = "material_purchases"
)

var (
	materialColumns = postgres.ExtractDBColumns[inventory.Material]()
	purchaseColumns = append(
		postgres.Qualify("mp", postgres.ExtractDBColumns[inventory.Purchase]("material_name")),
		"m.name AS material_name",
	)
)

// Repo implements inventory.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates a new inventory repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repo) ListMaterials(ctx context.Context, userID int64, includeInactive bool) ([]inventory.Material, error) {
	qb := r.builder.Select(materialColumns...).
		From(materialsTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("lower(name)", "id")
	if !includeInactive {
		qb = qb.Where(squirrel.Eq{"is_active": true})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	materials := make([]inventory.Material, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &materials, query, args...); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

func (r *Repo) getMaterial(ctx context.Context, userID, id int64, lock bool) (*inventory.Material, error) {
	qb := r.builder.Select(materialColumns...).From(materialsTable).Where(squirrel.Eq{"id": id})
	if lock {
		qb = qb.Suffix("FOR UPDATE")
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m inventory.Material
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &m, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("material", id)
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	if err := postgres.CheckOwner("material", id, m.UserID, userID); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) GetMaterial(ctx context.Context, userID, id int64) (*inventory.Material, error) {
	return r.getMaterial(ctx, userID, id, false)
}

func (r *Repo) GetMaterialForUpdate(ctx context.Context, userID, id int64) (*inventory.Material, error) {
	if r.txm.GetTx(ctx) == nil {
		return nil, fmt.Errorf("GetMaterialForUpdate requires transaction context")
	}
	return r.getMaterial(ctx, userID, id, true)
}

// FindMaterialByName matches exactly, like the unique constraint.
func (r *Repo) FindMaterialByName(ctx context.Context, userID int64, name string) (*inventory.Material, error) {
	query, args, err := r.builder.Select(materialColumns...).
		From(materialsTable).
		Where(squirrel.Eq{"user_id": userID, "name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m inventory.Material
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &m, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("material", name)
		}
		return nil, fmt.Errorf("find material: %w", err)
	}
	return &m, nil
}

func (r *Repo) CreateMaterial(ctx context.Context, m *inventory.Material) error {
	query, args, err := r.builder.Insert(materialsTable).
		SetMap(postgres.StructToMap(m, "id", "created_at")).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("insert material: %w", postgres.MapError(err))
	}
	return nil
}

func (r *Repo) update(ctx context.Context, userID, id int64, set map[string]any) error {
	query, args, err := r.builder.Update(materialsTable).
		SetMap(set).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	q := r.txm.GetQuerier(ctx)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update material: %w", postgres.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return postgres.MissError(ctx, q, materialsTable, "material", id, userID)
	}
	return nil
}

func (r *Repo) UpdateMaterial(ctx context.Context, m *inventory.Material) error {
	return r.update(ctx, m.UserID, m.ID, map[string]any{
		"name":            m.Name,
		"unit_measure":    m.UnitMeasure,
		"alert_threshold": m.AlertThreshold,
		"is_active":       m.IsActive,
	})
}

func (r *Repo) SetMaterialStock(ctx context.Context, userID, id int64, stock types.Quantity, avg types.Money) error {
	return r.update(ctx, userID, id, map[string]any{
		"current_stock": stock,
		"average_cost":  types.RoundCost(avg),
	})
}

func (r *Repo) MaterialsWithPurchases(ctx context.Context, userID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	referenced := make([]int64, 0)
	err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &referenced,
		`SELECT DISTINCT material_id FROM material_purchases
		 WHERE user_id = $1 AND material_id = ANY($2) ORDER BY material_id`,
		userID, ids)
	if err != nil {
		return nil, fmt.Errorf("find referenced materials: %w", err)
	}
	return referenced, nil
}

// DeleteMaterials hard-deletes the given materials; recipe rows cascade.
func (r *Repo) DeleteMaterials(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM raw_materials WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("delete materials: %w", postgres.MapError(err))
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) InsertPurchase(ctx context.Context, p *inventory.Purchase) error {
	query, args, err := r.builder.Insert(purchasesTable).
		SetMap(postgres.StructToMap(p, "id", "material_name")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&p.ID); err != nil {
		return fmt.Errorf("insert purchase: %w", postgres.MapError(err))
	}
	return nil
}

func (r *Repo) purchasesQuery(userID int64, materialID *int64, dr types.DateRange) squirrel.SelectBuilder {
	qb := r.builder.Select(purchaseColumns...).
		From(purchasesTable + " mp").
		Join(materialsTable + " m ON m.id = mp.material_id").
		Where(squirrel.Eq{"mp.user_id": userID}).
		OrderBy("mp.purchase_date DESC", "mp.id DESC")
	if materialID != nil {
		qb = qb.Where(squirrel.Eq{"mp.material_id": *materialID})
	}
	from, until := dr.Bounds()
	if from != nil {
		qb = qb.Where(squirrel.GtOrEq{"mp.purchase_date": *from})
	}
	if until != nil {
		qb = qb.Where(squirrel.Lt{"mp.purchase_date": *until})
	}
	return qb
}

func (r *Repo) ListPurchases(ctx context.Context, userID int64, materialID *int64, dr types.DateRange) ([]inventory.Purchase, error) {
	query, args, err := r.purchasesQuery(userID, materialID, dr).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	purchases := make([]inventory.Purchase, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &purchases, query, args...); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}
