package damagetypes

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/uptrace/bun"
)

type ListDamageTypesOptions struct {
	Limit  *int
	Offset *int
	Search *string
}

type UpdateDamageTypeOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateDamageType(ctx context.Context, damageType *models.DamageType) error {
	exists, err := svc.db.
		NewSelect().
		Model((*models.DamageType)(nil)).
		Where("name = ? COLLATE NOCASE", damageType.Name).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.ValidationError("A damage type with this name already exists.")
	}

	now := time.Now()
	if damageType.CreatedAt.IsZero() {
		damageType.CreatedAt = now
	}
	damageType.UpdatedAt = damageType.CreatedAt

	_, err = svc.db.
		NewInsert().
		Model(damageType).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveDamageType(ctx context.Context, id int) (*models.DamageType, error) {
	damageType := &models.DamageType{}

	err := svc.db.
		NewSelect().
		Model(damageType).
		Where("dt.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Damage type")
		}
		return nil, errors.WithStack(err)
	}

	return damageType, nil
}

func (svc *Service) ListDamageTypes(ctx context.Context, opts ListDamageTypesOptions) ([]*models.DamageType, error) {
	var damageTypes []*models.DamageType

	q := svc.db.
		NewSelect().
		Model(&damageTypes).
		Order("dt.name ASC")

	if opts.Search != nil && *opts.Search != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*opts.Search)) + "%"
		q = q.Where("LOWER(dt.name) LIKE ?", search)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return damageTypes, nil
}

func (svc *Service) UpdateDamageType(ctx context.Context, damageType *models.DamageType, opts UpdateDamageTypeOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	exists, err := svc.db.
		NewSelect().
		Model((*models.DamageType)(nil)).
		Where("name = ? COLLATE NOCASE", damageType.Name).
		Where("id != ?", damageType.ID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.ValidationError("A damage type with this name already exists.")
	}

	damageType.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err = svc.db.
		NewUpdate().
		Model(damageType).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Damage type")
		}
		return errors.WithStack(err)
	}
	return nil
}

// DeleteDamageType refuses to delete types still referenced by recorded damages.
func (svc *Service) DeleteDamageType(ctx context.Context, damageTypeID int) error {
	used, err := svc.db.
		NewSelect().
		Model((*models.BorrowItemDamage)(nil)).
		Where("damage_type_id = ?", damageTypeID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if used {
		return errcodes.BusinessRuleViolation("Damage type is referenced by recorded damages and can't be deleted.")
	}

	_, err = svc.db.
		NewDelete().
		Model((*models.DamageType)(nil)).
		Where("id = ?", damageTypeID).
		Exec(ctx)
	return errors.WithStack(err)
}
