package books

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/uptrace/bun"
)

type ListTitlesOptions struct {
	Limit  *int
	Offset *int
	Search *string
}

type ListCopiesOptions struct {
	Limit  *int
	Offset *int
	Search *string
}

type UpdateTitleOptions struct {
	Columns []string
}

type UpdateCopyOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateTitle(ctx context.Context, title *models.BookTitle) error {
	now := time.Now()
	if title.CreatedAt.IsZero() {
		title.CreatedAt = now
	}
	title.UpdatedAt = title.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(title).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveTitle(ctx context.Context, id int) (*models.BookTitle, error) {
	title := &models.BookTitle{}

	err := svc.db.
		NewSelect().
		Model(title).
		Relation("Publisher").
		Where("bt.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book title")
		}
		return nil, errors.WithStack(err)
	}

	return title, nil
}

func (svc *Service) ListTitles(ctx context.Context, opts ListTitlesOptions) ([]*models.BookTitle, error) {
	var titles []*models.BookTitle

	q := svc.db.
		NewSelect().
		Model(&titles).
		Relation("Publisher").
		Order("bt.id DESC")

	if opts.Search != nil && *opts.Search != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*opts.Search)) + "%"
		q = q.Where("LOWER(bt.code) LIKE ? OR LOWER(bt.title) LIKE ? OR LOWER(bt.author) LIKE ?", search, search, search)
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

	return titles, nil
}

func (svc *Service) UpdateTitle(ctx context.Context, title *models.BookTitle, opts UpdateTitleOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	title.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(title).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Book title")
		}
		return errors.WithStack(err)
	}
	return nil
}

// DeleteTitle removes a title. Titles that still own copies can't be deleted;
// the copies track loan history.
func (svc *Service) DeleteTitle(ctx context.Context, titleID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.BookCopy)(nil)).
		Where("title_id = ?", titleID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.BusinessRuleViolation("Book title still has copies and can't be deleted.")
	}

	_, err = svc.db.NewDelete().
		Model((*models.BookTitle)(nil)).
		Where("id = ?", titleID).
		Exec(ctx)
	return errors.WithStack(err)
}

// CreateCopy inserts a copy. A missing barcode is generated from the title
// code plus a short random suffix, replacing the database trigger the system
// previously relied on.
func (svc *Service) CreateCopy(ctx context.Context, copy *models.BookCopy) error {
	now := time.Now()
	if copy.CreatedAt.IsZero() {
		copy.CreatedAt = now
	}
	copy.UpdatedAt = copy.CreatedAt
	if copy.Status == "" {
		copy.Status = models.CopyStatusAvailable
	}

	if copy.Barcode == "" {
		title, err := svc.RetrieveTitle(ctx, copy.TitleID)
		if err != nil {
			return err
		}
		copy.Barcode = generateBarcode(title.Code)
	}

	_, err := svc.db.
		NewInsert().
		Model(copy).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func generateBarcode(titleCode string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return titleCode + "-" + suffix
}

func (svc *Service) RetrieveCopy(ctx context.Context, id int) (*models.BookCopy, error) {
	copy := &models.BookCopy{}

	err := svc.db.
		NewSelect().
		Model(copy).
		Relation("Title").
		Where("bc.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book copy")
		}
		return nil, errors.WithStack(err)
	}

	return copy, nil
}

func (svc *Service) ListCopies(ctx context.Context, opts ListCopiesOptions) ([]*models.BookCopy, error) {
	var copies []*models.BookCopy

	q := svc.db.
		NewSelect().
		Model(&copies).
		Relation("Title").
		Order("bc.id DESC")

	if opts.Search != nil && *opts.Search != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*opts.Search)) + "%"
		q = q.Where("LOWER(bc.barcode) LIKE ? OR LOWER(title.title) LIKE ? OR LOWER(title.author) LIKE ?", search, search, search)
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

	return copies, nil
}

func (svc *Service) UpdateCopy(ctx context.Context, copy *models.BookCopy, opts UpdateCopyOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	copy.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(copy).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Book copy")
		}
		return errors.WithStack(err)
	}
	return nil
}

// DeleteCopy removes a copy that has never been loaned out. Copies with loan
// history stay so old receipts keep resolving.
func (svc *Service) DeleteCopy(ctx context.Context, copyID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.BorrowItem)(nil)).
		Where("copy_id = ?", copyID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.BusinessRuleViolation("Book copy has loan history and can't be deleted.")
	}

	_, err = svc.db.NewDelete().
		Model((*models.BookCopy)(nil)).
		Where("id = ?", copyID).
		Exec(ctx)
	return errors.WithStack(err)
}
