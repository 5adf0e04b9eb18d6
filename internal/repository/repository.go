package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coupon-service/internal/model"
	"coupon-service/internal/service"
)

const uniqueViolation = "23505"

// Repository is the gorm implementation of service.Repository
type Repository struct {
	db *gorm.DB
}

var _ service.Repository = (*Repository)(nil)

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// translate maps driver errors onto the storage errors of the model package
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &model.DuplicateError{Constraint: pgErr.ConstraintName, Err: err}
	}
	return err
}

// validID reports whether id can be compared against a uuid column.
// Anything else can never match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx service.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Stores

func (r *Repository) FindStoreByUser(ctx context.Context, userID string) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&store).Error; err != nil {
		return nil, translate(err)
	}
	return &store, nil
}

func (r *Repository) FindStoreByID(ctx context.Context, id string) (*model.Store, error) {
	if !validID(id) {
		return nil, model.ErrNotFound
	}
	var store model.Store
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&store).Error; err != nil {
		return nil, translate(err)
	}
	return &store, nil
}

// UpsertStore inserts store or, when its user already has one, overwrites
// the existing row. store is reloaded so it carries the persisted id.
func (r *Repository) UpsertStore(ctx context.Context, store *model.Store) error {
	db := r.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cnpj", "city", "state", "responsible_name", "responsible_phone",
			"company_name", "photo", "updated_at",
		}),
	}).Create(store).Error
	if err != nil {
		return translate(err)
	}

	var saved model.Store
	if err := db.Where("user_id = ?", store.UserID).Take(&saved).Error; err != nil {
		return translate(err)
	}
	*store = saved
	return nil
}

func (r *Repository) DeleteStoreByUser(ctx context.Context, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Store{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Campaigns

func (r *Repository) ListCampaignsByUser(ctx context.Context, userID string) ([]model.Campaign, error) {
	campaigns := []model.Campaign{}
	err := r.db.WithContext(ctx).
		Preload("Store").
		Joins("JOIN stores ON stores.id = campaigns.store_id").
		Where("stores.user_id = ?", userID).
		Order("campaigns.created_at DESC").
		Find(&campaigns).Error
	if err != nil {
		return nil, translate(err)
	}
	return campaigns, nil
}

func (r *Repository) ListVisibleCampaigns(ctx context.Context, storeID string) ([]model.Campaign, error) {
	campaigns := []model.Campaign{}
	if !validID(storeID) {
		return campaigns, nil
	}
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND visible = ?", storeID, true).
		Order("created_at DESC").
		Find(&campaigns).Error
	if err != nil {
		return nil, translate(err)
	}
	return campaigns, nil
}

func (r *Repository) CampaignCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Campaign{}).Where("code = ?", code).Count(&n).Error
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (r *Repository) CreateCampaign(ctx context.Context, campaign *model.Campaign) error {
	return translate(r.db.WithContext(ctx).Create(campaign).Error)
}

func (r *Repository) FindOwnedCampaign(ctx context.Context, id, userID string, forUpdate bool) (*model.Campaign, error) {
	if !validID(id) {
		return nil, model.ErrNotFound
	}

	q := r.db.WithContext(ctx).
		Joins("JOIN stores ON stores.id = campaigns.store_id").
		Where("campaigns.id = ? AND stores.user_id = ?", id, userID)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "campaigns"}})
	}

	var campaign model.Campaign
	if err := q.Take(&campaign).Error; err != nil {
		return nil, translate(err)
	}
	return &campaign, nil
}

func (r *Repository) UpdateCampaign(ctx context.Context, campaign *model.Campaign, columns []string) error {
	selected := append(append([]string{}, columns...), "updated_at")
	return translate(r.db.WithContext(ctx).Model(campaign).Select(selected).Updates(campaign).Error)
}

func (r *Repository) DeleteCampaign(ctx context.Context, id string) error {
	return translate(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Campaign{}).Error)
}

// Individual coupons

func (r *Repository) FindIndividualCoupon(ctx context.Context, id string) (*model.IndividualCoupon, error) {
	if !validID(id) {
		return nil, model.ErrNotFound
	}
	var coupon model.IndividualCoupon
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&coupon).Error; err != nil {
		return nil, translate(err)
	}
	return &coupon, nil
}

func (r *Repository) ListIndividualCoupons(ctx context.Context, campaignID string) ([]model.IndividualCoupon, error) {
	coupons := []model.IndividualCoupon{}
	err := r.db.WithContext(ctx).
		Preload("Campaign").
		Where("campaign_id = ?", campaignID).
		Order("created_at ASC").
		Find(&coupons).Error
	if err != nil {
		return nil, translate(err)
	}
	return coupons, nil
}

func (r *Repository) CountIndividualCoupons(ctx context.Context, campaignID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.IndividualCoupon{}).Where("campaign_id = ?", campaignID).Count(&n).Error
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (r *Repository) ExistingIndividualCodes(ctx context.Context, codes []string) ([]string, error) {
	var taken []string
	if len(codes) == 0 {
		return taken, nil
	}
	err := r.db.WithContext(ctx).Model(&model.IndividualCoupon{}).Where("code IN ?", codes).Pluck("code", &taken).Error
	if err != nil {
		return nil, translate(err)
	}
	return taken, nil
}

// CreateIndividualCoupons inserts coupons in batches. Creation times are
// spread by a microsecond each so listing keeps the insertion order.
func (r *Repository) CreateIndividualCoupons(ctx context.Context, coupons []model.IndividualCoupon) error {
	if len(coupons) == 0 {
		return nil
	}
	now := time.Now()
	for i := range coupons {
		if coupons[i].CreatedAt.IsZero() {
			coupons[i].CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
			coupons[i].UpdatedAt = coupons[i].CreatedAt
		}
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(coupons, 500).Error)
}

func identifierColumn(field service.Identifier) string {
	switch field {
	case service.IdentifierPhone:
		return "phone"
	case service.IdentifierCPF:
		return "cpf"
	default:
		return "email"
	}
}

func (r *Repository) IdentifierAssigned(ctx context.Context, campaignID string, field service.Identifier, value string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.IndividualCoupon{}).
		Where("campaign_id = ? AND assigned_at IS NOT NULL", campaignID).
		Where(clause.Eq{Column: clause.Column{Name: identifierColumn(field)}, Value: value}).
		Count(&n).Error
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

// MarkAssigned is a conditional update: it only touches the row while
// assigned_at is still NULL, so of two concurrent assignments one wins.
func (r *Repository) MarkAssigned(ctx context.Context, id string, a service.Assignment) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.IndividualCoupon{}).
		Where("id = ? AND assigned_at IS NULL", id).
		Updates(map[string]interface{}{
			"phone":       a.Phone,
			"cpf":         a.CPF,
			"email":       a.Email,
			"assigned_at": a.AssignedAt,
			"status":      model.IndividualStatusAssigned,
		})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}
