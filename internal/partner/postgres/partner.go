package postgres

import (
	"context"

	"github.com/codeup/novabook/internal"
	loanDatamodel "github.com/codeup/novabook/internal/core/datamodel/loan"
	partnerDatamodel "github.com/codeup/novabook/internal/core/datamodel/partner"
	"github.com/codeup/novabook/internal/core/dberr"
	"github.com/codeup/novabook/internal/partner"
	"gorm.io/gorm"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) partner.RepositoryAPI {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(ctx context.Context, p *partnerDatamodel.Partner) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return dberr.Translate(err, dberr.EntityPartner, p.ID)
	}
	return nil
}

func (r *PartnerRepository) GetByID(ctx context.Context, id int64) (*partnerDatamodel.Partner, error) {
	var p partnerDatamodel.Partner
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityPartner, id)
	}
	return &p, nil
}

func (r *PartnerRepository) GetByEmail(ctx context.Context, email string) (*partnerDatamodel.Partner, error) {
	var p partnerDatamodel.Partner
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityPartner, 0)
	}
	return &p, nil
}

func (r *PartnerRepository) List(ctx context.Context, activeOnly bool) ([]*partnerDatamodel.Partner, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var partners []*partnerDatamodel.Partner
	if err := q.Order("name ASC").Order("id ASC").Find(&partners).Error; err != nil {
		return nil, dberr.Translate(err, dberr.EntityPartner, 0)
	}
	return partners, nil
}

func (r *PartnerRepository) Update(ctx context.Context, p *partnerDatamodel.Partner) error {
	res := r.db.WithContext(ctx).Model(&partnerDatamodel.Partner{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":    p.Name,
			"address": p.Address,
			"phone":   p.Phone,
			"email":   p.Email,
		})
	if res.Error != nil {
		return dberr.Translate(res.Error, dberr.EntityPartner, p.ID)
	}
	if res.RowsAffected == 0 {
		return dberr.NotFound(dberr.EntityPartner, p.ID)
	}
	return nil
}

func (r *PartnerRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res := r.db.WithContext(ctx).Model(&partnerDatamodel.Partner{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return dberr.Translate(res.Error, dberr.EntityPartner, id)
	}
	if res.RowsAffected == 0 {
		return dberr.NotFound(dberr.EntityPartner, id)
	}
	return nil
}

// Delete refuses partners referenced by any loan, open or returned, so the
// loan history stays intact.
func (r *PartnerRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loans int64
		if err := tx.Model(&loanDatamodel.Loan{}).Where("partner_id = ?", id).Count(&loans).Error; err != nil {
			return dberr.Translate(err, dberr.EntityPartner, id)
		}
		if loans > 0 {
			return internal.ErrPartnerHasLoans.ForEntity(dberr.EntityPartner, id)
		}

		res := tx.Delete(&partnerDatamodel.Partner{}, id)
		if res.Error != nil {
			return dberr.Translate(res.Error, dberr.EntityPartner, id)
		}
		if res.RowsAffected == 0 {
			return dberr.NotFound(dberr.EntityPartner, id)
		}
		return nil
	})
}
