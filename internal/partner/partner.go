package partner

import (
	"time"

	partnerDatamodel "github.com/codeup/novabook/internal/core/datamodel/partner"
)

// Partner is a library member who can borrow books.
type Partner struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Active           bool      `json:"active"`
	RegistrationDate time.Time `json:"registration_date"`
}

func (p *Partner) CanBorrow() bool {
	return p.Active
}

func (p *Partner) Activate() {
	p.Active = true
}

func (p *Partner) Deactivate() {
	p.Active = false
}

func NewPartner(dto CreatePartnerDTO) *Partner {
	active := true
	if dto.Active != nil {
		active = *dto.Active
	}
	return &Partner{
		Name:    dto.Name,
		Address: dto.Address,
		Phone:   dto.Phone,
		Email:   dto.Email,
		Active:  active,
	}
}

func ToDataModel(p *Partner) *partnerDatamodel.Partner {
	return &partnerDatamodel.Partner{
		ID:               p.ID,
		Name:             p.Name,
		Address:          p.Address,
		Phone:            p.Phone,
		Email:            p.Email,
		Active:           p.Active,
		RegistrationDate: p.RegistrationDate,
	}
}

func FromDataModel(p *partnerDatamodel.Partner) *Partner {
	return &Partner{
		ID:               p.ID,
		Name:             p.Name,
		Address:          p.Address,
		Phone:            p.Phone,
		Email:            p.Email,
		Active:           p.Active,
		RegistrationDate: p.RegistrationDate,
	}
}

func FromDataModelSlice(partners []*partnerDatamodel.Partner) []*Partner {
	result := make([]*Partner, len(partners))
	for i, p := range partners {
		result[i] = FromDataModel(p)
	}
	return result
}
