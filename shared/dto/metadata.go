package dto

import (
	"localguide/shared/constant"
	"localguide/shared/model"
	"localguide/shared/timezone"
)

// Metadata is the audit block embedded in every resource response.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	CreatedBy  string `json:"created_by,omitempty"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func (m *Metadata) FromModel(audit model.Metadata) {
	*m = Metadata{
		CreatedAt:  timezone.Format(audit.CreatedAt, constant.DateFormat),
		UpdatedAt:  timezone.Format(audit.ModifiedAt, constant.DateFormat),
		CreatedBy:  audit.CreatedBy,
		ModifiedBy: audit.ModifiedBy,
	}
}
