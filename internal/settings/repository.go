package settings

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/khanghh/clubhub/model"
	"gorm.io/gorm"
)

type Snapshot struct {
	CommunicationLinks []model.CommunicationLink `json:"communicationLinks"`
	MediaConfig        *model.MediaConfig        `json:"mediaConfig"`
	SponsorshipPages   []model.SponsorshipPage   `json:"sponsorshipPages"`
}

type Repository interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	PageExists(ctx context.Context, pageID uint) (bool, error)
	Create(ctx context.Context, record interface{}) error
	Update(ctx context.Context, record interface{}, id uint, columns map[string]interface{}) error
	Delete(ctx context.Context, record interface{}, id uint) error
}

type repository struct {
	db *gorm.DB
}

func translateError(err error) error {
	var mysqlErr *mysql.MySQLError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrInvalidReference
	case errors.As(err, &mysqlErr) && mysqlErr.Number == 1062:
		return ErrConflict
	case errors.As(err, &mysqlErr) && (mysqlErr.Number == 1452 || mysqlErr.Number == 1451):
		return ErrInvalidReference
	}
	return err
}

func (r *repository) Snapshot(ctx context.Context) (*Snapshot, error) {
	db := r.db.WithContext(ctx)
	snap := Snapshot{
		CommunicationLinks: []model.CommunicationLink{},
		SponsorshipPages:   []model.SponsorshipPage{},
	}
	if err := db.Order("platform ASC").Find(&snap.CommunicationLinks).Error; err != nil {
		return nil, err
	}

	var media []model.MediaConfig
	if err := db.Order("updated_at DESC").Order("id DESC").Limit(1).Find(&media).Error; err != nil {
		return nil, err
	}
	if len(media) > 0 {
		snap.MediaConfig = &media[0]
	}

	err := db.Preload("Sponsors", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("name ASC")
	}).Order("updated_at DESC").Order("id DESC").Find(&snap.SponsorshipPages).Error
	if err != nil {
		return nil, err
	}
	for i := range snap.SponsorshipPages {
		if snap.SponsorshipPages[i].Sponsors == nil {
			snap.SponsorshipPages[i].Sponsors = []model.Sponsor{}
		}
	}
	return &snap, nil
}

func (r *repository) PageExists(ctx context.Context, pageID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SponsorshipPage{}).Where("id = ?", pageID).Count(&count).Error
	return count > 0, err
}

func (r *repository) Create(ctx context.Context, record interface{}) error {
	return translateError(r.db.WithContext(ctx).Create(record).Error)
}

// Update applies columns to the row with id and reloads it into record.
func (r *repository) Update(ctx context.Context, record interface{}, id uint, columns map[string]interface{}) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(record, id).Error; err != nil {
			return err
		}
		if err := tx.Model(record).Updates(columns).Error; err != nil {
			return err
		}
		if page, ok := record.(*model.SponsorshipPage); ok {
			return tx.Preload("Sponsors", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("name ASC")
			}).First(page, id).Error
		}
		return tx.First(record, id).Error
	})
	return translateError(err)
}

// Delete removes the row with id. Deleting a sponsorship page also removes its
// sponsors.
func (r *repository) Delete(ctx context.Context, record interface{}, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, ok := record.(*model.SponsorshipPage); ok {
			if err := tx.Where("sponsorship_page_id = ?", id).Delete(&model.Sponsor{}).Error; err != nil {
				return err
			}
		}
		ret := tx.Delete(record, id)
		if ret.Error != nil {
			return ret.Error
		}
		if ret.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translateError(err)
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}
