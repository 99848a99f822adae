package repository

import (
	"github.com/soracom/connectivity-benchmark/internal/model"
	"gorm.io/gorm"
)

// States a persisted run can be left in besides the benchmark's own.
const StateInterrupted = "interrupted"

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(run *model.Run) error {
	return r.db.Create(run).Error
}

func (r *RunRepository) Update(run *model.Run) error {
	return r.db.Save(run).Error
}

func (r *RunRepository) UpdateState(id, state string) error {
	return r.db.Model(&model.Run{}).Where("id = ?", id).Update("state", state).Error
}

func (r *RunRepository) FindByID(id string) (*model.Run, error) {
	var run model.Run
	err := r.db.First(&run, "id = ?", id).Error
	return &run, err
}

// List returns runs newest first along with the total count.
func (r *RunRepository) List(limit, offset int) ([]model.Run, int64, error) {
	var total int64
	if err := r.db.Model(&model.Run{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var runs []model.Run
	err := r.db.Order("created_at desc").Limit(limit).Offset(offset).Find(&runs).Error
	return runs, total, err
}

func (r *RunRepository) ListByICCID(iccid string) ([]model.Run, error) {
	var runs []model.Run
	err := r.db.Where("iccid = ?", iccid).Order("created_at desc").Find(&runs).Error
	return runs, err
}

// MarkInterrupted flags runs left unfinished by a previous process.
func (r *RunRepository) MarkInterrupted() (int64, error) {
	res := r.db.Model(&model.Run{}).
		Where("state NOT IN ?", []string{"done", "failed", StateInterrupted}).
		Update("state", StateInterrupted)
	return res.RowsAffected, res.Error
}
