package database

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"focuslog/internal/models"
)

// Repository reads and writes one archived session
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Replace swaps the archived session for segments and summary in a single
// transaction, so a failed write leaves the previous archive intact.
func (r *Repository) Replace(segments []models.Segment, summary []models.SummaryRow) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM segment_records").Error; err != nil {
			return errors.Wrap(err, "failed to clear segments")
		}
		if err := tx.Exec("DELETE FROM summary_records").Error; err != nil {
			return errors.Wrap(err, "failed to clear summary")
		}

		if len(segments) > 0 {
			records := make([]models.SegmentRecord, 0, len(segments))
			for i, seg := range segments {
				records = append(records, models.SegmentRecord{
					Seq:         i,
					WindowTitle: seg.WindowTitle,
					Duration:    seg.Duration,
					Status:      string(seg.Status),
				})
			}
			if err := tx.Create(&records).Error; err != nil {
				return errors.Wrap(err, "failed to insert segments")
			}
		}

		if len(summary) > 0 {
			records := make([]models.SummaryRecord, 0, len(summary))
			for i, row := range summary {
				records = append(records, models.SummaryRecord{
					Rank:         i + 1,
					WindowTitle:  row.WindowTitle,
					TotalSeconds: row.TotalSeconds,
				})
			}
			if err := tx.Create(&records).Error; err != nil {
				return errors.Wrap(err, "failed to insert summary")
			}
		}

		return nil
	})
}

// Segments returns the archived segments in log order
func (r *Repository) Segments() ([]models.Segment, error) {
	var records []models.SegmentRecord
	if err := r.db.Order("seq ASC").Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query segments")
	}

	segments := make([]models.Segment, 0, len(records))
	for _, rec := range records {
		segments = append(segments, models.Segment{
			WindowTitle: rec.WindowTitle,
			Duration:    rec.Duration,
			Status:      models.Status(rec.Status),
		})
	}
	return segments, nil
}

// Summary returns the archived summary rows by rank
func (r *Repository) Summary() ([]models.SummaryRow, error) {
	var records []models.SummaryRecord
	if err := r.db.Order(`"rank" ASC`).Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "failed to query summary")
	}

	rows := make([]models.SummaryRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.SummaryRow{
			WindowTitle:  rec.WindowTitle,
			TotalSeconds: rec.TotalSeconds,
		})
	}
	return rows, nil
}

// Counts returns the number of archived segment and summary rows
func (r *Repository) Counts() (segments, summary int64, err error) {
	if err = r.db.Model(&models.SegmentRecord{}).Count(&segments).Error; err != nil {
		return 0, 0, errors.Wrap(err, "failed to count segments")
	}
	if err = r.db.Model(&models.SummaryRecord{}).Count(&summary).Error; err != nil {
		return 0, 0, errors.Wrap(err, "failed to count summary")
	}
	return segments, summary, nil
}
