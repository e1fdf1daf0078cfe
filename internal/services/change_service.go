package services

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"pennywise/internal/events"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
	"pennywise/internal/models"
)

// maxChangesPage caps a single ListSince call.
const maxChangesPage = 1000

// changeService handles the change journal.
type changeService struct {
	db *gorm.DB
}

// NewChangeService creates a new ChangeServicer.
func NewChangeService(db *gorm.DB) ChangeServicer {
	return &changeService{db: db}
}

// Record appends a journal row using tx, so the entry commits or rolls back
// together with the change it describes.
func (s *changeService) Record(tx *gorm.DB, table string, op models.ChangeOp, recordID uint, payload any) (*models.ChangeRecord, error) {
	var payloadJSON string
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Get().Errorw("failed to marshal change payload", "error", err, "table", table, "op", op)
			payloadJSON = "{}"
		} else {
			payloadJSON = string(data)
		}
	}

	entry := &models.ChangeRecord{
		Table:    table,
		Op:       op,
		RecordID: recordID,
		Payload:  payloadJSON,
	}
	if err := tx.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create change entry",
			"error", err,
			"table", table,
			"op", op,
			"record_id", recordID,
		)
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return entry, nil
}

// ListSince returns journal rows with Seq greater than seq, oldest first.
func (s *changeService) ListSince(seq uint, limit int) ([]models.ChangeRecord, error) {
	if limit <= 0 || limit > maxChangesPage {
		limit = maxChangesPage
	}
	var records []models.ChangeRecord
	if err := s.db.Where("seq > ?", seq).Order("seq ASC").Limit(limit).Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return records, nil
}

// journal runs multi-row writes in one DB transaction, records what they
// changed and publishes the changes once the transaction has committed.
type journal struct {
	db      *gorm.DB
	changes ChangeServicer
	broker  *events.Broker
}

// changeSet collects the journal rows written by one transaction.
type changeSet struct {
	tx      *gorm.DB
	changes ChangeServicer
	records []models.ChangeRecord
}

func (c *changeSet) add(table string, op models.ChangeOp, recordID uint, payload any) error {
	rec, err := c.changes.Record(c.tx, table, op, recordID, payload)
	if err != nil {
		return err
	}
	c.records = append(c.records, *rec)
	return nil
}

// write runs fn in a transaction. Errors that are not already AppErrors are
// reported as storage failures.
func (j *journal) write(fn func(tx *gorm.DB, cs *changeSet) error) error {
	var cs *changeSet
	err := j.db.Transaction(func(tx *gorm.DB) error {
		cs = &changeSet{tx: tx, changes: j.changes}
		return fn(tx, cs)
	})
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return err
	}

	published := make([]events.Change, 0, len(cs.records))
	for _, r := range cs.records {
		published = append(published, events.FromRecord(r))
	}
	j.broker.Publish(published...)
	return nil
}
