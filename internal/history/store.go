// Package history persists graded submissions for history views and the
// scheduled training-data export.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"codetutor/ai/internal/models"
)

// Store wraps evaluation-record persistence.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Save stores one graded submission.
func (s *Store) Save(record *models.EvaluationRecord) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to store evaluation record: %w", err)
	}
	return nil
}

// Recent returns the newest records, newest first.
func (s *Store) Recent(limit int) ([]models.EvaluationRecord, error) {
	var records []models.EvaluationRecord

	query := s.db.Order("graded_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent evaluations: %w", err)
	}
	return records, nil
}

// BySubmission returns all records for one submission, oldest first.
func (s *Store) BySubmission(submissionID string) ([]models.EvaluationRecord, error) {
	var records []models.EvaluationRecord

	if err := s.db.Where("submission_id = ?", submissionID).
		Order("graded_at ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get evaluations for submission %s: %w", submissionID, err)
	}
	return records, nil
}

// Unexported retrieves records that have not been exported yet.
func (s *Store) Unexported(limit int) ([]models.EvaluationRecord, error) {
	var records []models.EvaluationRecord

	query := s.db.Where("exported = ?", false).Order("graded_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get unexported evaluations: %w", err)
	}
	return records, nil
}

// MarkExported marks records as exported.
func (s *Store) MarkExported(recordIDs []uint) error {
	now := time.Now()
	result := s.db.Model(&models.EvaluationRecord{}).
		Where("id IN ?", recordIDs).
		Updates(map[string]interface{}{
			"exported":    true,
			"exported_at": now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark evaluations as exported: %w", result.Error)
	}
	return nil
}

// ExportToJSONL exports LLM-graded records as prompt/response training
// pairs in JSONL format. Heuristic results are skipped: they carry no model
// output worth training on.
func (s *Store) ExportToJSONL(records []models.EvaluationRecord) ([]byte, error) {
	var lines [][]byte

	for _, record := range records {
		if record.Source != models.EvaluationSourceLLM || record.Prompt == "" {
			continue
		}

		dataPoint := models.TrainingDataPoint{
			Contents: []models.TrainingContent{
				{
					Role:  "user",
					Parts: []models.TrainingPart{{Text: record.Prompt}},
				},
				{
					Role:  "model",
					Parts: []models.TrainingPart{{Text: record.Feedback}},
				},
			},
		}

		line, err := json.Marshal(dataPoint)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal training data: %w", err)
		}
		lines = append(lines, line)
	}

	var jsonl []byte
	for i, line := range lines {
		jsonl = append(jsonl, line...)
		if i < len(lines)-1 {
			jsonl = append(jsonl, '\n')
		}
	}
	return jsonl, nil
}

// Stats returns aggregate statistics about stored evaluations.
func (s *Store) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalCount int64
	if err := s.db.Model(&models.EvaluationRecord{}).Count(&totalCount).Error; err != nil {
		return nil, err
	}
	stats["total_count"] = totalCount

	var correctCount int64
	if err := s.db.Model(&models.EvaluationRecord{}).Where("is_correct = ?", true).Count(&correctCount).Error; err != nil {
		return nil, err
	}
	stats["correct_count"] = correctCount

	var llmCount int64
	if err := s.db.Model(&models.EvaluationRecord{}).Where("source = ?", models.EvaluationSourceLLM).Count(&llmCount).Error; err != nil {
		return nil, err
	}
	stats["llm_count"] = llmCount
	stats["fallback_count"] = totalCount - llmCount

	var avgConfidence float64
	row := s.db.Model(&models.EvaluationRecord{}).Select("COALESCE(AVG(confidence_score), 0)").Row()
	if err := row.Scan(&avgConfidence); err != nil {
		return nil, err
	}
	stats["average_confidence"] = avgConfidence

	var unexportedCount int64
	if err := s.db.Model(&models.EvaluationRecord{}).Where("exported = ?", false).Count(&unexportedCount).Error; err != nil {
		return nil, err
	}
	stats["unexported_count"] = unexportedCount

	return stats, nil
}
