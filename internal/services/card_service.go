package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"pennywise/internal/events"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// cardService handles card records.
type cardService struct {
	db      *gorm.DB
	journal *journal
}

// NewCardService creates a new CardServicer.
func NewCardService(db *gorm.DB, changes ChangeServicer, broker *events.Broker) CardServicer {
	return &cardService{db: db, journal: &journal{db: db, changes: changes, broker: broker}}
}

func (s *cardService) CreateCard(input CardInput) (*models.Card, error) {
	name := strings.TrimSpace(input.Name)
	number := strings.TrimSpace(input.Number)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card name is required")
	}
	if number == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card number is required")
	}
	if err := validateAppearance(input.Color, input.Icon); err != nil {
		return nil, err
	}

	card := &models.Card{Name: name, Number: number, Color: input.Color, Icon: input.Icon}
	err := s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		if err := tx.Create(card).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		// Card numbers stay out of the journal.
		return cs.add(models.TableCards, models.ChangeOpCreate, card.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *cardService) ListCards(page pagination.PageRequest) (*pagination.PageResponse[models.Card], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Card{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	var cards []models.Card
	if err := base.Scopes(pagination.Paginate(page)).Order("id ASC").Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	result := pagination.NewPageResponse(cards, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *cardService) GetCard(cardID uint) (*models.Card, error) {
	return findCard(s.db, cardID)
}

func findCard(db *gorm.DB, cardID uint) (*models.Card, error) {
	var card models.Card
	if err := db.First(&card, cardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &card, nil
}

func (s *cardService) UpdateCard(cardID uint, update CardUpdate) (*models.Card, error) {
	updates := make(map[string]interface{})
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card name is required")
		}
		updates["name"] = name
	}
	if update.Number != nil {
		number := strings.TrimSpace(*update.Number)
		if number == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card number is required")
		}
		updates["number"] = number
	}
	if update.Color != nil {
		if !models.ValidColor(*update.Color) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "color must be a hex color like #1a2b3c")
		}
		updates["color"] = *update.Color
	}
	if update.Icon != nil {
		if !update.Icon.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown icon")
		}
		updates["icon"] = *update.Icon
	}

	var card *models.Card
	err := s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		var err error
		card, err = findCard(tx, cardID)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(card).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		if err := tx.First(card, card.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return cs.add(models.TableCards, models.ChangeOpUpdate, card.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *cardService) DeleteCard(cardID uint) error {
	return s.journal.write(func(tx *gorm.DB, cs *changeSet) error {
		card, err := findCard(tx, cardID)
		if err != nil {
			return err
		}
		if err := tx.Delete(card).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return cs.add(models.TableCards, models.ChangeOpDelete, card.ID, nil)
	})
}
