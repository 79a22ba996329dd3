package proposal

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lucasbessegato/TrokaiBackend/internal/apperr"
	"github.com/lucasbessegato/TrokaiBackend/internal/models"
	"github.com/lucasbessegato/TrokaiBackend/internal/notify"
)

const (
	TabReceived = "recebidas"
	TabSent     = "enviadas"
)

type Service struct {
	DB       *gorm.DB
	Notifier *notify.Dispatcher
}

type CreateRequest struct {
	ProductOfferedID   uint   `json:"product_offered_id"`
	ProductRequestedID uint   `json:"product_requested_id"`
	ToUserID           uint   `json:"to_user_id"`
	Message            string `json:"message"`
}

func preloadAll(db *gorm.DB) *gorm.DB {
	return db.
		Preload("FromUser").
		Preload("ToUser").
		Preload("ProductOffered").
		Preload("ProductOffered.Category").
		Preload("ProductRequested").
		Preload("ProductRequested.Category")
}

// Create validates both product references, hardens the ownership binding
// (the actor must own the offered product, to_user must own the requested
// one) and persists the pending proposal together with its new_proposal
// notification in one transaction.
func (s *Service) Create(ctx context.Context, actorID uint, req CreateRequest) (*models.Proposal, error) {
	var offered models.Product
	if err := s.DB.WithContext(ctx).First(&offered, req.ProductOfferedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: offered product %d does not exist", apperr.ErrValidation, req.ProductOfferedID)
		}
		return nil, err
	}

	var requested models.Product
	if err := s.DB.WithContext(ctx).First(&requested, req.ProductRequestedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: requested product %d does not exist", apperr.ErrValidation, req.ProductRequestedID)
		}
		return nil, err
	}

	if offered.UserID != actorID {
		return nil, fmt.Errorf("%w: offered product does not belong to sender", apperr.ErrValidation)
	}
	if requested.UserID != req.ToUserID {
		return nil, fmt.Errorf("%w: to_user does not own the requested product", apperr.ErrValidation)
	}
	if req.ToUserID == actorID {
		return nil, fmt.Errorf("%w: cannot propose an exchange to yourself", apperr.ErrValidation)
	}

	p := models.Proposal{
		ProductOfferedID:   req.ProductOfferedID,
		ProductRequestedID: req.ProductRequestedID,
		FromUserID:         actorID,
		ToUserID:           req.ToUserID,
		Message:            req.Message,
		Status:             models.ProposalPending,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		if err := tx.First(&p.FromUser, p.FromUserID).Error; err != nil {
			return err
		}
		n := notify.DeriveNew(&p)
		return s.Notifier.Dispatch(ctx, tx, &n)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, p.ID)
}

// Get resolves a proposal only if the actor is one of its two parties.
// Anything else surfaces as not-found, never forbidden.
func (s *Service) Get(ctx context.Context, actorID, id uint) (*models.Proposal, error) {
	var p models.Proposal
	err := preloadAll(s.DB.WithContext(ctx)).
		Where("id = ? AND (from_user_id = ? OR to_user_id = ?)", id, actorID, actorID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: proposal %d", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

// List returns the actor's proposals for the requested tab, newest first.
// An unrecognized tab yields the empty set, not everything.
func (s *Service) List(ctx context.Context, actorID uint, tab string) ([]models.Proposal, error) {
	q := preloadAll(s.DB.WithContext(ctx)).Order("id DESC")

	switch tab {
	case TabReceived:
		q = q.Where("to_user_id = ?", actorID)
	case TabSent:
		q = q.Where("from_user_id = ?", actorID)
	default:
		return []models.Proposal{}, nil
	}

	items := []models.Proposal{}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus moves the proposal along the state machine. The persisted
// update is guarded on the previously read status, so a concurrent writer
// that got there first turns this call into ErrConflict instead of a
// double notification.
func (s *Service) UpdateStatus(ctx context.Context, actorID, id uint, newStatus models.ProposalStatus) (*models.Proposal, error) {
	if !ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, newStatus)
	}

	p, err := s.Get(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if p.Status == newStatus {
		return p, nil
	}

	if !CanTransition(p.Status, newStatus) {
		return nil, fmt.Errorf("%w: cannot transition proposal from %s to %s", apperr.ErrValidation, p.Status, newStatus)
	}

	oldStatus := p.Status
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", p.ID, oldStatus).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: proposal %d was updated concurrently", apperr.ErrConflict, p.ID)
		}

		if err := s.applyProductFollowThrough(tx, p, newStatus); err != nil {
			return err
		}

		n := notify.Derive(oldStatus, newStatus, p)
		return s.Notifier.Dispatch(ctx, tx, &n)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, p.ID)
}

// applyProductFollowThrough flips both involved products when the exchange
// advances: accepted reserves them, completed marks them exchanged.
func (s *Service) applyProductFollowThrough(tx *gorm.DB, p *models.Proposal, newStatus models.ProposalStatus) error {
	var productStatus models.ProductStatus
	switch newStatus {
	case models.ProposalAccepted:
		productStatus = models.ProductReserved
	case models.ProposalCompleted:
		productStatus = models.ProductExchanged
	default:
		return nil
	}

	return tx.Model(&models.Product{}).
		Where("id IN ?", []uint{p.ProductOfferedID, p.ProductRequestedID}).
		Update("status", productStatus).Error
}

func (s *Service) reload(ctx context.Context, id uint) (*models.Proposal, error) {
	var p models.Proposal
	if err := preloadAll(s.DB.WithContext(ctx)).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
