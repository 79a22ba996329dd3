package models

import (
	"time"

	"gorm.io/datatypes"
)

type ProductStatus string

const (
	ProductAvailable ProductStatus = "available"
	ProductReserved  ProductStatus = "reserved"
	ProductExchanged ProductStatus = "exchanged"
)

type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "pending"
	ProposalAccepted  ProposalStatus = "accepted"
	ProposalRejected  ProposalStatus = "rejected"
	ProposalCompleted ProposalStatus = "completed"
	ProposalCanceled  ProposalStatus = "canceled"
)

type NotificationType string

const (
	NotificationNewProposal       NotificationType = "new_proposal"
	NotificationProposalAccepted  NotificationType = "proposal_accepted"
	NotificationProposalRejected  NotificationType = "proposal_rejected"
	NotificationExchangeCompleted NotificationType = "exchange_completed"
	NotificationNewRating         NotificationType = "new_rating"
	NotificationLevelUp           NotificationType = "level_up"
	NotificationSystem            NotificationType = "system"
	NotificationGeneral           NotificationType = "general"
)

type User struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username        string    `gorm:"unique;not null"          json:"username"`
	Email           string    `gorm:"not null"                 json:"email"`
	PasswordHash    string    `gorm:"not null"                 json:"-"`
	Avatar          string    `json:"avatar"`
	FullName        string    `json:"fullName"`
	ReputationLevel uint      `gorm:"default:1"                json:"reputation_level"`
	ReputationScore float64   `gorm:"default:0"                json:"reputation_score"`
	Phone           string    `json:"phone"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	CreatedAt       time.Time `json:"created_at"`
}

type Category struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null"                 json:"name"`
	ImageURL string `json:"image_url"`
}

type Product struct {
	ID                  uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title               string         `gorm:"not null"                 json:"title"`
	Description         string         `gorm:"not null"                 json:"description"`
	ImageURL            string         `json:"image_url"`
	CategoryID          uint           `gorm:"index;not null"           json:"category_id"`
	Category            Category       `json:"category"`
	UserID              uint           `gorm:"index;not null"           json:"user_id"`
	User                User           `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	AcceptableExchanges datatypes.JSON `json:"acceptable_exchanges"`
	Status              ProductStatus  `gorm:"default:available"        json:"status"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	Images              []ProductImage `json:"images"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint   `gorm:"index;not null"           json:"product_id"`
	URL       string `gorm:"not null"                 json:"url"`
	IsMain    bool   `gorm:"default:false"            json:"is_main"`
}

type UserRating struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FromUserID uint      `gorm:"index;not null"           json:"from_user_id"`
	ToUserID   uint      `gorm:"index;not null"           json:"to_user_id"`
	Rating     uint      `gorm:"not null"                 json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

type Proposal struct {
	ID                 uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductOfferedID   uint           `gorm:"index;not null"           json:"product_offered_id"`
	ProductOffered     Product        `json:"product_offered"`
	ProductRequestedID uint           `gorm:"index;not null"           json:"product_requested_id"`
	ProductRequested   Product        `json:"product_requested"`
	FromUserID         uint           `gorm:"index;not null"           json:"from_user_id"`
	FromUser           User           `json:"from_user"`
	ToUserID           uint           `gorm:"index;not null"           json:"to_user_id"`
	ToUser             User           `json:"to_user"`
	Message            string         `json:"message"`
	Status             ProposalStatus `gorm:"default:pending"          json:"status"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type Notification struct {
	ID        uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint             `gorm:"index;not null"           json:"user_id"`
	Type      NotificationType `gorm:"not null"                 json:"type"`
	Title     string           `gorm:"not null"                 json:"title"`
	Message   string           `json:"message"`
	Read      bool             `gorm:"default:false"            json:"read"`
	LinkTo    string           `json:"link_to"`
	RelatedID uint             `json:"related_id"`
	CreatedAt time.Time        `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}
