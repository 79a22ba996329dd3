package notify

import (
	"fmt"

	"github.com/lucasbessegato/TrokaiBackend/internal/models"
)

// ProposalsLink is the deep link for the generic proposals screen.
const ProposalsLink = "/proposals"

type statusEntry struct {
	Label string
	Verb  string
	Type  models.NotificationType
	Link  func(p *models.Proposal) string
}

func proposalsLink(_ *models.Proposal) string { return ProposalsLink }

func whatsappLink(p *models.Proposal) string {
	return "https://wa.me/" + p.ToUser.Phone
}

// StatusTable maps every proposal status to its notification content.
// Exhaustiveness is enforced by tests so a new status cannot silently fall
// through to an empty-verb general notification.
var StatusTable = map[models.ProposalStatus]statusEntry{
	models.ProposalPending: {
		Label: "pendente",
		Verb:  "atualizou",
		Type:  models.NotificationGeneral,
		Link:  proposalsLink,
	},
	models.ProposalAccepted: {
		Label: "aceita",
		Verb:  "aceitou",
		Type:  models.NotificationProposalAccepted,
		Link:  whatsappLink,
	},
	models.ProposalRejected: {
		Label: "recusada",
		Verb:  "recusou",
		Type:  models.NotificationProposalRejected,
		Link:  proposalsLink,
	},
	models.ProposalCompleted: {
		Label: "concluída",
		Verb:  "concluiu",
		Type:  models.NotificationGeneral,
		Link:  proposalsLink,
	},
	models.ProposalCanceled: {
		Label: "cancelada",
		Verb:  "cancelou",
		Type:  models.NotificationGeneral,
		Link:  proposalsLink,
	},
}

func responsible(u models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Derive builds the notification for the proposal sender after a status
// change. Pure: it never mutates the proposal. Callers must only invoke it
// when oldStatus != newStatus.
func Derive(oldStatus, newStatus models.ProposalStatus, p *models.Proposal) models.Notification {
	_ = oldStatus
	e := StatusTable[newStatus]
	return models.Notification{
		UserID: p.FromUserID,
		Type:   e.Type,
		Title:  fmt.Sprintf("Sua proposta foi %s", e.Label),
		Message: fmt.Sprintf(
			"%s %s sua proposta para o produto %s",
			responsible(p.ToUser), e.Verb, p.ProductRequested.Title,
		),
		LinkTo:    e.Link(p),
		RelatedID: p.ID,
	}
}

// DeriveNew builds the notification for the proposal recipient at creation.
func DeriveNew(p *models.Proposal) models.Notification {
	return models.Notification{
		UserID:    p.ToUserID,
		Type:      models.NotificationNewProposal,
		Title:     fmt.Sprintf("Nova proposta de %s", p.FromUser.Username),
		Message:   p.Message,
		LinkTo:    ProposalsLink,
		RelatedID: p.ID,
	}
}
