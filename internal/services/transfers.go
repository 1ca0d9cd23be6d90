package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ahorra/internal/models"
	"ahorra/internal/money"
	"ahorra/internal/store"
	"ahorra/internal/websocket"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TransferRequest struct {
	SenderID          string
	Destination       string
	Amount            string
	Concept           string
	Date              time.Time
	BudgetID          string
	ConfirmOverBudget bool
}

type TransferService struct {
	store    store.Store
	sessions *SessionService
	mailbox  *Mailbox
	hub      NoticePublisher
	logger   logrus.FieldLogger
}

func NewTransferService(st store.Store, sessions *SessionService, mailbox *Mailbox, hub NoticePublisher, logger logrus.FieldLogger) *TransferService {
	return &TransferService{store: st, sessions: sessions, mailbox: mailbox, hub: hub, logger: logger}
}

type transferPlan struct {
	sender        models.User
	destination   models.User
	amount        int64
	senderBalance int64
	budget        *models.Budget
}

type transferOutcome struct {
	plan               transferPlan
	destinationBalance int64
}

// SubmitTransfer moves money between two users. The debit row, the credit row and the
// budget update commit together; mails and push notices follow the commit and never fail it.
func (s *TransferService) SubmitTransfer(ctx context.Context, req TransferRequest) error {
	sender, err := s.sessions.RequireCurrent(ctx, req.SenderID)
	if err != nil {
		return err
	}
	amount, err := money.ParseMinor(req.Amount)
	if err != nil || amount <= 0 {
		return ErrInvalidAmount
	}
	if _, err := planTransfer(ctx, s.store, sender, amount, req); err != nil {
		return err
	}

	var outcome transferOutcome
	err = s.store.WithTx(ctx, func(repos store.Repositories) error {
		plan, err := planTransfer(ctx, repos, sender, amount, req)
		if err != nil {
			return err
		}
		outcome, err = applyTransfer(ctx, repos, plan, req)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"sender_id":      sender.ID,
		"destination_id": outcome.plan.destination.ID,
		"amount":         money.FormatMinor(amount),
		"budget_id":      req.BudgetID,
	}).Info("transfer committed")
	s.notify(ctx, outcome, conceptOrDefault(req.Concept))
	return nil
}

// planTransfer runs the balance, destination and budget checks against repos.
// It is called once up front and again inside the transaction.
func planTransfer(ctx context.Context, repos store.Repositories, sender models.User, amount int64, req TransferRequest) (transferPlan, error) {
	balance, err := repos.Transactions().SumByUser(ctx, sender.ID)
	if err != nil {
		return transferPlan{}, err
	}
	if amount > balance {
		return transferPlan{}, &InsufficientFundsError{Shortfall: amount - balance}
	}
	destination, ok, err := findDestination(ctx, repos.Users(), req.Destination)
	if err != nil {
		return transferPlan{}, err
	}
	if !ok {
		return transferPlan{}, &NotFoundError{Entity: "destination", Key: req.Destination}
	}
	if destination.ID == sender.ID {
		return transferPlan{}, ErrSameAccountTransfer
	}
	plan := transferPlan{sender: sender, destination: destination, amount: amount, senderBalance: balance}
	if req.BudgetID == "" {
		return plan, nil
	}
	budget, err := repos.Budgets().GetByID(ctx, req.BudgetID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && budget.UserID != sender.ID) {
		return transferPlan{}, &NotFoundError{Entity: "budget", Key: req.BudgetID}
	}
	if err != nil {
		return transferPlan{}, err
	}
	if spent := budget.Gastado + amount; spent > budget.Limite && !req.ConfirmOverBudget {
		return transferPlan{}, &BudgetExceededError{
			BudgetID: budget.ID,
			Limit:    budget.Limite,
			Spent:    budget.Gastado,
			Excess:   spent - budget.Limite,
		}
	}
	plan.budget = &budget
	return plan, nil
}

func applyTransfer(ctx context.Context, repos store.Repositories, plan transferPlan, req TransferRequest) (transferOutcome, error) {
	fecha := req.Date
	if fecha.IsZero() {
		fecha = time.Now().UTC()
	}
	concept := conceptOrDefault(req.Concept)
	debitID := uuid.NewString()
	creditID := uuid.NewString()
	debitMeta := models.TransactionMetadata{ToUserID: plan.destination.ID, CounterpartID: creditID}
	if plan.budget != nil {
		debitMeta.BudgetID = plan.budget.ID
	}
	if _, err := repos.Transactions().Add(ctx, models.Transaction{
		ID:       debitID,
		UserID:   plan.sender.ID,
		Tipo:     models.TransactionTransfer,
		Concepto: concept,
		Monto:    -plan.amount,
		Fecha:    fecha,
		Metadata: debitMeta,
	}); err != nil {
		return transferOutcome{}, err
	}
	if _, err := repos.Transactions().Add(ctx, models.Transaction{
		ID:       creditID,
		UserID:   plan.destination.ID,
		Tipo:     models.TransactionTransfer,
		Concepto: concept,
		Monto:    plan.amount,
		Fecha:    fecha,
		Metadata: models.TransactionMetadata{FromUserID: plan.sender.ID, CounterpartID: debitID},
	}); err != nil {
		return transferOutcome{}, err
	}
	if plan.budget != nil {
		plan.budget.Gastado += plan.amount
		if err := repos.Budgets().UpdateSpent(ctx, plan.budget.ID, plan.budget.Gastado); err != nil {
			return transferOutcome{}, err
		}
	}
	destinationBalance, err := repos.Transactions().SumByUser(ctx, plan.destination.ID)
	if err != nil {
		return transferOutcome{}, err
	}
	return transferOutcome{plan: plan, destinationBalance: destinationBalance}, nil
}

func (s *TransferService) notify(ctx context.Context, outcome transferOutcome, concept string) {
	plan := outcome.plan
	amount := money.FormatMinor(plan.amount)
	// Warn only on the transfer that pushes the budget past its limit.
	if budget := plan.budget; budget != nil && budget.Gastado > budget.Limite && budget.Gastado-plan.amount <= budget.Limite {
		s.mailbox.Notify(ctx, plan.sender.ID, "Presupuesto excedido",
			fmt.Sprintf("Has superado el presupuesto %q en %s. Gastado %s de un límite de %s.",
				budget.Nombre,
				money.FormatMinor(budget.Gastado-budget.Limite),
				money.FormatMinor(budget.Gastado),
				money.FormatMinor(budget.Limite)))
	}
	s.mailbox.Notify(ctx, plan.destination.ID, "Dinero recibido",
		fmt.Sprintf("Has recibido %s de %s. Concepto: %s", amount, fullName(plan.sender), concept))
	s.mailbox.Notify(ctx, plan.sender.ID, "Transferencia realizada",
		fmt.Sprintf("Has enviado %s a %s. Concepto: %s", amount, fullName(plan.destination), concept))
	if s.hub == nil {
		return
	}
	s.hub.Publish(plan.sender.ID, websocket.Notice{
		Type:    websocket.NoticeBalance,
		Balance: money.FormatMinor(plan.senderBalance - plan.amount),
	})
	s.hub.Publish(plan.destination.ID, websocket.Notice{
		Type:    websocket.NoticeBalance,
		Balance: money.FormatMinor(outcome.destinationBalance),
	})
}

// findDestination matches an exact cuenta first, then a correo ignoring case.
func findDestination(ctx context.Context, users store.UserRepository, destination string) (models.User, bool, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return models.User{}, false, nil
	}
	all, err := users.GetAll(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	for _, user := range all {
		if user.Cuenta == destination {
			return user, true, nil
		}
	}
	for _, user := range all {
		if strings.EqualFold(user.Correo, destination) {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func conceptOrDefault(concept string) string {
	if trimmed := strings.TrimSpace(concept); trimmed != "" {
		return trimmed
	}
	return "Transferencia"
}

func fullName(user models.User) string {
	return strings.TrimSpace(user.Nombre + " " + user.Apellidos)
}
