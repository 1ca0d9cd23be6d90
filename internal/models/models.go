package models

import "time"

const (
	TransactionInitial  = "initial"
	TransactionTransfer = "transfer"
)

const MetaCurrentUser = "currentUserCorreo"

type User struct {
	ID            string    `db:"id" json:"id"`
	Nombre        string    `db:"nombre" json:"nombre"`
	Apellidos     string    `db:"apellidos" json:"apellidos"`
	Telefono      string    `db:"telefono" json:"telefono"`
	Correo        string    `db:"correo" json:"correo"`
	PasswordHash  string    `db:"password_hash" json:"passwordHash"`
	Cuenta        string    `db:"cuenta" json:"cuenta"`
	FechaCreacion time.Time `db:"fecha_creacion" json:"fechaCreacion"`
}

// UserPatch holds the fields of a partial profile update; nil means unchanged.
type UserPatch struct {
	Nombre       *string
	Apellidos    *string
	Telefono     *string
	Correo       *string
	PasswordHash *string
	Cuenta       *string
}

func (p UserPatch) Apply(user User) User {
	if p.Nombre != nil {
		user.Nombre = *p.Nombre
	}
	if p.Apellidos != nil {
		user.Apellidos = *p.Apellidos
	}
	if p.Telefono != nil {
		user.Telefono = *p.Telefono
	}
	if p.Correo != nil {
		user.Correo = *p.Correo
	}
	if p.PasswordHash != nil {
		user.PasswordHash = *p.PasswordHash
	}
	if p.Cuenta != nil {
		user.Cuenta = *p.Cuenta
	}
	return user
}

type TransactionMetadata struct {
	ToUserID      string `json:"toUserId,omitempty"`
	FromUserID    string `json:"fromUserId,omitempty"`
	BudgetID      string `json:"budgetId,omitempty"`
	CounterpartID string `json:"counterpartTransactionId,omitempty"`
}

type Transaction struct {
	ID       string              `json:"id"`
	UserID   string              `json:"userId"`
	Tipo     string              `json:"tipo"`
	Concepto string              `json:"concepto"`
	Monto    int64               `json:"monto"`
	Fecha    time.Time           `json:"fecha"`
	Metadata TransactionMetadata `json:"metadata"`
}

type Budget struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"userId"`
	Nombre        string    `db:"nombre" json:"nombre"`
	Limite        int64     `db:"limite" json:"limite"`
	Gastado       int64     `db:"gastado" json:"gastado"`
	FechaCreacion time.Time `db:"fecha_creacion" json:"fechaCreacion"`
}

type Mail struct {
	ID      string    `db:"id" json:"id"`
	UserID  string    `db:"user_id" json:"userId"`
	Subject string    `db:"subject" json:"subject"`
	Body    string    `db:"body" json:"body"`
	Read    bool      `db:"is_read" json:"read"`
	Fecha   time.Time `db:"fecha" json:"fecha"`
}

type PasswordReset struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Token     string    `db:"token" json:"token"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	Used      bool      `db:"used" json:"used"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
