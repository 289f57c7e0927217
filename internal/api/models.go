package api

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend expects JSON numbers for amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// AccountRef is the short account form embedded in other resources.
type AccountRef struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
}

// Account is a conto. SaldoTotale is computed by the server.
type Account struct {
	ID          int64            `json:"id"`
	Nome        string           `json:"nome"`
	SaldoTotale *decimal.Decimal `json:"saldo_totale,omitempty"`
	Operazioni  []Transaction    `json:"operazioni,omitempty"`
	CreatedAt   string           `json:"created_at,omitempty"`
	UpdatedAt   string           `json:"updated_at,omitempty"`
}

type AccountInput struct {
	Nome string `json:"nome"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
}

type TagInput struct {
	Nome string `json:"nome"`
}

const (
	TransferYes = "T"
	TransferNo  = "N"
)

// Transaction is an operazione.
type Transaction struct {
	ID                  int64           `json:"id"`
	DataOperazione      string          `json:"data_operazione"`
	Importo             decimal.Decimal `json:"importo"`
	Descrizione         string          `json:"descrizione"`
	ContoID             int64           `json:"conto_id"`
	ContoDestinazioneID *int64          `json:"conto_destinazione_id,omitempty"`
	Trasferimento       string          `json:"trasferimento,omitempty"`
	Conto               *AccountRef     `json:"conto,omitempty"`
	Tags                []Tag           `json:"tags"`
	CreatedAt           string          `json:"created_at,omitempty"`
	UpdatedAt           string          `json:"updated_at,omitempty"`
}

// IsTransfer reports whether deleting t cascades to a paired movement.
func (t Transaction) IsTransfer() bool {
	return t.Trasferimento == TransferYes
}

// Date parses DataOperazione, tolerating a trailing time part.
func (t Transaction) Date() (time.Time, error) {
	s := t.DataOperazione
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	return time.Parse(DateLayout, s)
}

// TagIDs returns the ids of the attached tags in order.
func (t Transaction) TagIDs() []int64 {
	out := make([]int64, 0, len(t.Tags))
	for _, tag := range t.Tags {
		out = append(out, tag.ID)
	}
	return out
}

// TransactionInput is the create/update payload. Tags are ids.
type TransactionInput struct {
	DataOperazione      string          `json:"data_operazione"`
	Importo             decimal.Decimal `json:"importo"`
	Descrizione         string          `json:"descrizione"`
	ContoID             int64           `json:"conto_id"`
	ContoDestinazioneID *int64          `json:"conto_destinazione_id,omitempty"`
	Tags                []int64         `json:"tags"`
}

// Statistics are the totals for the current transaction filter.
type Statistics struct {
	Guadagno decimal.Decimal `json:"guadagno"`
	Spese    decimal.Decimal `json:"spese"`
	Saldo    decimal.Decimal `json:"saldo"`
}

// Pagination is server-computed display metadata.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	LastPage    int  `json:"last_page"`
	HasMore     bool `json:"has_more"`
}

// Page is one page of a paginated collection.
type Page[T any] struct {
	Items      []T
	Pagination *Pagination
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the result of a successful login or registration.
type Session struct {
	Token string
	User  User
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// TagExpense is one row of the expense-by-tag report.
type TagExpense struct {
	ID            int64           `json:"id"`
	Nome          string          `json:"nome"`
	Totale        decimal.Decimal `json:"totale"`
	NumOperazioni int             `json:"num_operazioni"`
}

type ExpenseByTagReport struct {
	Rows           []TagExpense
	TotaleGenerale decimal.Decimal
}

// MonthlyFlow is one month of the income-vs-expense report. Mese is YYYY-MM.
type MonthlyFlow struct {
	Mese       string          `json:"mese"`
	Guadagni   decimal.Decimal `json:"guadagni"`
	Spese      decimal.Decimal `json:"spese"`
	SaldoNetto decimal.Decimal `json:"saldo_netto"`
}

type FlowTotals struct {
	TotaleGuadagni decimal.Decimal `json:"totale_guadagni"`
	TotaleSpese    decimal.Decimal `json:"totale_spese"`
	SaldoNetto     decimal.Decimal `json:"saldo_netto"`
	NumMesi        int             `json:"num_mesi"`
}

type IncomeVsExpenseReport struct {
	Rows   []MonthlyFlow
	Totals FlowTotals
}

// BalancePoint is the cumulative balance at the end of Data (YYYY-MM-DD).
type BalancePoint struct {
	Data  string          `json:"data"`
	Saldo decimal.Decimal `json:"saldo"`
}

type BalanceStats struct {
	SaldoIniziale decimal.Decimal `json:"saldo_iniziale"`
	SaldoFinale   decimal.Decimal `json:"saldo_finale"`
	Variazione    decimal.Decimal `json:"variazione"`
	SaldoMinimo   decimal.Decimal `json:"saldo_minimo"`
	SaldoMassimo  decimal.Decimal `json:"saldo_massimo"`
	NumGiorni     int             `json:"num_giorni"`
}

type BalanceReport struct {
	Rows    []BalancePoint
	Account *AccountRef
	Stats   BalanceStats
}
