package state

import (
	"strings"
	"time"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/money"
)

// Mode tells whether a form creates or updates.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Phase is where a form submission stands.
type Phase int

const (
	PhaseEditing Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

// Submission tracks one form's submit cycle. Only one request may be in
// flight; a succeeded form waits for its close delay.
type Submission struct {
	Phase   Phase
	Message string
}

// Begin moves to submitting. It refuses while a request is in flight or
// after success.
func (s Submission) Begin() (Submission, bool) {
	if s.Phase == PhaseSubmitting || s.Phase == PhaseSucceeded {
		return s, false
	}
	return Submission{Phase: PhaseSubmitting}, true
}

func (s Submission) Succeed(msg string) Submission {
	return Submission{Phase: PhaseSucceeded, Message: msg}
}

func (s Submission) Fail(err error) Submission {
	return Submission{Phase: PhaseFailed, Message: SaveErrorMessage(err)}
}

// Reject records a client-side validation failure without a request.
func (s Submission) Reject(err error) Submission {
	return Submission{Phase: PhaseFailed, Message: err.Error()}
}

func (s Submission) InFlight() bool { return s.Phase == PhaseSubmitting }

// SuccessMessage is shown after a create or update.
func SuccessMessage(entity string, m Mode) string {
	if m == ModeEdit {
		return entity + " aggiornato con successo"
	}
	return entity + " creato con successo"
}

// AccountDraft is the account form's content.
type AccountDraft struct {
	ID   int64
	Nome string
}

// NewAccountDraft starts in edit mode when target is set.
func NewAccountDraft(target *api.Account) AccountDraft {
	if target == nil {
		return AccountDraft{}
	}
	return AccountDraft{ID: target.ID, Nome: target.Nome}
}

func (d AccountDraft) Mode() Mode { return modeFor(d.ID) }

func (d AccountDraft) Validate() error {
	v := &ValidationErrors{}
	if strings.TrimSpace(d.Nome) == "" {
		v.Summary = MsgNameRequired
		v.add("nome", MsgNameRequired)
	}
	return v.orNil()
}

func (d AccountDraft) Input() api.AccountInput {
	return api.AccountInput{Nome: strings.TrimSpace(d.Nome)}
}

// TagDraft is the tag form's content.
type TagDraft struct {
	ID   int64
	Nome string
}

func NewTagDraft(target *api.Tag) TagDraft {
	if target == nil {
		return TagDraft{}
	}
	return TagDraft{ID: target.ID, Nome: target.Nome}
}

func (d TagDraft) Mode() Mode { return modeFor(d.ID) }

func (d TagDraft) Validate() error {
	v := &ValidationErrors{}
	if strings.TrimSpace(d.Nome) == "" {
		v.Summary = MsgNameRequired
		v.add("nome", MsgNameRequired)
	}
	return v.orNil()
}

func (d TagDraft) Input() api.TagInput {
	return api.TagInput{Nome: strings.TrimSpace(d.Nome)}
}

func modeFor(id int64) Mode {
	if id > 0 {
		return ModeEdit
	}
	return ModeCreate
}

// TransactionDraft is the transaction form's content. Data and Importo
// hold what the user typed.
type TransactionDraft struct {
	ID             int64
	Data           string
	Importo        string
	Descrizione    string
	ContoID        int64
	DestinazioneID int64
	Tags           []api.Tag
}

// NewTransactionDraft populates from target, or defaults to today.
func NewTransactionDraft(target *api.Transaction, today time.Time, dateFormat string) TransactionDraft {
	if target == nil {
		return TransactionDraft{Data: today.Format(dateFormat)}
	}
	d := TransactionDraft{
		ID:          target.ID,
		Data:        target.DataOperazione,
		Importo:     money.Plain(target.Importo),
		Descrizione: target.Descrizione,
		ContoID:     target.ContoID,
		Tags:        append([]api.Tag(nil), target.Tags...),
	}
	if t, err := target.Date(); err == nil {
		d.Data = t.Format(dateFormat)
	}
	if target.ContoDestinazioneID != nil {
		d.DestinazioneID = *target.ContoDestinazioneID
	}
	return d
}

func (d TransactionDraft) Mode() Mode { return modeFor(d.ID) }

// IsTransfer reports whether saving creates paired movements.
func (d TransactionDraft) IsTransfer() bool { return d.DestinazioneID > 0 }

// ParseDate accepts the display layout and the wire layout.
func ParseDate(s, dateFormat string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateFormat, s); err == nil {
		return t, nil
	}
	return time.Parse(api.DateLayout, s)
}

// Validate checks the required fields. Every failure carries the same
// summary message.
func (d TransactionDraft) Validate(dateFormat string) error {
	v := &ValidationErrors{}
	if strings.TrimSpace(d.Data) == "" {
		v.add("data_operazione", "Data obbligatoria")
	} else if _, err := ParseDate(d.Data, dateFormat); err != nil {
		v.add("data_operazione", "Data non valida")
	}
	if strings.TrimSpace(d.Importo) == "" {
		v.add("importo", "Importo obbligatorio")
	} else if _, err := money.Parse(d.Importo); err != nil {
		v.add("importo", "Importo non valido")
	}
	if d.ContoID <= 0 {
		v.add("conto_id", "Conto obbligatorio")
	}
	if d.DestinazioneID > 0 && d.DestinazioneID == d.ContoID {
		v.add("conto_destinazione_id", "Il conto di destinazione deve essere diverso")
	}
	if len(d.Tags) == 0 {
		v.add("tags", "Almeno un tag")
	}
	if len(v.Fields) > 0 {
		v.Summary = MsgTransactionRequired
	}
	return v.orNil()
}

// Input builds the payload. Call Validate first.
func (d TransactionDraft) Input(dateFormat string) (api.TransactionInput, error) {
	if err := d.Validate(dateFormat); err != nil {
		return api.TransactionInput{}, err
	}
	day, _ := ParseDate(d.Data, dateFormat)
	amt, _ := money.Parse(d.Importo)
	in := api.TransactionInput{
		DataOperazione: day.Format(api.DateLayout),
		Importo:        amt,
		Descrizione:    strings.TrimSpace(d.Descrizione),
		ContoID:        d.ContoID,
		Tags:           make([]int64, 0, len(d.Tags)),
	}
	if d.DestinazioneID > 0 {
		dest := d.DestinazioneID
		in.ContoDestinazioneID = &dest
	}
	for _, t := range d.Tags {
		in.Tags = append(in.Tags, t.ID)
	}
	return in, nil
}
