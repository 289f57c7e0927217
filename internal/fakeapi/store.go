package fakeapi

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/mybudget/internal/api"
)

var (
	errNotFound     = errors.New("not found")
	errAccountInUse = errors.New("account has transactions")
)

// fieldErrors is a 422 payload.
type fieldErrors map[string][]string

func (f fieldErrors) Error() string { return "I dati forniti non sono validi." }

func (f fieldErrors) add(field, msg string) { f[field] = append(f[field], msg) }

type user struct {
	api.User
	password string
}

type transaction struct {
	api.Transaction
	pairID int64 // other leg of a transfer
}

// store is the in-memory backend state.
type store struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]api.Account
	tags     map[int64]api.Tag
	txs      map[int64]*transaction
	users    map[string]user // by email
	tokens   map[string]int64
}

func newStore() *store {
	return &store{
		accounts: map[int64]api.Account{},
		tags:     map[int64]api.Tag{},
		txs:      map[int64]*transaction{},
		users:    map[string]user{},
		tokens:   map[string]int64{},
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

// auth

func (s *store) register(reg api.Registration) (api.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fe := fieldErrors{}
	if strings.TrimSpace(reg.Name) == "" {
		fe.add("name", "Il campo nome è obbligatorio.")
	}
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if email == "" || !strings.Contains(email, "@") {
		fe.add("email", "Inserire un indirizzo email valido.")
	} else if _, ok := s.users[email]; ok {
		fe.add("email", "L'email è già registrata.")
	}
	if len(reg.Password) < 8 {
		fe.add("password", "La password deve contenere almeno 8 caratteri.")
	} else if reg.Password != reg.PasswordConfirmation {
		fe.add("password", "Le password non coincidono.")
	}
	if len(fe) > 0 {
		return api.Session{}, fe
	}
	u := user{User: api.User{ID: s.id(), Name: strings.TrimSpace(reg.Name), Email: email}, password: reg.Password}
	s.users[email] = u
	return s.issue(u), nil
}

func (s *store) login(creds api.Credentials) (api.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(creds.Email))]
	if !ok || u.password != creds.Password {
		return api.Session{}, false
	}
	return s.issue(u), true
}

func (s *store) issue(u user) api.Session {
	tok := uuid.NewString()
	s.tokens[tok] = u.ID
	return api.Session{Token: tok, User: u.User}
}

func (s *store) userForToken(tok string) (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[tok]
	if !ok {
		return api.User{}, false
	}
	for _, u := range s.users {
		if u.ID == id {
			return u.User, true
		}
	}
	return api.User{}, false
}

func (s *store) revoke(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tok)
}

// accounts

func (s *store) listAccounts() []api.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, s.withBalance(a))
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Nome) < strings.ToLower(out[j].Nome)
	})
	return out
}

func (s *store) getAccount(id int64) (api.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return api.Account{}, errNotFound
	}
	return s.withBalance(a), nil
}

func (s *store) withBalance(a api.Account) api.Account {
	total := decimal.Zero
	for _, t := range s.txs {
		if t.ContoID == a.ID {
			total = total.Add(t.Importo)
		}
	}
	a.SaldoTotale = &total
	return a
}

func (s *store) saveAccount(id int64, in api.AccountInput) (api.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nome := strings.TrimSpace(in.Nome)
	if nome == "" {
		return api.Account{}, fieldErrors{"nome": {"Il campo nome è obbligatorio."}}
	}
	if id == 0 {
		id = s.id()
	} else if _, ok := s.accounts[id]; !ok {
		return api.Account{}, errNotFound
	}
	a := api.Account{ID: id, Nome: nome}
	s.accounts[id] = a
	return s.withBalance(a), nil
}

func (s *store) deleteAccount(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return errNotFound
	}
	for _, t := range s.txs {
		if t.ContoID == id {
			return errAccountInUse
		}
	}
	delete(s.accounts, id)
	return nil
}

// tags

func (s *store) listTags() []api.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Nome) < strings.ToLower(out[j].Nome)
	})
	return out
}

func (s *store) getTag(id int64) (api.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return api.Tag{}, errNotFound
	}
	return t, nil
}

func (s *store) saveTag(id int64, in api.TagInput) (api.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nome := strings.TrimSpace(in.Nome)
	if nome == "" {
		return api.Tag{}, fieldErrors{"nome": {"Il campo nome è obbligatorio."}}
	}
	for _, t := range s.tags {
		if t.ID != id && strings.EqualFold(t.Nome, nome) {
			return api.Tag{}, fieldErrors{"nome": {"Esiste già un tag con questo nome."}}
		}
	}
	if id == 0 {
		id = s.id()
	} else if _, ok := s.tags[id]; !ok {
		return api.Tag{}, errNotFound
	}
	t := api.Tag{ID: id, Nome: nome}
	s.tags[id] = t
	for _, tx := range s.txs {
		for i := range tx.Tags {
			if tx.Tags[i].ID == id {
				tx.Tags[i] = t
			}
		}
	}
	return t, nil
}

func (s *store) deleteTag(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[id]; !ok {
		return errNotFound
	}
	delete(s.tags, id)
	for _, tx := range s.txs {
		kept := tx.Tags[:0]
		for _, t := range tx.Tags {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		tx.Tags = kept
	}
	return nil
}

// transactions

func (s *store) getTransaction(id int64) (api.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return api.Transaction{}, errNotFound
	}
	return s.present(t), nil
}

func (s *store) present(t *transaction) api.Transaction {
	out := t.Transaction
	if a, ok := s.accounts[t.ContoID]; ok {
		out.Conto = &api.AccountRef{ID: a.ID, Nome: a.Nome}
	}
	out.Tags = append([]api.Tag{}, t.Tags...)
	return out
}

func (s *store) validateTransaction(in api.TransactionInput) ([]api.Tag, error) {
	fe := fieldErrors{}
	if _, err := parseDate(in.DataOperazione); err != nil {
		fe.add("data_operazione", "La data dell'operazione non è valida.")
	}
	if in.Importo.IsZero() {
		fe.add("importo", "L'importo è obbligatorio.")
	}
	if _, ok := s.accounts[in.ContoID]; !ok {
		fe.add("conto_id", "Il conto selezionato non esiste.")
	}
	if in.ContoDestinazioneID != nil {
		if _, ok := s.accounts[*in.ContoDestinazioneID]; !ok {
			fe.add("conto_destinazione_id", "Il conto di destinazione non esiste.")
		} else if *in.ContoDestinazioneID == in.ContoID {
			fe.add("conto_destinazione_id", "Il conto di destinazione deve essere diverso.")
		}
	}
	if len(in.Tags) == 0 {
		fe.add("tags", "Selezionare almeno un tag.")
	}
	tags := make([]api.Tag, 0, len(in.Tags))
	for _, id := range in.Tags {
		t, ok := s.tags[id]
		if !ok {
			fe.add("tags", "Tag non valido.")
			break
		}
		tags = append(tags, t)
	}
	if len(fe) > 0 {
		return nil, fe
	}
	return tags, nil
}

// createTransaction stores a movement. A destination account makes it a
// transfer: the amount leaves the source and a paired leg enters the
// destination.
func (s *store) createTransaction(in api.TransactionInput) (api.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags, err := s.validateTransaction(in)
	if err != nil {
		return api.Transaction{}, err
	}
	t := &transaction{Transaction: api.Transaction{
		ID:             s.id(),
		DataOperazione: in.DataOperazione,
		Importo:        in.Importo,
		Descrizione:    strings.TrimSpace(in.Descrizione),
		ContoID:        in.ContoID,
		Trasferimento:  api.TransferNo,
		Tags:           tags,
	}}
	s.txs[t.ID] = t
	if in.ContoDestinazioneID != nil {
		s.makeTransfer(t, *in.ContoDestinazioneID)
	}
	return s.present(t), nil
}

func (s *store) makeTransfer(t *transaction, dest int64) {
	amount := t.Importo.Abs()
	t.Importo = amount.Neg()
	t.Trasferimento = api.TransferYes
	d := dest
	t.ContoDestinazioneID = &d
	src := t.ContoID
	pair := &transaction{Transaction: api.Transaction{
		ID:                  s.id(),
		DataOperazione:      t.DataOperazione,
		Importo:             amount,
		Descrizione:         t.Descrizione,
		ContoID:             dest,
		ContoDestinazioneID: &src,
		Trasferimento:       api.TransferYes,
		Tags:                append([]api.Tag{}, t.Tags...),
	}, pairID: t.ID}
	t.pairID = pair.ID
	s.txs[pair.ID] = pair
}

func (s *store) updateTransaction(id int64, in api.TransactionInput) (api.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return api.Transaction{}, errNotFound
	}
	tags, err := s.validateTransaction(in)
	if err != nil {
		return api.Transaction{}, err
	}
	if t.pairID != 0 {
		delete(s.txs, t.pairID)
		t.pairID = 0
	}
	t.DataOperazione = in.DataOperazione
	t.Importo = in.Importo
	t.Descrizione = strings.TrimSpace(in.Descrizione)
	t.ContoID = in.ContoID
	t.ContoDestinazioneID = nil
	t.Trasferimento = api.TransferNo
	t.Tags = tags
	if in.ContoDestinazioneID != nil {
		s.makeTransfer(t, *in.ContoDestinazioneID)
	}
	return s.present(t), nil
}

// deleteTransaction removes t and, for transfers, its paired leg.
func (s *store) deleteTransaction(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return errNotFound
	}
	delete(s.txs, id)
	if t.pairID != 0 {
		delete(s.txs, t.pairID)
	}
	return nil
}

// filtered returns matching movements, newest first.
func (s *store) filtered(q api.TransactionQuery) []api.Transaction {
	out := make([]api.Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		if !matches(t.Transaction, q) {
			continue
		}
		out = append(out, s.present(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DataOperazione != out[j].DataOperazione {
			return out[i].DataOperazione > out[j].DataOperazione
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func matches(t api.Transaction, q api.TransactionQuery) bool {
	if q.Data != "" && t.DataOperazione != q.Data {
		return false
	}
	if q.Anno > 0 || q.Mese > 0 {
		d, err := t.Date()
		if err != nil {
			return false
		}
		if q.Anno > 0 && d.Year() != q.Anno {
			return false
		}
		if q.Mese > 0 && int(d.Month()) != q.Mese {
			return false
		}
	}
	if q.ContoID > 0 && t.ContoID != q.ContoID {
		return false
	}
	if q.Tag > 0 && !hasTag(t, q.Tag) {
		return false
	}
	return true
}

func hasTag(t api.Transaction, id int64) bool {
	for _, tag := range t.Tags {
		if tag.ID == id {
			return true
		}
	}
	return false
}

func (s *store) listTransactions(q api.TransactionQuery) api.Page[api.Transaction] {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.filtered(q)
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	lastPage := max(1, (len(all)+perPage-1)/perPage)
	start := min(len(all), (page-1)*perPage)
	end := min(len(all), start+perPage)
	return api.Page[api.Transaction]{
		Items: all[start:end],
		Pagination: &api.Pagination{
			CurrentPage: page,
			PerPage:     perPage,
			Total:       len(all),
			LastPage:    lastPage,
			HasMore:     page < lastPage,
		},
	}
}

// statistics ignores transfers: they move money, they neither earn nor spend it.
func (s *store) statistics(q api.TransactionQuery) api.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st api.Statistics
	for _, t := range s.filtered(q) {
		if t.IsTransfer() {
			continue
		}
		if t.Importo.IsPositive() {
			st.Guadagno = st.Guadagno.Add(t.Importo)
		} else {
			st.Spese = st.Spese.Add(t.Importo.Abs())
		}
	}
	st.Saldo = st.Guadagno.Sub(st.Spese)
	return st
}
